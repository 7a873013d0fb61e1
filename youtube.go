// youtube.go
package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// YouTube upload limits
const (
	maxTitleRunes       = 100
	maxDescriptionRunes = 5000
	maxTagCharacters    = 500
	minChapters         = 3
	minChapterSeconds   = 10
)

// parseTimestamp converts MM:SS or H:MM:SS into seconds
func parseTimestamp(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", raw)
	}
	total := 0
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timestamp %q", raw)
		}
		// minutes and seconds after the leading field are two-digit, base 60
		if i > 0 && (len(part) != 2 || n >= 60) {
			return 0, fmt.Errorf("invalid timestamp %q", raw)
		}
		total = total*60 + n
	}
	return total, nil
}

// validateTimeline checks the chapter template against YouTube's chapter
// rules and against the shortest duration target
func validateTimeline(chapters []Chapter, durations []string) error {
	if len(chapters) < minChapters {
		return &ConfigError{Field: "chapters", Message: fmt.Sprintf("YouTube needs at least %d chapters, got %d", minChapters, len(chapters))}
	}

	prev := -1
	for i, ch := range chapters {
		if strings.TrimSpace(ch.Label) == "" {
			return &ConfigError{Field: "chapters", Message: fmt.Sprintf("chapter %d has no label", i+1)}
		}
		at, err := parseTimestamp(ch.At)
		if err != nil {
			return &ConfigError{Field: "chapters", Message: err.Error()}
		}
		if i == 0 && at != 0 {
			return &ConfigError{Field: "chapters", Message: "first chapter must start at 00:00"}
		}
		if i > 0 && at-prev < minChapterSeconds {
			return &ConfigError{Field: "chapters", Message: fmt.Sprintf("chapter %q starts less than %ds after the previous one", ch.At, minChapterSeconds)}
		}
		prev = at
	}

	for _, d := range durations {
		seconds, err := parseTimestamp(d)
		if err != nil {
			return &ConfigError{Field: "duration_targets", Message: err.Error()}
		}
		if seconds <= prev {
			return &ConfigError{Field: "duration_targets", Message: fmt.Sprintf("target %s ends before the last chapter %s", d, chapters[len(chapters)-1].At)}
		}
	}
	return nil
}

// descriptionText is the text pasted into the YouTube description box
func descriptionText(b *ContentBundle) string {
	parts := []string{strings.Join(b.MicroStory, "\n"), b.SEOParagraph, strings.Join(b.About, " ")}
	if b.ClosingLine != "" {
		parts = append(parts, b.ClosingLine)
	}
	return strings.Join(parts, "\n\n")
}

// tagCharacters counts tags the way the upload form does: multi-word tags are
// wrapped in quotes and tags are separated by commas
func tagCharacters(tags []string) int {
	total := 0
	for i, tag := range tags {
		total += utf8.RuneCountInString(tag)
		if strings.Contains(tag, " ") {
			total += 2
		}
		if i > 0 {
			total++
		}
	}
	return total
}

// checkYouTubeLimits returns a warning for every limit the bundle exceeds
func checkYouTubeLimits(b *ContentBundle) []string {
	var warnings []string
	titles := append([]string{b.TitleFinal}, b.Alternates...)
	for _, title := range titles {
		if n := utf8.RuneCountInString(title); n > maxTitleRunes {
			warnings = append(warnings, fmt.Sprintf("title %q has %d characters (limit %d)", title, n, maxTitleRunes))
		}
	}
	if n := utf8.RuneCountInString(descriptionText(b)); n > maxDescriptionRunes {
		warnings = append(warnings, fmt.Sprintf("description has %d characters (limit %d)", n, maxDescriptionRunes))
	}
	if n := tagCharacters(b.Tags); n > maxTagCharacters {
		warnings = append(warnings, fmt.Sprintf("tags use %d characters (limit %d)", n, maxTagCharacters))
	}
	return warnings
}
