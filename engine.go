package main

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"time"
)

const (
	phrasePlaceholder  = "{phrase}"
	keywordPlaceholder = "{keyword}"
	contextPlaceholder = "{context}"
)

// Engine selects every content facet of a batch. Each facet draws from its own
// generator seeded with (facet, date, series), so changing one facet never
// shifts the output of another.
type Engine struct {
	settings *Settings
	pools    *ContentPools
}

// NewEngine validates the configuration once and returns an engine
func NewEngine(settings *Settings, pools *ContentPools) (*Engine, error) {
	if settings == nil || pools == nil {
		return nil, &ConfigError{Message: "settings and content pools are required"}
	}
	if err := ValidateConfig(settings, pools); err != nil {
		return nil, err
	}
	return &Engine{settings: settings, pools: pools}, nil
}

// Schedule returns the slots of the batch following base
func (e *Engine) Schedule(base time.Time) ([]ScheduleSlot, error) {
	return BuildSchedule(base, e.settings, e.pools.SeriesNames())
}

// BuildContexts selects the keyword and duration target of every slot
func (e *Engine) BuildContexts(slots []ScheduleSlot) ([]PackageContext, error) {
	contexts := make([]PackageContext, 0, len(slots))
	for _, slot := range slots {
		series, ok := e.pools.SeriesByName(slot.Series)
		if !ok {
			return nil, &ConfigError{Field: "series", Message: fmt.Sprintf("unknown series %q", slot.Series)}
		}
		rng := newRand(slot.DateString(), slot.Series)
		contexts = append(contexts, PackageContext{
			ScheduleSlot:   slot,
			Keyword:        pickOne(rng, series.Keywords),
			DurationTarget: pickOne(rng, e.pools.DurationTargets),
		})
	}
	return contexts, nil
}

// WeeklyPhrases draws the shared title phrases of a batch and partitions them
// in slot order. The sample is keyed by the sorted slot dates, so the same
// batch always yields the same phrases whatever order slots arrive in.
func (e *Engine) WeeklyPhrases(slots []ScheduleSlot) ([][]string, error) {
	dates := make([]string, len(slots))
	for i, slot := range slots {
		dates[i] = slot.DateString()
	}
	sort.Strings(dates)

	perSlot := e.settings.Selection.PhrasesPerSlot
	rng := newRand("phrases", strings.Join(dates, ","))
	sample, err := sampleStrings(rng, e.pools.TitlePhrases, perSlot*len(slots), "title_phrases")
	if err != nil {
		return nil, err
	}

	chunks := make([][]string, len(slots))
	for i := range slots {
		chunks[i] = sample[i*perSlot : (i+1)*perSlot]
	}
	return chunks, nil
}

// SelectBundle resolves every facet of one slot
func (e *Engine) SelectBundle(ctx PackageContext, phrases []string) (*ContentBundle, error) {
	date, seriesName := ctx.DateString(), ctx.Series
	series, ok := e.pools.SeriesByName(seriesName)
	if !ok {
		return nil, &ConfigError{Field: "series", Message: fmt.Sprintf("unknown series %q", seriesName)}
	}

	titles, err := e.selectTitles(series, phrases, newRand("titles", date, seriesName))
	if err != nil {
		return nil, err
	}
	story, err := e.selectMicroStory(newRand("story", date, seriesName))
	if err != nil {
		return nil, err
	}
	about, err := e.selectAbout(newRand("about", date, seriesName))
	if err != nil {
		return nil, err
	}
	tags := e.selectTags(newRand("tags", date, seriesName))
	engagement, err := sampleStrings(newRand("engagement", date, seriesName), e.pools.EngagementPrompts, e.settings.Selection.EngagementCount, "engagement_prompts")
	if err != nil {
		return nil, err
	}

	return &ContentBundle{
		Context:       ctx,
		Phrases:       append([]string(nil), phrases...),
		TitleFinal:    titles[0],
		Alternates:    titles[1:],
		MicroStory:    story,
		SEOParagraph:  e.selectSEO(ctx.Keyword, newRand("seo", date, seriesName)),
		About:         about,
		ClosingLine:   e.selectClosing(newRand("closing", date, seriesName)),
		Tags:          tags,
		Chapters:      append([]Chapter(nil), e.pools.Chapters...),
		PinnedComment: e.pools.PinnedComment,
		Engagement:    engagement,
		Thumbnails:    append([]string(nil), e.pools.ThumbnailPrompts...),
	}, nil
}

// Generate runs the whole selection for the batch following base
func (e *Engine) Generate(base time.Time) ([]ContentBundle, error) {
	slots, err := e.Schedule(base)
	if err != nil {
		return nil, err
	}
	contexts, err := e.BuildContexts(slots)
	if err != nil {
		return nil, err
	}
	phrases, err := e.WeeklyPhrases(slots)
	if err != nil {
		return nil, err
	}

	bundles := make([]ContentBundle, 0, len(contexts))
	for i, ctx := range contexts {
		debugLog("Selecting content for %s (%s)", ctx.DateString(), ctx.Series)
		bundle, err := e.SelectBundle(ctx, phrases[i])
		if err != nil {
			return nil, fmt.Errorf("selecting content for %s: %w", ctx.DateString(), err)
		}
		bundles = append(bundles, *bundle)
	}
	return bundles, nil
}

func (e *Engine) selectTitles(series SeriesPool, phrases []string, rng *rand.Rand) ([]string, error) {
	count := intInRange(rng, e.settings.Selection.TitleCount)
	if count > len(phrases) {
		return nil, &ConfigError{Field: "selection.title_count", Message: fmt.Sprintf("%d titles requested from %d phrases", count, len(phrases))}
	}
	titles := make([]string, count)
	for i := 0; i < count; i++ {
		format := pickOne(rng, series.TitleFormats)
		titles[i] = strings.ReplaceAll(format, phrasePlaceholder, phrases[i])
	}
	return titles, nil
}

// selectMicroStory samples narrative and quoted lines and interleaves them,
// starting with narration
func (e *Engine) selectMicroStory(rng *rand.Rand) ([]string, error) {
	sel := e.settings.Selection
	total := intInRange(rng, sel.StoryLines)

	maxQuotes := min(sel.StoryQuotes.Max, total-sel.MinNarrativeLines)
	minQuotes := min(sel.StoryQuotes.Min, maxQuotes)
	quoteCount := intInRange(rng, Range{Min: minQuotes, Max: maxQuotes})

	narrative, err := sampleStrings(rng, e.pools.NarrativeLines, total-quoteCount, "narrative_lines")
	if err != nil {
		return nil, err
	}
	quotes, err := sampleStrings(rng, e.pools.QuoteLines, quoteCount, "quote_lines")
	if err != nil {
		return nil, err
	}

	return interleave(narrative, quotes, total), nil
}

// interleave alternates narrative and quote lines until both are exhausted
// and truncates the result to limit lines
func interleave(narrative, quotes []string, limit int) []string {
	out := make([]string, 0, len(narrative)+len(quotes))
	for i := 0; i < len(narrative) || i < len(quotes); i++ {
		if i < len(narrative) {
			out = append(out, narrative[i])
		}
		if i < len(quotes) {
			out = append(out, formatQuote(quotes[i]))
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func formatQuote(line string) string {
	return "—«" + line + "»"
}

func (e *Engine) selectSEO(keyword string, rng *rand.Rand) string {
	tmpl := pickOne(rng, e.pools.SEOTemplates)
	term := pickOne(rng, e.pools.SEOContexts)
	out := strings.ReplaceAll(tmpl, keywordPlaceholder, keyword)
	return strings.ReplaceAll(out, contextPlaceholder, term)
}

// selectAbout samples the about lines; one extra draw below the configured
// chance appends a further line not already chosen
func (e *Engine) selectAbout(rng *rand.Rand) ([]string, error) {
	sel := e.settings.Selection
	count := intInRange(rng, sel.AboutLines)
	order := shuffledCopy(rng, e.pools.AboutLines)
	if count > len(order) {
		return nil, &ConfigError{Field: "about_lines", Message: fmt.Sprintf("sample size %d exceeds pool size %d", count, len(order))}
	}
	lines := order[:count]
	if rng.Float64() < sel.AboutExtraChance && count < len(order) {
		lines = order[:count+1]
	}
	return append([]string(nil), lines...), nil
}

func (e *Engine) selectClosing(rng *rand.Rand) string {
	if len(e.pools.ClosingLines) == 0 || rng.Float64() >= e.settings.Selection.ClosingChance {
		return ""
	}
	return pickOne(rng, e.pools.ClosingLines)
}

func (e *Engine) selectTags(rng *rand.Rand) []string {
	tags := shuffledCopy(rng, e.pools.Tags)
	count := intInRange(rng, e.settings.Selection.TagCount)
	return tags[:count]
}
