package main

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".nad"

const (
	settingsFile = "settings.yaml"
	contentFile  = "content.yaml"
	templateFile = "package-template.md"
)

// Embedded configuration files
//
//go:embed config/settings.yaml
var defaultSettings string

//go:embed config/content.yaml
var defaultContent string

//go:embed config/package-template.md
var defaultTemplate string

// ConfigOverrides allows overriding embedded defaults with file paths
type ConfigOverrides struct {
	SettingsPath *string
	ContentPath  *string
	TemplatePath *string
	OutputDir    *string
}

// ConfigError reports a configuration defect. It is never retried.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "configuration error: " + e.Message
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
}

// Range is an inclusive [Min, Max] bound for a randomized count
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Settings represents the YAML settings structure
type Settings struct {
	Timezone        string `yaml:"timezone"`
	OutputDirectory string `yaml:"output_directory"`
	Schedule        struct {
		Weekdays  []string `yaml:"weekdays"`
		SlotCount int      `yaml:"slot_count"`
	} `yaml:"schedule"`
	Selection SelectionSettings `yaml:"selection"`
	Document  struct {
		RequiredSections []string `yaml:"required_sections"`
	} `yaml:"document"`
}

// SelectionSettings bounds every randomized count of the selection engine
type SelectionSettings struct {
	PhrasesPerSlot    int     `yaml:"phrases_per_slot"`
	TitleCount        Range   `yaml:"title_count"`
	StoryLines        Range   `yaml:"story_lines"`
	StoryQuotes       Range   `yaml:"story_quotes"`
	MinNarrativeLines int     `yaml:"min_narrative_lines"`
	AboutLines        Range   `yaml:"about_lines"`
	AboutExtraChance  float64 `yaml:"about_extra_chance"`
	ClosingChance     float64 `yaml:"closing_chance"`
	TagCount          Range   `yaml:"tag_count"`
	EngagementCount   int     `yaml:"engagement_count"`
}

// SeriesPool holds the pools owned by one thematic series
type SeriesPool struct {
	Name         string   `yaml:"name"`
	Keywords     []string `yaml:"keywords"`
	TitleFormats []string `yaml:"title_formats"`
}

// ContentPools is the read-only content configuration injected into the engine
type ContentPools struct {
	Series            []SeriesPool `yaml:"series"`
	DurationTargets   []string     `yaml:"duration_targets"`
	TitlePhrases      []string     `yaml:"title_phrases"`
	NarrativeLines    []string     `yaml:"narrative_lines"`
	QuoteLines        []string     `yaml:"quote_lines"`
	SEOTemplates      []string     `yaml:"seo_templates"`
	SEOContexts       []string     `yaml:"seo_contexts"`
	AboutLines        []string     `yaml:"about_lines"`
	ClosingLines      []string     `yaml:"closing_lines"`
	Tags              []string     `yaml:"tags"`
	Chapters          []Chapter    `yaml:"chapters"`
	PinnedComment     string       `yaml:"pinned_comment"`
	EngagementPrompts []string     `yaml:"engagement_prompts"`
	ThumbnailPrompts  []string     `yaml:"thumbnail_prompts"`
}

// SeriesNames returns the configured series in rotation order
func (p *ContentPools) SeriesNames() []string {
	names := make([]string, len(p.Series))
	for i, s := range p.Series {
		names[i] = s.Name
	}
	return names
}

// SeriesByName looks up the pools of a series
func (p *ContentPools) SeriesByName(name string) (SeriesPool, bool) {
	for _, s := range p.Series {
		if s.Name == name {
			return s, true
		}
	}
	return SeriesPool{}, false
}

// Config holds loaded configuration and overrides
type Config struct {
	Settings  *Settings
	Pools     *ContentPools
	Template  string
	Overrides *ConfigOverrides
}

// NewConfig loads settings, content pools and the package template, applying
// overrides and environment variables, and validates the result
func NewConfig(overrides *ConfigOverrides) (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	if overrides == nil {
		overrides = &ConfigOverrides{}
	}

	settingsData, err := readConfigSource(overrides.SettingsPath, settingsFile, defaultSettings)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	settings, err := parseSettings(settingsData)
	if err != nil {
		return nil, fmt.Errorf("parsing settings: %w", err)
	}
	applyEnvironment(settings)
	if overrides.OutputDir != nil && *overrides.OutputDir != "" {
		settings.OutputDirectory = *overrides.OutputDir
	}

	contentData, err := readConfigSource(overrides.ContentPath, contentFile, defaultContent)
	if err != nil {
		return nil, fmt.Errorf("loading content pools: %w", err)
	}
	pools, err := parseContentPools(contentData)
	if err != nil {
		return nil, fmt.Errorf("parsing content pools: %w", err)
	}

	tmpl, err := readConfigSource(overrides.TemplatePath, templateFile, defaultTemplate)
	if err != nil {
		return nil, fmt.Errorf("loading template: %w", err)
	}

	if err := ValidateConfig(settings, pools); err != nil {
		return nil, err
	}

	return &Config{
		Settings:  settings,
		Pools:     pools,
		Template:  tmpl,
		Overrides: overrides,
	}, nil
}

// readConfigSource resolves one configuration file: an explicit override must
// exist, otherwise the project config directory wins over the embedded default
func readConfigSource(override *string, filename, embedded string) (string, error) {
	if override != nil && *override != "" {
		data, err := os.ReadFile(*override)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", *override, err)
		}
		return string(data), nil
	}

	local := getConfigPath(filename)
	if data, err := os.ReadFile(local); err == nil {
		debugLog("Using %s", local)
		return string(data), nil
	}
	return embedded, nil
}

func parseSettings(data string) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal([]byte(data), &settings); err != nil {
		return nil, err
	}
	setDefaults(&settings)
	return &settings, nil
}

// setDefaults fills values a partial settings file may leave out
func setDefaults(s *Settings) {
	if s.Timezone == "" {
		s.Timezone = "America/Chihuahua"
	}
	if s.OutputDirectory == "" {
		s.OutputDirectory = "nad-agent/packages"
	}
	if len(s.Schedule.Weekdays) == 0 {
		s.Schedule.Weekdays = []string{"TUE", "THU", "SAT"}
	}
	if s.Schedule.SlotCount == 0 {
		s.Schedule.SlotCount = 3
	}
	if s.Selection.PhrasesPerSlot == 0 {
		s.Selection.PhrasesPerSlot = 3
	}
}

func applyEnvironment(s *Settings) {
	if tz := os.Getenv("NAD_TIMEZONE"); tz != "" {
		s.Timezone = tz
	}
	if dir := os.Getenv("NAD_OUTPUT_DIR"); dir != "" {
		s.OutputDirectory = dir
	}
}

func parseContentPools(data string) (*ContentPools, error) {
	var pools ContentPools
	if err := yaml.Unmarshal([]byte(data), &pools); err != nil {
		return nil, err
	}
	if err := normalizePools(&pools); err != nil {
		return nil, err
	}
	return &pools, nil
}

// normalizePools trims entries, converts HTML markup to Markdown and drops
// duplicates so every later sample draws from a deduplicated pool
func normalizePools(p *ContentPools) error {
	converter := md.NewConverter("", true, nil)
	clean := func(pool []string) ([]string, error) {
		seen := make(map[string]bool, len(pool))
		out := make([]string, 0, len(pool))
		for _, entry := range pool {
			entry = strings.TrimSpace(entry)
			if strings.ContainsRune(entry, '<') {
				converted, err := converter.ConvertString(entry)
				if err != nil {
					return nil, fmt.Errorf("converting %q: %w", entry, err)
				}
				entry = strings.TrimSpace(converted)
			}
			if entry == "" || seen[entry] {
				continue
			}
			seen[entry] = true
			out = append(out, entry)
		}
		return out, nil
	}

	var err error
	for i := range p.Series {
		p.Series[i].Name = strings.TrimSpace(p.Series[i].Name)
		if p.Series[i].Keywords, err = clean(p.Series[i].Keywords); err != nil {
			return err
		}
		if p.Series[i].TitleFormats, err = clean(p.Series[i].TitleFormats); err != nil {
			return err
		}
	}
	for _, pool := range []*[]string{
		&p.DurationTargets, &p.TitlePhrases, &p.NarrativeLines, &p.QuoteLines,
		&p.SEOTemplates, &p.SEOContexts, &p.AboutLines, &p.ClosingLines,
		&p.Tags, &p.EngagementPrompts, &p.ThumbnailPrompts,
	} {
		if *pool, err = clean(*pool); err != nil {
			return err
		}
	}
	p.PinnedComment = strings.TrimSpace(p.PinnedComment)
	return nil
}

// ValidateConfig checks that every configured range fits its pool, so no
// sample can fail once selection has started
func ValidateConfig(s *Settings, p *ContentPools) error {
	if len(p.Series) == 0 {
		return &ConfigError{Field: "series", Message: "at least one series is required"}
	}
	seenSeries := make(map[string]bool)
	for _, series := range p.Series {
		if series.Name == "" {
			return &ConfigError{Field: "series", Message: "series name is required"}
		}
		if seenSeries[series.Name] {
			return &ConfigError{Field: "series", Message: fmt.Sprintf("duplicate series %q", series.Name)}
		}
		seenSeries[series.Name] = true
		if len(series.Keywords) == 0 {
			return &ConfigError{Field: "series." + series.Name + ".keywords", Message: "pool is empty"}
		}
		if len(series.TitleFormats) == 0 {
			return &ConfigError{Field: "series." + series.Name + ".title_formats", Message: "pool is empty"}
		}
		for _, format := range series.TitleFormats {
			if !strings.Contains(format, phrasePlaceholder) {
				return &ConfigError{Field: "series." + series.Name + ".title_formats", Message: fmt.Sprintf("format %q has no %s placeholder", format, phrasePlaceholder)}
			}
		}
	}

	if _, err := ParseWeekdays(s.Schedule.Weekdays); err != nil {
		return err
	}
	if s.Schedule.SlotCount < 1 {
		return &ConfigError{Field: "schedule.slot_count", Message: "must be at least 1"}
	}
	if s.Schedule.SlotCount > len(p.Series) {
		return &ConfigError{Field: "schedule.slot_count", Message: fmt.Sprintf("%d slots cannot rotate through %d series without repeating", s.Schedule.SlotCount, len(p.Series))}
	}

	sel := s.Selection
	ranges := []struct {
		name string
		r    Range
	}{
		{"selection.title_count", sel.TitleCount},
		{"selection.story_lines", sel.StoryLines},
		{"selection.story_quotes", sel.StoryQuotes},
		{"selection.about_lines", sel.AboutLines},
		{"selection.tag_count", sel.TagCount},
	}
	for _, item := range ranges {
		if item.r.Min < 0 || item.r.Max < item.r.Min {
			return &ConfigError{Field: item.name, Message: fmt.Sprintf("invalid range [%d,%d]", item.r.Min, item.r.Max)}
		}
	}

	if sel.TitleCount.Min < 1 {
		return &ConfigError{Field: "selection.title_count", Message: "at least one title is required"}
	}
	if sel.TitleCount.Max > sel.PhrasesPerSlot {
		return &ConfigError{Field: "selection.title_count", Message: fmt.Sprintf("max %d exceeds phrases_per_slot %d", sel.TitleCount.Max, sel.PhrasesPerSlot)}
	}
	if err := requirePool("title_phrases", len(p.TitlePhrases), s.Schedule.SlotCount*sel.PhrasesPerSlot); err != nil {
		return err
	}

	if sel.MinNarrativeLines < 1 {
		return &ConfigError{Field: "selection.min_narrative_lines", Message: "must be at least 1"}
	}
	if sel.StoryLines.Min < sel.MinNarrativeLines {
		return &ConfigError{Field: "selection.story_lines", Message: fmt.Sprintf("min %d leaves no room for %d narrative lines", sel.StoryLines.Min, sel.MinNarrativeLines)}
	}
	if err := requirePool("narrative_lines", len(p.NarrativeLines), sel.StoryLines.Max); err != nil {
		return err
	}
	if maxQuotes := min(sel.StoryQuotes.Max, sel.StoryLines.Max-sel.MinNarrativeLines); maxQuotes > 0 {
		if err := requirePool("quote_lines", len(p.QuoteLines), maxQuotes); err != nil {
			return err
		}
	}

	if err := requirePool("about_lines", len(p.AboutLines), sel.AboutLines.Max+1); err != nil {
		return err
	}
	if sel.AboutExtraChance < 0 || sel.AboutExtraChance > 1 {
		return &ConfigError{Field: "selection.about_extra_chance", Message: "must be within [0,1]"}
	}
	if sel.ClosingChance < 0 || sel.ClosingChance > 1 {
		return &ConfigError{Field: "selection.closing_chance", Message: "must be within [0,1]"}
	}
	if sel.ClosingChance > 0 {
		if err := requirePool("closing_lines", len(p.ClosingLines), 1); err != nil {
			return err
		}
	}

	if err := requirePool("tags", len(p.Tags), sel.TagCount.Max); err != nil {
		return err
	}
	if err := requirePool("engagement_prompts", len(p.EngagementPrompts), sel.EngagementCount); err != nil {
		return err
	}

	required := []struct {
		name string
		size int
	}{
		{"duration_targets", len(p.DurationTargets)},
		{"seo_templates", len(p.SEOTemplates)},
		{"seo_contexts", len(p.SEOContexts)},
		{"thumbnail_prompts", len(p.ThumbnailPrompts)},
	}
	for _, pool := range required {
		if err := requirePool(pool.name, pool.size, 1); err != nil {
			return err
		}
	}
	for _, tmpl := range p.SEOTemplates {
		if !strings.Contains(tmpl, keywordPlaceholder) {
			return &ConfigError{Field: "seo_templates", Message: fmt.Sprintf("template %q has no %s placeholder", tmpl, keywordPlaceholder)}
		}
	}
	if p.PinnedComment == "" {
		return &ConfigError{Field: "pinned_comment", Message: "is required"}
	}

	return validateTimeline(p.Chapters, p.DurationTargets)
}

func requirePool(name string, size, needed int) error {
	if size == 0 {
		return &ConfigError{Field: name, Message: "pool is empty"}
	}
	if needed > size {
		return &ConfigError{Field: name, Message: fmt.Sprintf("range needs %d entries but pool has %d", needed, size)}
	}
	return nil
}

// getConfigPath returns the path to a config file in the .nad directory
func getConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// ensureConfigExists writes the embedded defaults into dir, keeping any file
// the user already customized
func ensureConfigExists(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	files := []struct {
		name    string
		content string
	}{
		{settingsFile, defaultSettings},
		{contentFile, defaultContent},
		{templateFile, defaultTemplate},
	}

	var written []string
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if _, err := os.Stat(path); err == nil {
			log.Printf("Keeping existing %s", path)
			continue
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", f.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}
