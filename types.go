package main

import "time"

// ScheduleSlot is one scheduled publish date with its assigned series
type ScheduleSlot struct {
	Index        int
	PublishDate  time.Time
	WeekdayLabel string
	Series       string
}

// DateString returns the publish date in ISO 8601 form
func (s ScheduleSlot) DateString() string {
	return s.PublishDate.Format(dateLayout)
}

// PackageContext is a slot plus the values selected once per (date, series)
type PackageContext struct {
	ScheduleSlot
	Keyword        string
	DurationTarget string
}

// Chapter is one entry of the chapter template
type Chapter struct {
	At    string `yaml:"at"`
	Label string `yaml:"label"`
}

// ContentBundle holds every resolved string for one slot
type ContentBundle struct {
	Context       PackageContext
	Phrases       []string
	TitleFinal    string
	Alternates    []string
	MicroStory    []string
	SEOParagraph  string
	About         []string
	ClosingLine   string
	Tags          []string
	Chapters      []Chapter
	PinnedComment string
	Engagement    []string
	Thumbnails    []string
}

// GeneratedDocument is the rendered text of a bundle and its target filename
type GeneratedDocument struct {
	Filename string
	Content  string
}

// ProcessingStatus represents the outcome status of one slot
type ProcessingStatus string

const (
	StatusSuccess ProcessingStatus = "success"
	StatusError   ProcessingStatus = "error"
)

// ProcessingResult tracks the outcome of generating each slot
type ProcessingResult struct {
	Slot     ScheduleSlot
	Status   ProcessingStatus
	Filename string
	Error    error
}
