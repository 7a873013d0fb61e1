package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ErrMalformedBundle is returned when a bundle lacks a required field
var ErrMalformedBundle = errors.New("malformed content bundle")

// templateData is the view of a bundle exposed to the package template
type templateData struct {
	Date           string
	Weekday        string
	Series         string
	Keyword        string
	DurationTarget string
	TitleFinal     string
	Alternates     []string
	MicroStory     []string
	SEOParagraph   string
	About          []string
	ClosingLine    string
	Tags           []string
	Chapters       []Chapter
	PinnedComment  string
	Engagement     []string
	Thumbnails     []string
}

// Assembler renders content bundles into package documents
type Assembler struct {
	tmpl             *template.Template
	requiredSections []string
	markdown         goldmark.Markdown
}

// NewAssembler parses the package template
func NewAssembler(source string, requiredSections []string) (*Assembler, error) {
	tmpl, err := template.New("package").Funcs(template.FuncMap{
		"join": strings.Join,
		"inc":  func(i int) int { return i + 1 },
	}).Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return &Assembler{
		tmpl:             tmpl,
		requiredSections: requiredSections,
		markdown:         goldmark.New(),
	}, nil
}

// Render produces the document of one bundle
func (a *Assembler) Render(b *ContentBundle) (*GeneratedDocument, error) {
	if err := validateBundle(b); err != nil {
		return nil, err
	}

	ctx := b.Context
	data := templateData{
		Date:           ctx.DateString(),
		Weekday:        ctx.WeekdayLabel,
		Series:         ctx.Series,
		Keyword:        ctx.Keyword,
		DurationTarget: ctx.DurationTarget,
		TitleFinal:     b.TitleFinal,
		Alternates:     b.Alternates,
		MicroStory:     b.MicroStory,
		SEOParagraph:   b.SEOParagraph,
		About:          b.About,
		ClosingLine:    b.ClosingLine,
		Tags:           b.Tags,
		Chapters:       b.Chapters,
		PinnedComment:  b.PinnedComment,
		Engagement:     b.Engagement,
		Thumbnails:     b.Thumbnails,
	}

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	content := buf.String()
	if err := a.verifySections(content); err != nil {
		return nil, err
	}

	return &GeneratedDocument{
		Filename: PackageFilename(ctx.ScheduleSlot),
		Content:  content,
	}, nil
}

// validateBundle rejects bundles with missing or empty required fields
func validateBundle(b *ContentBundle) error {
	if b == nil {
		return fmt.Errorf("%w: nil bundle", ErrMalformedBundle)
	}
	ctx := b.Context
	fields := []struct {
		name  string
		empty bool
	}{
		{"date", ctx.PublishDate.IsZero()},
		{"weekday", ctx.WeekdayLabel == ""},
		{"series", ctx.Series == ""},
		{"keyword", ctx.Keyword == ""},
		{"duration_target", ctx.DurationTarget == ""},
		{"title", b.TitleFinal == ""},
		{"micro_story", len(b.MicroStory) == 0},
		{"seo", b.SEOParagraph == ""},
		{"about", len(b.About) == 0},
		{"tags", len(b.Tags) == 0},
		{"chapters", len(b.Chapters) == 0},
		{"pinned_comment", b.PinnedComment == ""},
		{"thumbnails", len(b.Thumbnails) == 0},
	}
	for _, f := range fields {
		if f.empty {
			return fmt.Errorf("%w: %s is empty", ErrMalformedBundle, f.name)
		}
	}
	return nil
}

// verifySections parses the rendered body and checks that every required
// top-level section heading is present
func (a *Assembler) verifySections(content string) error {
	if len(a.requiredSections) == 0 {
		return nil
	}

	body := []byte(stripFrontMatter(content))
	doc := a.markdown.Parser().Parse(text.NewReader(body))

	var headings []string
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			headings = append(headings, strings.TrimSpace(string(h.Text(body))))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return fmt.Errorf("walking rendered document: %w", err)
	}

	for _, required := range a.requiredSections {
		found := false
		for _, h := range headings {
			if strings.HasPrefix(h, required) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: rendered document has no %q section", ErrMalformedBundle, required)
		}
	}
	return nil
}

// stripFrontMatter drops the leading --- fenced block
func stripFrontMatter(content string) string {
	if !strings.HasPrefix(content, "---\n") {
		return content
	}
	rest := content[len("---\n"):]
	if idx := strings.Index(rest, "\n---\n"); idx >= 0 {
		return rest[idx+len("\n---\n"):]
	}
	return content
}
