package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const stagedSuffix = ".tmp"

var lowerCaser = cases.Lower(language.Und)

// seriesSlug lowercases a series name and replaces spaces with hyphens
func seriesSlug(series string) string {
	return strings.ReplaceAll(lowerCaser.String(series), " ", "-")
}

// PackageFilename names the document of a slot: {date}_{weekday}_{series-slug}.md
func PackageFilename(slot ScheduleSlot) string {
	return fmt.Sprintf("%s_%s_%s.md", slot.DateString(), slot.WeekdayLabel, seriesSlug(slot.Series))
}

// PackageWriter replaces the generated documents of an output directory.
// Runs against the same directory must be serialized by the caller.
type PackageWriter struct {
	outputDir string
}

// NewPackageWriter creates a writer for outputDir
func NewPackageWriter(outputDir string) *PackageWriter {
	return &PackageWriter{outputDir: outputDir}
}

// WriteBatch stages every document next to its target, removes the previous
// batch and moves the staged files into place. The returned paths follow the
// order of docs.
//
// A staging failure leaves the previous batch untouched. A failure while
// removing old files or renaming staged ones leaves a mixed directory.
func (w *PackageWriter) WriteBatch(docs []GeneratedDocument) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if seen[doc.Filename] {
			return nil, fmt.Errorf("duplicate filename in batch: %s", doc.Filename)
		}
		seen[doc.Filename] = true
	}

	staged := make([]string, 0, len(docs))
	cleanup := func() {
		for _, path := range staged {
			os.Remove(path)
		}
	}
	for _, doc := range docs {
		path := filepath.Join(w.outputDir, "."+doc.Filename+stagedSuffix)
		if err := os.WriteFile(path, []byte(doc.Content), 0644); err != nil {
			cleanup()
			return nil, fmt.Errorf("staging %s: %w", doc.Filename, err)
		}
		staged = append(staged, path)
	}

	removed, err := w.clearPrevious()
	if err != nil {
		cleanup()
		return nil, err
	}
	if removed > 0 {
		log.Printf("  → Removed %d previous package files", removed)
	}

	written := make([]string, 0, len(docs))
	for i, doc := range docs {
		target := filepath.Join(w.outputDir, doc.Filename)
		if err := os.Rename(staged[i], target); err != nil {
			return written, fmt.Errorf("writing %s: %w", doc.Filename, err)
		}
		written = append(written, target)
	}
	return written, nil
}

// clearPrevious deletes every *.md file of the output directory
func (w *PackageWriter) clearPrevious() (int, error) {
	files, err := filepath.Glob(filepath.Join(w.outputDir, "*.md"))
	if err != nil {
		return 0, fmt.Errorf("listing previous packages: %w", err)
	}
	for i, file := range files {
		if err := os.Remove(file); err != nil {
			return i, fmt.Errorf("removing %s: %w", file, err)
		}
		debugLog("Removed %s", file)
	}
	return len(files), nil
}
