// processor.go
package main

import (
	"fmt"
	"log"
	"time"
)

var debugEnabled bool

// SetDebugMode enables or disables debug logging
func SetDebugMode(enabled bool) {
	debugEnabled = enabled
}

func debugLog(format string, args ...interface{}) {
	if debugEnabled {
		log.Printf("[DEBUG] "+format, args...)
	}
}

// PackageProcessor handles the main workflow
type PackageProcessor struct {
	config    *Config
	engine    *Engine
	assembler *Assembler
	writer    *PackageWriter
}

// BatchPlan is a fully computed batch, ready to be written
type BatchPlan struct {
	Bundles   []ContentBundle
	Documents []GeneratedDocument
}

// NewPackageProcessor loads the configuration and wires the pipeline
func NewPackageProcessor(overrides *ConfigOverrides) (*PackageProcessor, error) {
	config, err := NewConfig(overrides)
	if err != nil {
		return nil, err
	}
	return newPackageProcessor(config)
}

func newPackageProcessor(config *Config) (*PackageProcessor, error) {
	engine, err := NewEngine(config.Settings, config.Pools)
	if err != nil {
		return nil, err
	}

	assembler, err := NewAssembler(config.Template, config.Settings.Document.RequiredSections)
	if err != nil {
		return nil, fmt.Errorf("creating assembler: %w", err)
	}

	return &PackageProcessor{
		config:    config,
		engine:    engine,
		assembler: assembler,
		writer:    NewPackageWriter(config.Settings.OutputDirectory),
	}, nil
}

// OutputDirectory returns the directory packages are written to
func (p *PackageProcessor) OutputDirectory() string {
	return p.config.Settings.OutputDirectory
}

// ResolveBaseDate parses raw, or returns today in the configured time zone
// when raw is empty
func (p *PackageProcessor) ResolveBaseDate(raw string, now time.Time) (time.Time, error) {
	if raw != "" {
		return ParseBaseDate(raw)
	}
	return TodayIn(p.config.Settings.Timezone, now)
}

// Plan computes every bundle and document of the batch after base without
// touching the filesystem
func (p *PackageProcessor) Plan(base time.Time) (*BatchPlan, error) {
	log.Printf("→ Selecting content for the batch after %s...", base.Format(dateLayout))
	bundles, err := p.engine.Generate(base)
	if err != nil {
		return nil, err
	}

	log.Printf("→ Rendering %d packages...", len(bundles))
	docs := make([]GeneratedDocument, 0, len(bundles))
	for i := range bundles {
		for _, warning := range checkYouTubeLimits(&bundles[i]) {
			log.Printf("Warning: %s: %s", bundles[i].Context.DateString(), warning)
		}
		doc, err := p.assembler.Render(&bundles[i])
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", bundles[i].Context.DateString(), err)
		}
		docs = append(docs, *doc)
	}

	return &BatchPlan{Bundles: bundles, Documents: docs}, nil
}

// Run computes the batch after base and replaces the packages of the output
// directory. Nothing is written unless the whole batch was computed.
func (p *PackageProcessor) Run(base time.Time) ([]ProcessingResult, error) {
	plan, err := p.Plan(base)
	if err != nil {
		return nil, err
	}

	log.Printf("→ Writing to: %s", p.OutputDirectory())
	written, writeErr := p.writer.WriteBatch(plan.Documents)

	results := make([]ProcessingResult, len(plan.Bundles))
	for i, bundle := range plan.Bundles {
		result := ProcessingResult{
			Slot:     bundle.Context.ScheduleSlot,
			Filename: plan.Documents[i].Filename,
		}
		if i < len(written) {
			result.Status = StatusSuccess
			result.Filename = written[i]
			log.Printf("✓ Generated: %s", written[i])
		} else {
			result.Status = StatusError
			result.Error = writeErr
			if writeErr != nil {
				log.Printf("✗ Failed %s: %v", plan.Documents[i].Filename, writeErr)
			}
		}
		results[i] = result
	}

	if writeErr != nil {
		return results, fmt.Errorf("writing packages: %w", writeErr)
	}
	return results, nil
}
