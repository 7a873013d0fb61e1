package main

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	errMissingFrontMatter = errors.New("missing front matter")
	filenamePattern       = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_([A-Z]{3})_([a-z0-9-]+)\.md$`)
	titlePattern          = regexp.MustCompile(`(?m)^- \*\*(?:Título final|Alternativa \d+):\*\* (.+)$`)
)

// frontMatter mirrors the key: value block at the top of a package
type frontMatter struct {
	Date           string `yaml:"date"`
	Weekday        string `yaml:"weekday"`
	Series         string `yaml:"series"`
	Keyword        string `yaml:"keyword"`
	DurationTarget string `yaml:"duration_target"`
}

type packageFile struct {
	Path   string
	Meta   frontMatter
	Titles []string
}

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: audit <check-names|check-titles> <packages-directory>")
	}

	command := os.Args[1]
	packagesDir := os.Args[2]

	var findings []string
	var err error
	switch command {
	case "check-names":
		findings, err = checkNames(packagesDir)
	case "check-titles":
		findings, err = checkTitles(packagesDir)
	default:
		log.Fatalf("Unknown command %q", command)
	}
	if err != nil {
		log.Fatal(err)
	}

	for _, f := range findings {
		fmt.Println(f)
	}
	if len(findings) > 0 {
		fmt.Printf("\n%d problems found\n", len(findings))
		os.Exit(1)
	}
	fmt.Println("OK")
}

// checkNames verifies that every package name matches its front matter
func checkNames(dir string) ([]string, error) {
	files, err := loadPackages(dir)
	if err != nil {
		return nil, err
	}

	var findings []string
	for _, pkg := range files {
		name := filepath.Base(pkg.Path)
		m := filenamePattern.FindStringSubmatch(name)
		if m == nil {
			findings = append(findings, fmt.Sprintf("%s: name does not match {date}_{weekday}_{series}.md", name))
			continue
		}
		if m[1] != pkg.Meta.Date {
			findings = append(findings, fmt.Sprintf("%s: date %s differs from front matter %s", name, m[1], pkg.Meta.Date))
		}
		if m[2] != pkg.Meta.Weekday {
			findings = append(findings, fmt.Sprintf("%s: weekday %s differs from front matter %s", name, m[2], pkg.Meta.Weekday))
		}
		if want := slugify(pkg.Meta.Series); m[3] != want {
			findings = append(findings, fmt.Sprintf("%s: series slug %s differs from %s", name, m[3], want))
		}
	}
	return findings, nil
}

// checkTitles reports titles used by more than one package of the same ISO week
func checkTitles(dir string) ([]string, error) {
	files, err := loadPackages(dir)
	if err != nil {
		return nil, err
	}

	type weekKey struct{ year, week int }
	owners := make(map[weekKey]map[string][]string)
	for _, pkg := range files {
		date, err := time.Parse("2006-01-02", pkg.Meta.Date)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid date %q", pkg.Path, pkg.Meta.Date)
		}
		year, week := date.ISOWeek()
		key := weekKey{year, week}
		if owners[key] == nil {
			owners[key] = make(map[string][]string)
		}
		for _, title := range pkg.Titles {
			owners[key][title] = append(owners[key][title], filepath.Base(pkg.Path))
		}
	}

	var findings []string
	for key, titles := range owners {
		for title, names := range titles {
			if len(names) > 1 {
				findings = append(findings, fmt.Sprintf("%d-W%02d: %q used by %s", key.year, key.week, title, strings.Join(names, ", ")))
			}
		}
	}
	sort.Strings(findings)
	return findings, nil
}

func loadPackages(dir string) ([]packageFile, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	sort.Strings(paths)

	files := make([]packageFile, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}
		meta, body, err := parseFrontMatter(content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		files = append(files, packageFile{Path: path, Meta: meta, Titles: extractTitles(body)})
	}
	return files, nil
}

func parseFrontMatter(content []byte) (frontMatter, []byte, error) {
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return frontMatter{}, nil, errMissingFrontMatter
	}
	parts := bytes.SplitN(normalized[4:], []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return frontMatter{}, nil, errMissingFrontMatter
	}
	var meta frontMatter
	if err := yaml.Unmarshal(parts[0], &meta); err != nil {
		return frontMatter{}, nil, fmt.Errorf("parse front matter: %w", err)
	}
	return meta, parts[1], nil
}

func extractTitles(body []byte) []string {
	var titles []string
	for _, m := range titlePattern.FindAllSubmatch(body, -1) {
		titles = append(titles, strings.TrimSpace(string(m[1])))
	}
	return titles
}

func slugify(series string) string {
	return strings.ReplaceAll(strings.ToLower(series), " ", "-")
}
