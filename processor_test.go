package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProcessor(t *testing.T, outputDir string) *PackageProcessor {
	t.Helper()
	settings, pools := loadTestConfig(t)
	settings.OutputDirectory = outputDir
	p, err := newPackageProcessor(&Config{Settings: settings, Pools: pools, Template: defaultTemplate})
	require.NoError(t, err)
	return p
}

func readDir(t *testing.T, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		files[e.Name()] = string(data)
	}
	return files
}

func TestPackageProcessor_Run(t *testing.T) {
	dir := t.TempDir()
	p := newTestProcessor(t, dir)

	results, err := p.Run(mustDate(t, "2024-01-01"))
	require.NoError(t, err)
	require.Len(t, results, 3)

	expected := []string{
		"2024-01-02_TUE_case-files.md",
		"2024-01-04_THU_blue-alley-sessions.md",
		"2024-01-06_SAT_after-hours.md",
	}
	for i, result := range results {
		assert.Equal(t, StatusSuccess, result.Status)
		assert.NoError(t, result.Error)
		assert.Equal(t, i, result.Slot.Index)
		assert.Equal(t, filepath.Join(dir, expected[i]), result.Filename)
	}

	files := readDir(t, dir)
	assert.Len(t, files, 3)
	assert.Contains(t, files[expected[0]], "series: Case Files\n")
	assert.Contains(t, files[expected[2]], "weekday: SAT\n")
}

func TestPackageProcessor_RunIsReproducible(t *testing.T) {
	base := mustDate(t, "2024-03-14")

	first := t.TempDir()
	_, err := newTestProcessor(t, first).Run(base)
	require.NoError(t, err)

	second := t.TempDir()
	_, err = newTestProcessor(t, second).Run(base)
	require.NoError(t, err)

	assert.Equal(t, readDir(t, first), readDir(t, second))
}

func TestPackageProcessor_RunReplacesPreviousBatch(t *testing.T) {
	dir := t.TempDir()
	p := newTestProcessor(t, dir)

	_, err := p.Run(mustDate(t, "2024-01-01"))
	require.NoError(t, err)
	_, err = p.Run(mustDate(t, "2024-01-08"))
	require.NoError(t, err)

	files := readDir(t, dir)
	assert.Len(t, files, 3)
	assert.Contains(t, files, "2024-01-09_TUE_blue-alley-sessions.md")
	assert.NotContains(t, files, "2024-01-02_TUE_case-files.md")
}

func TestPackageProcessor_PlanWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	p := newTestProcessor(t, dir)

	plan, err := p.Plan(mustDate(t, "2024-01-01"))
	require.NoError(t, err)
	assert.Len(t, plan.Bundles, 3)
	assert.Len(t, plan.Documents, 3)
	assert.NoDirExists(t, dir)
}

func TestPackageProcessor_ResolveBaseDate(t *testing.T) {
	p := newTestProcessor(t, t.TempDir())

	base, err := p.ResolveBaseDate("2024-05-01", time.Now())
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-05-01"), base)

	// 03:00 UTC is still the previous evening in America/Chihuahua
	now := time.Date(2024, 1, 3, 3, 0, 0, 0, time.UTC)
	base, err = p.ResolveBaseDate("", now)
	require.NoError(t, err)
	assert.Equal(t, mustDate(t, "2024-01-02"), base)

	_, err = p.ResolveBaseDate("01/05/2024", now)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}
