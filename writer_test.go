package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackageFilename(t *testing.T) {
	tests := []struct {
		series   string
		expected string
	}{
		{"Case Files", "2024-01-02_TUE_case-files.md"},
		{"Blue Alley Sessions", "2024-01-02_TUE_blue-alley-sessions.md"},
		{"After Hours", "2024-01-02_TUE_after-hours.md"},
		{"ÉPOCA Noir", "2024-01-02_TUE_época-noir.md"},
	}

	for _, tt := range tests {
		t.Run(tt.series, func(t *testing.T) {
			slot := ScheduleSlot{PublishDate: mustDate(t, "2024-01-02"), WeekdayLabel: "TUE", Series: tt.series}
			assert.Equal(t, tt.expected, PackageFilename(slot))
		})
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestWriteBatch_ReplacesPreviousPackages(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2023-12-30_SAT_case-files.md"), "old")
	writeFile(t, filepath.Join(dir, "notes.txt"), "keep me")

	docs := []GeneratedDocument{
		{Filename: "2024-01-02_TUE_case-files.md", Content: "one"},
		{Filename: "2024-01-04_THU_after-hours.md", Content: "two"},
	}
	written, err := NewPackageWriter(dir).WriteBatch(docs)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "2024-01-02_TUE_case-files.md"),
		filepath.Join(dir, "2024-01-04_THU_after-hours.md"),
	}, written)
	assert.ElementsMatch(t, []string{
		"2024-01-02_TUE_case-files.md",
		"2024-01-04_THU_after-hours.md",
		"notes.txt",
	}, listDir(t, dir))

	data, err := os.ReadFile(written[1])
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestWriteBatch_CreatesOutputDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nad-agent", "packages")
	written, err := NewPackageWriter(dir).WriteBatch([]GeneratedDocument{{Filename: "a.md", Content: "a"}})
	require.NoError(t, err)
	assert.Len(t, written, 1)
	assert.FileExists(t, filepath.Join(dir, "a.md"))
}

func TestWriteBatch_DuplicateFilename(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old.md"), "old")

	_, err := NewPackageWriter(dir).WriteBatch([]GeneratedDocument{
		{Filename: "a.md", Content: "a"},
		{Filename: "a.md", Content: "b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate filename")
	assert.Equal(t, []string{"old.md"}, listDir(t, dir))
}

func TestWriteBatch_StagingFailureKeepsPreviousBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old.md"), "old")
	// a directory in the way of the staged file makes the write fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".b.md.tmp"), 0755))

	_, err := NewPackageWriter(dir).WriteBatch([]GeneratedDocument{
		{Filename: "a.md", Content: "a"},
		{Filename: "b.md", Content: "b"},
	})
	require.Error(t, err)
	assert.ElementsMatch(t, []string{"old.md", ".b.md.tmp"}, listDir(t, dir))
}

func TestWriteBatch_EmptyBatchClearsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "old.md"), "old")

	written, err := NewPackageWriter(dir).WriteBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.Empty(t, listDir(t, dir))
}
