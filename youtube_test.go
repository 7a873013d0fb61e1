package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw     string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"04:40", 280, false},
		{"29:50", 1790, false},
		{"1:06:00", 3960, false},
		{" 12:05 ", 725, false},
		{"4:4", 0, true},
		{"04:60", 0, true},
		{"1:60:00", 0, true},
		{"ten", 0, true},
		{"1:2:3:4", 0, true},
		{"-1:00", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseTimestamp(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateTimeline(t *testing.T) {
	valid := []Chapter{{"00:00", "Apertura"}, {"04:40", "Calle"}, {"12:10", "Cierre"}}

	tests := []struct {
		name      string
		chapters  []Chapter
		durations []string
		field     string
	}{
		{"valid", valid, []string{"45:00", "1:06:00"}, ""},
		{"too few chapters", valid[:2], []string{"45:00"}, "chapters"},
		{"late start", []Chapter{{"00:05", "a"}, {"04:40", "b"}, {"12:10", "c"}}, nil, "chapters"},
		{"chapters too close", []Chapter{{"00:00", "a"}, {"00:05", "b"}, {"12:10", "c"}}, nil, "chapters"},
		{"out of order", []Chapter{{"00:00", "a"}, {"12:10", "b"}, {"04:40", "c"}}, nil, "chapters"},
		{"missing label", []Chapter{{"00:00", "a"}, {"04:40", " "}, {"12:10", "c"}}, nil, "chapters"},
		{"bad timestamp", []Chapter{{"00:00", "a"}, {"4m", "b"}, {"12:10", "c"}}, nil, "chapters"},
		{"target too short", valid, []string{"10:00"}, "duration_targets"},
		{"bad target", valid, []string{"an hour"}, "duration_targets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTimeline(tt.chapters, tt.durations)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestTagCharacters(t *testing.T) {
	assert.Equal(t, 0, tagCharacters(nil))
	assert.Equal(t, 4, tagCharacters([]string{"noir"}))
	// "noir","dark jazz" -> noir + , + "dark jazz"
	assert.Equal(t, 4+1+11, tagCharacters([]string{"noir", "dark jazz"}))
	assert.Equal(t, 7, tagCharacters([]string{"café", "ñu"}))
}

func TestCheckYouTubeLimits(t *testing.T) {
	bundle := testBundle(t)
	assert.Empty(t, checkYouTubeLimits(bundle))

	bundle.Alternates = append(bundle.Alternates, strings.Repeat("n", maxTitleRunes+1))
	bundle.SEOParagraph = strings.Repeat("s", maxDescriptionRunes)
	bundle.Tags = []string{strings.Repeat("t", maxTagCharacters+1)}

	warnings := checkYouTubeLimits(bundle)
	require.Len(t, warnings, 3)
	assert.Contains(t, warnings[0], "title")
	assert.Contains(t, warnings[1], "description")
	assert.Contains(t, warnings[2], "tags")
}

func TestDescriptionText(t *testing.T) {
	bundle := testBundle(t)
	bundle.About = []string{"a1", "a2"}
	bundle.ClosingLine = "fin"
	assert.Equal(t, "n1\n—«q1»\nn2\n\nDisfruta este set de detective jazz playlist.\n\na1 a2\n\nfin", descriptionText(bundle))
}
