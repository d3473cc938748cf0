package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"download-router/pkg/models"
)

func TestSuggestFolder(t *testing.T) {
	matcher := NewMatcher()

	activity := []models.ActivityEntry{
		{Filename: "benchy_v2.stl", Folder: "3D Files", Routed: true},
		{Filename: "vacation_photo.jpg", Folder: "Images", Routed: true},
		{Filename: "random-notes.txt", Folder: "Misc", Routed: false},
	}

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{"shared words and extension", "benchy_v3.stl", "3D Files"},
		{"photo goes with photos", "birthday_photo.jpg", "Images"},
		{"nothing resembles", "quarterly-report.xlsx", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matcher.SuggestFolder(tt.filename, activity))
		})
	}
}

func TestSuggestFolderPrefersRoutedHistory(t *testing.T) {
	matcher := NewMatcher()

	activity := []models.ActivityEntry{
		{Filename: "project_plan.pdf", Folder: "Scratch", Routed: false},
		{Filename: "project_plan.pdf", Folder: "Documents", Routed: true},
	}

	assert.Equal(t, "Documents", matcher.SuggestFolder("project_plan_final.pdf", activity))
}

func TestSuggestFolderEmptyInputs(t *testing.T) {
	matcher := NewMatcher()

	assert.Empty(t, matcher.SuggestFolder("file.txt", nil))
	assert.Empty(t, matcher.SuggestFolder("file.txt", []models.ActivityEntry{{Filename: "file.txt"}}))
}

func TestSimilarity(t *testing.T) {
	matcher := NewMatcher()

	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "a_b_c.stl", "a_b_c.stl", 1.0, 1.2},
		{"disjoint", "one.txt", "zwei.pdf", 0, 0},
		{"partial overlap", "benchy_v2.stl", "benchy_v9.stl", 0.5, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := matcher.similarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, score, tt.min)
			assert.LessOrEqual(t, score, tt.max)
		})
	}
}
