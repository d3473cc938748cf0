// Package fuzzy scores filename similarity for destination folder suggestions
package fuzzy

import (
	"sort"
	"strings"

	"download-router/pkg/models"
)

// Matcher suggests folders by comparing a new filename to recent routing
// activity
type Matcher struct{}

// NewMatcher creates a new fuzzy matcher
func NewMatcher() *Matcher {
	return &Matcher{}
}

// SuggestFolder returns the folder of the recent download whose filename most
// resembles the given one, or "" when nothing resembles it. Routed entries
// outrank unrouted ones so rule-driven history dominates ad-hoc saves.
func (m *Matcher) SuggestFolder(filename string, activity []models.ActivityEntry) string {
	if len(activity) == 0 {
		return ""
	}

	type scoredEntry struct {
		folder string
		score  float64
	}

	var scored []scoredEntry
	for _, entry := range activity {
		if entry.Folder == "" {
			continue
		}
		score := m.similarity(filename, entry.Filename)
		if score <= 0 {
			continue
		}
		if entry.Routed {
			score *= 1.5
		}
		scored = append(scored, scoredEntry{folder: entry.Folder, score: score})
	}

	if len(scored) == 0 {
		return ""
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	return scored[0].folder
}

// similarity is the fraction of words the two filenames share, with a small
// bonus for a shared extension
func (m *Matcher) similarity(a, b string) float64 {
	aWords := splitWords(a)
	bWords := splitWords(b)
	if len(aWords) == 0 || len(bWords) == 0 {
		return 0
	}

	shared := 0
	for _, aw := range aWords {
		for _, bw := range bWords {
			if aw == bw {
				shared++
				break
			}
		}
	}

	score := float64(shared) / float64(max(len(aWords), len(bWords)))

	if ea, eb := extensionOf(a), extensionOf(b); ea != "" && ea == eb {
		score += 0.1
	}
	return score
}

func splitWords(filename string) []string {
	return strings.FieldsFunc(strings.ToLower(filename), func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
}

func extensionOf(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}
