package search

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/pders01/gallr/internal/storage"
)

// Match represents where text was found
type Match struct {
	Field  string // "tags", "query", "caption", "url"
	Text   string
	Weight float64
}

// Engine scores favorites in memory without an index. It backs the
// favorites view when the bleve index cannot be opened.
type Engine struct {
	source FavoriteSource
}

func NewEngine(source FavoriteSource) *Engine {
	return &Engine{source: source}
}

// Search scores every favorite against query. Queries shorter than two
// characters return nothing.
func (e *Engine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return []*Result{}, nil
	}

	favs, err := e.source.Favorites()
	if err != nil {
		return nil, err
	}

	results := []*Result{}
	for _, fav := range favs {
		if result := e.searchFavorite(fav, terms); result != nil {
			results = append(results, result)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (e *Engine) searchFavorite(fav *storage.Favorite, terms []string) *Result {
	var matches []Match
	var totalScore float64

	fields := []struct {
		name   string
		text   string
		weight float64
	}{
		{"tags", fav.Image.Tags, 4.0},
		{"query", fav.Query, 2.0},
		{"caption", fav.Caption, 1.0},
		{"url", fav.Image.FullSizeURL, 0.5},
	}

	for _, f := range fields {
		score := e.scoreField(f.text, terms, f.weight)
		if score <= 0 {
			continue
		}
		text := f.text
		if f.name == "caption" {
			text = e.findBestSnippet(f.text, terms, 120)
		}
		matches = append(matches, Match{Field: f.name, Text: text, Weight: score})
		totalScore += score
	}

	if totalScore > 0 {
		return &Result{
			Favorite: fav,
			Score:    totalScore,
			Matches:  matches,
		}
	}
	return nil
}

// scoreField calculates relevance score for a field
func (e *Engine) scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		termLower := strings.ToLower(term)

		if strings.Contains(lower, termLower) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == termLower:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, termLower) || strings.HasSuffix(word, termLower):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, termLower):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= (1.0 + math.Log(1.0+tf))

	return score * weight
}

// findBestSnippet returns the window of text with the most term hits.
func (e *Engine) findBestSnippet(text string, terms []string, maxLength int) string {
	if text == "" {
		return ""
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8
	if windowSize > len(words) {
		return truncate(text, maxLength)
	}

	bestScore := 0.0
	bestStart := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		windowText := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0.0
		for _, term := range terms {
			if strings.Contains(windowText, strings.ToLower(term)) {
				score += 1.0
			}
		}
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	return truncate(strings.Join(words[bestStart:bestStart+windowSize], " "), maxLength)
}

// tokenize breaks text into lower-case terms of two or more characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len(term) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if current.Len() > 1 {
		terms = append(terms, current.String())
	}

	return terms
}

func truncate(text string, maxLen int) string {
	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen-1] + "…"
}
