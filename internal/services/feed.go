package services

import (
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"inkwell/internal/models"
)

type SortOrder string

const (
	SortLatest SortOrder = "latest"
	SortTop    SortOrder = "top"
)

// ParseSort maps a query value onto a sort order, defaulting to latest.
func ParseSort(s string) SortOrder {
	if SortOrder(strings.ToLower(strings.TrimSpace(s))) == SortTop {
		return SortTop
	}
	return SortLatest
}

// ParseSince reads a loosely formatted date ("2024-01-15", "Jan 15 2024",
// RFC 3339 ...). Empty input is the zero time.
func ParseSince(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, NewValidationError("unrecognized date", map[string]string{"since": "date"})
	}
	return t, nil
}

// FilterArticles applies the category filter, then the free-text query.
// The category match is exact and case-sensitive; "All" or "" keeps every
// category. The query is matched case-insensitively against title, content,
// tags and the author's display name. Input order is preserved.
func FilterArticles(articles []models.Article, category, query string) []models.Article {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if category != "" && category != models.CategoryAll && a.Category != category {
			continue
		}
		if q != "" && !matchesQuery(a, q) {
			continue
		}
		out = append(out, a)
	}
	return out
}

func matchesQuery(a models.Article, q string) bool {
	if strings.Contains(strings.ToLower(a.Title), q) ||
		strings.Contains(strings.ToLower(a.Content), q) ||
		strings.Contains(strings.ToLower(a.Author.DisplayName), q) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// SortArticles reorders in place. Latest keeps the store order; top orders
// by score, ties keeping store order.
func SortArticles(articles []models.Article, order SortOrder) {
	if order != SortTop {
		return
	}
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Score > articles[j].Score
	})
}
