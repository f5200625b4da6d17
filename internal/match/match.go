// Package match implements the name-to-account matching policy shared by both
// platform resolvers: a case-insensitive exact match wins immediately, otherwise
// the best fuzzy score above a fixed threshold is accepted.
package match

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// ScoreThreshold is the minimum similarity score (0-100) a fuzzy match must
// exceed to be accepted.
const ScoreThreshold = 30

// ContentThreshold is the minimum partial-ratio score for matching a post by
// its message body.
const ContentThreshold = 80

// Result describes an accepted match.
type Result struct {
	Choice string
	Score  int
	Exact  bool
}

// Best matches a single candidate name against the available choices.
// The second return value is false when no choice matches above threshold.
func Best(candidate string, choices []string) (Result, bool) {
	lower := strings.ToLower(strings.TrimSpace(candidate))
	if lower == "" {
		return Result{}, false
	}

	for _, choice := range choices {
		if strings.ToLower(choice) == lower {
			return Result{Choice: choice, Score: 100, Exact: true}, true
		}
	}

	best := Result{Score: -1}
	for _, choice := range choices {
		score := fuzzy.Ratio(lower, strings.ToLower(choice))
		if score > best.Score {
			best = Result{Choice: choice, Score: score}
		}
	}

	if best.Score > ScoreThreshold {
		return best, true
	}
	return Result{}, false
}

// ContentScore scores a post message against the supplied content snippet.
func ContentScore(content, message string) int {
	if content == "" || message == "" {
		return 0
	}
	return fuzzy.PartialRatio(strings.ToLower(content), strings.ToLower(message))
}

// SplitAliases turns a possibly comma-joined client value into an ordered list
// of candidate names, dropping empties.
func SplitAliases(client string) []string {
	parts := strings.Split(client, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}
