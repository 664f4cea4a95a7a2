// Package textutil holds small string helpers shared by the pipeline stages.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	spaceExpr   = regexp.MustCompile(`\s+`)
	hashtagExpr = regexp.MustCompile(`#\w+`)
)

// reasoning markers some hosted models emit before their answer.
var reasoningTags = []string{"think", "thinking", "reasoning"}

type reasoningExpr struct {
	paired *regexp.Regexp
	open   *regexp.Regexp
}

var reasoningExprs = compileReasoningExprs(reasoningTags)

func compileReasoningExprs(tags []string) []reasoningExpr {
	exprs := make([]reasoningExpr, 0, len(tags))
	for _, tag := range tags {
		exprs = append(exprs, reasoningExpr{
			paired: regexp.MustCompile(`(?is)<` + tag + `>.*?</` + tag + `>`),
			open:   regexp.MustCompile(`(?is)<` + tag + `>.*$`),
		})
	}
	return exprs
}

// MinTrendLength is the shortest trend text worth classifying.
const MinTrendLength = 10

// StripReasoning removes paired reasoning blocks such as <think>...</think>.
// An opening marker without its closing pair drops the rest of the text.
func StripReasoning(text string) string {
	for _, expr := range reasoningExprs {
		text = expr.paired.ReplaceAllString(text, "")
		text = expr.open.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// NormalizeTrend collapses whitespace and rejects text too short to carry meaning.
func NormalizeTrend(text string) (string, bool) {
	text = spaceExpr.ReplaceAllString(strings.TrimSpace(text), " ")
	if utf8.RuneCountInString(text) < MinTrendLength {
		return "", false
	}
	return text, true
}

// Truncate shortens text to max runes, marking the cut with "...".
func Truncate(text string, max int) string {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text
	}
	runes := []rune(text)
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// FirstWords returns up to n whitespace-separated words.
func FirstWords(text string, n int) string {
	fields := strings.Fields(text)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

// ExtractHashtags lists hashtags in order of appearance.
func ExtractHashtags(text string) []string {
	return hashtagExpr.FindAllString(text, -1)
}
