package classifier

import (
	"strings"
	"unicode"

	"TrendsAgent/internal/domain"
)

// keywordRule ties a relevant label to the terms that indicate it.
type keywordRule struct {
	label domain.Label
	terms []string
}

// keywordTable is consulted in order by both the response mapper and the
// offline fallback, so the two heuristics cannot drift apart.
var keywordTable = []keywordRule{
	{label: domain.LabelAdmitCard, terms: []string{"admit", "hall ticket", "call letter"}},
	{label: domain.LabelJobNotification, terms: []string{"job", "vacancy", "vacancies", "recruitment", "notification", "apply online"}},
	{label: domain.LabelResult, terms: []string{"result", "merit", "scorecard", "score card", "cut off", "cutoff"}},
}

// organizationTokens are recruiting bodies whose mention alone implies a job update.
var organizationTokens = map[string]struct{}{
	"sbi": {}, "upsc": {}, "ssc": {}, "rrb": {}, "ibps": {}, "lic": {}, "aiims": {},
	"isro": {}, "drdo": {}, "ongc": {}, "rbi": {}, "nabard": {}, "railway": {},
	"army": {}, "navy": {}, "police": {}, "psc": {}, "bpsc": {}, "uppsc": {},
	"government": {}, "govt": {}, "sarkari": {},
}

// matchKeywords returns the first label whose terms appear in lowered text.
func matchKeywords(lowered string) (domain.Label, bool) {
	for _, rule := range keywordTable {
		for _, term := range rule.terms {
			if strings.Contains(lowered, term) {
				return rule.label, true
			}
		}
	}
	return "", false
}

func mentionsOrganization(lowered string) bool {
	words := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if _, ok := organizationTokens[w]; ok {
			return true
		}
	}
	return false
}

// FallbackLabel classifies text without any external call.
func FallbackLabel(text string) domain.Label {
	lowered := strings.ToLower(text)
	if label, ok := matchKeywords(lowered); ok {
		return label
	}
	if mentionsOrganization(lowered) {
		return domain.LabelJobNotification
	}
	return domain.LabelNotRelevant
}

// LabelFromResponse maps a cleaned model answer onto the label set.
func LabelFromResponse(response string) domain.Label {
	answer := normalizeAnswer(response)
	if answer == "" {
		return domain.LabelNotRelevant
	}

	for _, label := range domain.Labels {
		if answer == normalizeAnswer(string(label)) {
			return label
		}
	}

	lowered := strings.ToLower(response)
	if strings.Contains(lowered, "not relevant") || strings.Contains(lowered, "notrelevant") {
		return domain.LabelNotRelevant
	}
	if label, ok := matchKeywords(lowered); ok {
		return label
	}
	return domain.LabelNotRelevant
}

// normalizeAnswer lower-cases and drops everything but letters, so
// "Admit Card.", "admit_card" and "AdmitCard" compare equal.
func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
