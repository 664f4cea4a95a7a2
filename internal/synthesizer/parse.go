package synthesizer

import (
	"regexp"
	"strings"

	"TrendsAgent/internal/domain"
)

// Section identifies one of the four drafts in a completion.
type Section int

const (
	SectionShortPost Section = iota
	SectionArticleDraft
	SectionScript
	SectionVisualDescription
)

// header is the verbatim token the model is told to reproduce.
type header struct {
	token   string
	section Section
}

var headers = []header{
	{token: "INSTAGRAM_POST", section: SectionShortPost},
	{token: "BLOG_DRAFT", section: SectionArticleDraft},
	{token: "YOUTUBE_SCRIPT", section: SectionScript},
	{token: "THUMBNAIL_IDEA", section: SectionVisualDescription},
}

var (
	separatorExpr = regexp.MustCompile(`^[-=*_~]{3,}$`)
	leakedHeaders = buildLeakExpr()
	doubleSpace   = regexp.MustCompile(`[ \t]{2,}`)
)

func buildLeakExpr() *regexp.Regexp {
	parts := make([]string, 0, len(headers))
	for _, h := range headers {
		parts = append(parts, strings.ReplaceAll(h.token, "_", "[_ ]"))
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(parts, "|") + `):`)
}

// ParseContent splits a completion into the four drafts.
// Lines after a recognised header belong to it and are joined with spaces;
// separator lines are skipped; leaked header tokens are removed at the end.
func ParseContent(response string) domain.ContentBundle {
	var (
		sections [4][]string
		current  = Section(-1)
	)

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if section, rest, ok := matchHeader(line); ok {
			current = section
			if rest != "" {
				sections[current] = append(sections[current], rest)
			}
			continue
		}

		if current < 0 || separatorExpr.MatchString(line) {
			continue
		}
		sections[current] = append(sections[current], line)
	}

	return domain.ContentBundle{
		ShortPost:         cleanSection(sections[SectionShortPost]),
		ArticleDraft:      cleanSection(sections[SectionArticleDraft]),
		Script:            cleanSection(sections[SectionScript]),
		VisualDescription: cleanSection(sections[SectionVisualDescription]),
	}
}

// matchHeader recognises "INSTAGRAM_POST: text", "**Blog Draft:**", "### YOUTUBE_SCRIPT" and similar.
func matchHeader(line string) (Section, string, bool) {
	stripped := strings.TrimLeft(line, "#*>- \t")

	for _, h := range headers {
		for _, variant := range []string{h.token, strings.ReplaceAll(h.token, "_", " ")} {
			if len(stripped) < len(variant) || !strings.EqualFold(stripped[:len(variant)], variant) {
				continue
			}
			rest := stripped[len(variant):]
			trimmed := strings.TrimLeft(rest, "*")
			switch {
			case trimmed == "":
			case strings.HasPrefix(trimmed, ":"):
				trimmed = trimmed[1:]
			default:
				// Ordinary prose that merely starts with the token.
				continue
			}
			trimmed = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(trimmed), "*"))
			return h.section, trimmed, true
		}
	}
	return 0, "", false
}

func cleanSection(lines []string) string {
	text := strings.TrimSpace(strings.Join(lines, " "))
	text = leakedHeaders.ReplaceAllString(text, "")
	text = doubleSpace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
