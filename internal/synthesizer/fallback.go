package synthesizer

import (
	"fmt"
	"strings"

	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/textutil"
)

var hashtagsByLabel = map[domain.Label]string{
	domain.LabelAdmitCard:       "#AdmitCard #HallTicket #ExamUpdate",
	domain.LabelJobNotification: "#JobAlert #GovernmentJobs #Vacancy #Recruitment",
	domain.LabelResult:          "#Result #MeritList #ExamResult",
}

const defaultHashtags = "#GovernmentJobs #JobUpdate"

// Fallback builds templated drafts from the trend and label alone.
// The output depends only on its inputs and the configured brand.
func (s *Synthesizer) Fallback(text string, label domain.Label) domain.ContentBundle {
	return fallbackBundle(s.cfg.Brand, s.cfg.BrandURL, text, label)
}

func fallbackBundle(brand, brandURL, text string, label domain.Label) domain.ContentBundle {
	text = strings.TrimSpace(text)
	if text == "" {
		text = "Latest government job update"
	}
	if !label.Valid() {
		label = domain.LabelNotRelevant
	}

	hashtags, ok := hashtagsByLabel[label]
	if !ok {
		hashtags = defaultHashtags
	}
	if brand != "" {
		hashtags += " #" + strings.ReplaceAll(brand, " ", "")
	}

	short := fmt.Sprintf("🎯 %s\n\nImportant update for government job aspirants! 📝\nCheck the official website for complete details.\n\n%s",
		text, hashtags)

	var article strings.Builder
	fmt.Fprintf(&article, "Latest Update: %s\n\n", text)
	fmt.Fprintf(&article, "This is an important development for job seekers across India. %s updates are crucial for candidates preparing for government sector careers.\n\n", label)
	article.WriteString("Key Points:\n")
	article.WriteString("• Check the official notification for eligibility\n")
	article.WriteString("• Visit the official website for the application process\n")
	article.WriteString("• Note every important date and deadline\n")
	if brand != "" {
		fmt.Fprintf(&article, "\nStay updated with %s for more government job notifications and exam updates!", brand)
	}

	var script strings.Builder
	script.WriteString("[Opening Hook]\n🔔 Big news for government job seekers!\n\n")
	fmt.Fprintf(&script, "[Main Content]\n%s\nCheck the official notification for eligibility, the application process and important dates.\n\n", text)
	script.WriteString("[Call-to-Action]\n👍 Like, share and subscribe for daily job updates!")
	if brandURL != "" {
		fmt.Fprintf(&script, "\nVisit %s for more details.", brandURL)
	}

	visual := fmt.Sprintf(`Bold yellow background with red accent border.

Main text (white, bold): "%s"
Subtitle (black): "%s"

Visual elements:
- Government building silhouette
- Red "NEW" badge in the top-right corner
- Clean, high-contrast layout readable on mobile`,
		strings.ToUpper(string(label)), textutil.FirstWords(text, 5))

	return domain.ContentBundle{
		ShortPost:         short,
		ArticleDraft:      article.String(),
		Script:            script.String(),
		VisualDescription: visual,
	}
}
