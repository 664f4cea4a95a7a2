package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Label is the single classification outcome assigned to a trend.
type Label string

const (
	LabelAdmitCard       Label = "Admit Card"
	LabelJobNotification Label = "Job Notification"
	LabelResult          Label = "Result"
	LabelNotRelevant     Label = "Not Relevant"
)

// Labels lists every label in prompt order.
var Labels = []Label{LabelAdmitCard, LabelJobNotification, LabelResult, LabelNotRelevant}

// Valid reports whether l is one of the known labels.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// Relevant is false only for LabelNotRelevant.
func (l Label) Relevant() bool {
	return l.Valid() && l != LabelNotRelevant
}

// Status tracks the approval workflow of a stored record.
type Status string

const (
	StatusPendingReview Status = "Pending Review"
	StatusApproved      Status = "Approved"
	StatusRejected      Status = "Rejected"
)

// Statuses lists every accepted status.
var Statuses = []Status{StatusPendingReview, StatusApproved, StatusRejected}

// ParseStatus accepts the persisted name, case-insensitively.
func ParseStatus(value string) (Status, error) {
	value = strings.TrimSpace(value)
	for _, s := range Statuses {
		if strings.EqualFold(value, string(s)) {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

// ContentBundle holds the four generated drafts for one trend.
type ContentBundle struct {
	ShortPost         string `json:"instagram_post"`
	ArticleDraft      string `json:"blog_draft"`
	Script            string `json:"youtube_script"`
	VisualDescription string `json:"thumbnail_idea"`
}

// Empty reports whether no section carries text.
func (b ContentBundle) Empty() bool {
	return strings.TrimSpace(b.ShortPost) == "" &&
		strings.TrimSpace(b.ArticleDraft) == "" &&
		strings.TrimSpace(b.Script) == "" &&
		strings.TrimSpace(b.VisualDescription) == ""
}

// Record is the persisted unit; only Status changes after creation.
type Record struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	TrendText string        `json:"trend"`
	Label     Label         `json:"category"`
	Content   ContentBundle `json:"content"`
	Status    Status        `json:"status"`
}

// NewRecord stamps a fresh pending record.
func NewRecord(trend string, label Label, content ContentBundle, now time.Time) Record {
	return Record{
		ID:        uuid.NewString(),
		Timestamp: now,
		TrendText: trend,
		Label:     label,
		Content:   content,
		Status:    StatusPendingReview,
	}
}

// TimestampLayout is the tabular timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

// CompletionRequest is a single prompt for the external completion service.
type CompletionRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}
