package entities

import "time"

// ApprovalStatus is the review state of a candidate fact.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalItem is one candidate fact awaiting a human decision. The
// pending -> approved/rejected transition is one-way.
type ApprovalItem struct {
	Text   string         `json:"text"`
	Status ApprovalStatus `json:"status"`
}

// ApprovalSession is an ephemeral per-initiator review of candidate facts.
// Sessions live in memory until every item has left pending; they are not
// persisted across restarts.
type ApprovalSession struct {
	ID           string         `json:"id"`
	Initiator    string         `json:"initiator"`
	Items        []ApprovalItem `json:"items"`
	SkippedCount int            `json:"skipped_count"`
	CreatedAt    time.Time      `json:"created_at"`
}

// PendingCount returns how many items still await a decision.
func (s ApprovalSession) PendingCount() int {
	n := 0
	for _, item := range s.Items {
		if item.Status == ApprovalPending {
			n++
		}
	}
	return n
}

// ApprovedTexts returns the texts of all approved items, in session order.
func (s ApprovalSession) ApprovedTexts() []string {
	var texts []string
	for _, item := range s.Items {
		if item.Status == ApprovalApproved {
			texts = append(texts, item.Text)
		}
	}
	return texts
}
