package domain

import "time"

// Idea is a user-owned post with a title, summary, description and tags.
type Idea struct {
	ID          string
	UserID      string
	Title       string
	Summary     string
	Description string
	Tags        []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnedBy reports whether userID owns the idea.
func (i *Idea) OwnedBy(userID string) bool {
	return i.UserID == userID
}

// IdeaHistory records one change made to an idea. Entries outlive the idea.
type IdeaHistory struct {
	ID         string
	IdeaID     string
	UserID     string
	ChangeType string
	Title      string
	CreatedAt  time.Time
}
