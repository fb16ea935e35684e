package domain

import "time"

// Priority classifies how urgent a card is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known priority levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// List is an ordered column of cards on the board. Display order follows
// position, ties broken by id ascending.
type List struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Card is a single task belonging to exactly one list at a time. Position is
// only meaningful relative to cards sharing the same list.
type Card struct {
	ID           int64     `json:"id" db:"id"`
	ListID       int64     `json:"list_id" db:"list_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Priority     Priority  `json:"priority" db:"priority"`
	Position     int       `json:"position" db:"position"`
	Assignee     *string   `json:"assignee" db:"assignee"`
	DueDate      *string   `json:"due_date" db:"due_date"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
	CommentCount int       `json:"comment_count" db:"comment_count"`
}

// CardDraft carries the writable fields of a card for create and full-overwrite
// update operations.
type CardDraft struct {
	ListID      int64    `json:"list_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Assignee    *string  `json:"assignee"`
	DueDate     *string  `json:"due_date"`
}

// Comment is an immutable note attached to a card. Comments are removed only
// when their card is deleted.
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	CardID    int64     `json:"card_id" db:"card_id"`
	Author    string    `json:"author" db:"author"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
