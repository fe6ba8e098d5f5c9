package domain

import "time"

// Message is one entry in the chat thread between staff and a customer.
// The thread belongs to the customer (UserID); AuthorID is whoever wrote it.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
