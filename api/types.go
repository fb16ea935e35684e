package api

import (
	"context"

	"tasktracker/domain"
)

// Board applies mutations and serves canonical board state for handlers.
type Board interface {
	Lists(ctx context.Context) ([]domain.List, error)
	CreateList(ctx context.Context, name string) (domain.List, error)
	UpdateList(ctx context.Context, id int64, name string, position int) (domain.List, error)
	DeleteList(ctx context.Context, id int64) error

	Cards(ctx context.Context) ([]domain.Card, error)
	CreateCard(ctx context.Context, draft domain.CardDraft) (domain.Card, error)
	UpdateCard(ctx context.Context, id int64, draft domain.CardDraft, position int) (domain.Card, error)
	MoveCard(ctx context.Context, id, listID int64, position int) (domain.Card, error)
	DeleteCard(ctx context.Context, id int64) error

	Comments(ctx context.Context, cardID int64) ([]domain.Comment, error)
	AddComment(ctx context.Context, cardID int64, author, content string) (domain.Comment, error)
}

// Sessions maps opaque tokens to authenticated identities.
type Sessions interface {
	Create(ctx context.Context, user domain.User) (string, error)
	Get(ctx context.Context, token string) (domain.User, bool, error)
	Delete(ctx context.Context, token string) error
}

// CredentialStore exposes stored identities and password hashes for login
// checks.
type CredentialStore interface {
	Credentials(ctx context.Context, username string) (domain.User, string, error)
}

// Stream produces per-client event feeds for the SSE endpoint.
type Stream interface {
	Subscribe() chan domain.Event
	Unsubscribe(chan domain.Event)
}
