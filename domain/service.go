package domain

import (
	"context"
	"time"
)

// Storage is the persistence gateway the board service writes through. Position
// assignment for inserts happens inside the gateway as a single atomic
// statement, so concurrent creates against the same scope cannot collide.
type Storage interface {
	Lists(ctx context.Context) ([]List, error)
	InsertList(ctx context.Context, name string, now time.Time) (List, error)
	UpdateList(ctx context.Context, id int64, name string, position int) (List, error)
	DeleteList(ctx context.Context, id int64) error

	Cards(ctx context.Context) ([]Card, error)
	InsertCard(ctx context.Context, draft CardDraft, now time.Time) (Card, error)
	UpdateCard(ctx context.Context, id int64, draft CardDraft, position int, now time.Time) (Card, error)
	MoveCard(ctx context.Context, id, listID int64, position int, now time.Time) (Card, error)
	DeleteCard(ctx context.Context, id int64) error

	Comments(ctx context.Context, cardID int64) ([]Comment, error)
	InsertComment(ctx context.Context, cardID int64, author, content string, now time.Time) (Comment, error)
}

// Service applies board mutations, enforces ordering and consistency rules, and
// publishes the canonical post-mutation state to the broadcast channel. Events
// are published only after the gateway confirms the write; a failed write
// surfaces the error and publishes nothing.
type Service struct {
	store  Storage
	events Publisher
	clock  func() time.Time
}

// NewService creates a board service writing through store and broadcasting via
// events.
func NewService(store Storage, events Publisher) *Service {
	return &Service{store: store, events: events, clock: time.Now}
}

// Lists returns all lists ordered by position, ties broken by id.
func (s *Service) Lists(ctx context.Context) ([]List, error) {
	return s.store.Lists(ctx)
}

// CreateList appends a list after the current last position. The first list on
// an empty board gets position 1.
func (s *Service) CreateList(ctx context.Context, name string) (List, error) {
	list, err := s.store.InsertList(ctx, name, s.clock().UTC())
	if err != nil {
		return List{}, err
	}
	s.events.Publish(Event{Type: ListCreated, Payload: list})
	return list, nil
}

// UpdateList overwrites name and position. Sibling positions are not
// re-sequenced; the caller owns position uniqueness.
func (s *Service) UpdateList(ctx context.Context, id int64, name string, position int) (List, error) {
	list, err := s.store.UpdateList(ctx, id, name, position)
	if err != nil {
		return List{}, err
	}
	s.events.Publish(Event{Type: ListUpdated, Payload: list})
	return list, nil
}

// DeleteList removes a list and cascades to its cards and their comments.
// Deleting an absent list reports success, matching DELETE of zero rows.
func (s *Service) DeleteList(ctx context.Context, id int64) error {
	if err := s.store.DeleteList(ctx, id); err != nil {
		return err
	}
	s.events.Publish(Event{Type: ListDeleted, Payload: id})
	return nil
}

// Cards returns every card annotated with its comment count, ordered by
// (list_id, position, id).
func (s *Service) Cards(ctx context.Context) ([]Card, error) {
	return s.store.Cards(ctx)
}

// CreateCard appends a card to the end of its list. Description defaults to
// empty, priority to medium. An unknown list surfaces ErrForeignKey.
func (s *Service) CreateCard(ctx context.Context, draft CardDraft) (Card, error) {
	if draft.Priority == "" {
		draft.Priority = PriorityMedium
	}
	if !draft.Priority.Valid() {
		return Card{}, ErrInvalidPriority
	}
	card, err := s.store.InsertCard(ctx, draft, s.clock().UTC())
	if err != nil {
		return Card{}, err
	}
	s.events.Publish(Event{Type: CardCreated, Payload: card})
	return card, nil
}

// UpdateCard overwrites the full field set of a card and refreshes updated_at.
// Semantics are last-write-wins: a stale client clobbers newer writes because
// updates carry the whole object, not a patch.
func (s *Service) UpdateCard(ctx context.Context, id int64, draft CardDraft, position int) (Card, error) {
	if draft.Priority == "" {
		draft.Priority = PriorityMedium
	}
	if !draft.Priority.Valid() {
		return Card{}, ErrInvalidPriority
	}
	card, err := s.store.UpdateCard(ctx, id, draft, position, s.clock().UTC())
	if err != nil {
		return Card{}, err
	}
	s.events.Publish(Event{Type: CardUpdated, Payload: card})
	return card, nil
}

// MoveCard re-homes a card to listID at position in one write, refreshing
// updated_at. Position ties are allowed; ordering for ties falls back to id
// ascending. No renormalization of sibling positions happens.
func (s *Service) MoveCard(ctx context.Context, id, listID int64, position int) (Card, error) {
	card, err := s.store.MoveCard(ctx, id, listID, position, s.clock().UTC())
	if err != nil {
		return Card{}, err
	}
	s.events.Publish(Event{Type: CardUpdated, Payload: card})
	return card, nil
}

// DeleteCard removes a card and cascades to its comments.
func (s *Service) DeleteCard(ctx context.Context, id int64) error {
	if err := s.store.DeleteCard(ctx, id); err != nil {
		return err
	}
	s.events.Publish(Event{Type: CardDeleted, Payload: id})
	return nil
}

// Comments returns a card's comments in creation order.
func (s *Service) Comments(ctx context.Context, cardID int64) ([]Comment, error) {
	return s.store.Comments(ctx, cardID)
}

// AddComment attaches a comment to a card. The author is always the
// authenticated actor, never client-supplied. An unknown card surfaces
// ErrForeignKey.
func (s *Service) AddComment(ctx context.Context, cardID int64, author, content string) (Comment, error) {
	comment, err := s.store.InsertComment(ctx, cardID, author, content, s.clock().UTC())
	if err != nil {
		return Comment{}, err
	}
	s.events.Publish(Event{Type: CommentCreated, Payload: comment})
	return comment, nil
}
