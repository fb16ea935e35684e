package domain

import (
	"context"
	"sort"
	"time"
)

// fakeStore mirrors the relational gateway's semantics in memory: max+1
// position assignment, foreign key checks, cascade deletes.
type fakeStore struct {
	lists    map[int64]List
	cards    map[int64]Card
	comments map[int64]Comment
	nextID   int64

	err error // injected failure for every call when set
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lists:    map[int64]List{},
		cards:    map[int64]Card{},
		comments: map[int64]Comment{},
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Lists(ctx context.Context) ([]List, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]List, 0, len(f.lists))
	for _, l := range f.lists {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) InsertList(ctx context.Context, name string, now time.Time) (List, error) {
	if f.err != nil {
		return List{}, f.err
	}
	max := 0
	for _, l := range f.lists {
		if l.Position > max {
			max = l.Position
		}
	}
	list := List{ID: f.id(), Name: name, Position: max + 1, CreatedAt: now}
	f.lists[list.ID] = list
	return list, nil
}

func (f *fakeStore) UpdateList(ctx context.Context, id int64, name string, position int) (List, error) {
	if f.err != nil {
		return List{}, f.err
	}
	list, ok := f.lists[id]
	if !ok {
		return List{}, ErrNotFound
	}
	list.Name = name
	list.Position = position
	f.lists[id] = list
	return list, nil
}

func (f *fakeStore) DeleteList(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	delete(f.lists, id)
	for cid, c := range f.cards {
		if c.ListID == id {
			delete(f.cards, cid)
			for mid, m := range f.comments {
				if m.CardID == cid {
					delete(f.comments, mid)
				}
			}
		}
	}
	return nil
}

func (f *fakeStore) Cards(ctx context.Context) ([]Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]Card, 0, len(f.cards))
	for _, c := range f.cards {
		c.CommentCount = f.countComments(c.ID)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ListID != out[j].ListID {
			return out[i].ListID < out[j].ListID
		}
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f *fakeStore) countComments(cardID int64) int {
	n := 0
	for _, m := range f.comments {
		if m.CardID == cardID {
			n++
		}
	}
	return n
}

func (f *fakeStore) InsertCard(ctx context.Context, draft CardDraft, now time.Time) (Card, error) {
	if f.err != nil {
		return Card{}, f.err
	}
	if _, ok := f.lists[draft.ListID]; !ok {
		return Card{}, ErrForeignKey
	}
	max := 0
	for _, c := range f.cards {
		if c.ListID == draft.ListID && c.Position > max {
			max = c.Position
		}
	}
	card := Card{
		ID:          f.id(),
		ListID:      draft.ListID,
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Position:    max + 1,
		Assignee:    draft.Assignee,
		DueDate:     draft.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.cards[card.ID] = card
	return card, nil
}

func (f *fakeStore) UpdateCard(ctx context.Context, id int64, draft CardDraft, position int, now time.Time) (Card, error) {
	if f.err != nil {
		return Card{}, f.err
	}
	card, ok := f.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	if _, ok := f.lists[draft.ListID]; !ok {
		return Card{}, ErrForeignKey
	}
	card.ListID = draft.ListID
	card.Title = draft.Title
	card.Description = draft.Description
	card.Priority = draft.Priority
	card.Assignee = draft.Assignee
	card.DueDate = draft.DueDate
	card.Position = position
	card.UpdatedAt = now
	f.cards[id] = card
	card.CommentCount = f.countComments(id)
	return card, nil
}

func (f *fakeStore) MoveCard(ctx context.Context, id, listID int64, position int, now time.Time) (Card, error) {
	if f.err != nil {
		return Card{}, f.err
	}
	card, ok := f.cards[id]
	if !ok {
		return Card{}, ErrNotFound
	}
	if _, ok := f.lists[listID]; !ok {
		return Card{}, ErrForeignKey
	}
	card.ListID = listID
	card.Position = position
	card.UpdatedAt = now
	f.cards[id] = card
	card.CommentCount = f.countComments(id)
	return card, nil
}

func (f *fakeStore) DeleteCard(ctx context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	delete(f.cards, id)
	for mid, m := range f.comments {
		if m.CardID == id {
			delete(f.comments, mid)
		}
	}
	return nil
}

func (f *fakeStore) Comments(ctx context.Context, cardID int64) ([]Comment, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []Comment{}
	for _, m := range f.comments {
		if m.CardID == cardID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) InsertComment(ctx context.Context, cardID int64, author, content string, now time.Time) (Comment, error) {
	if f.err != nil {
		return Comment{}, f.err
	}
	if _, ok := f.cards[cardID]; !ok {
		return Comment{}, ErrForeignKey
	}
	comment := Comment{ID: f.id(), CardID: cardID, Author: author, Content: content, CreatedAt: now}
	f.comments[comment.ID] = comment
	return comment, nil
}

// capturePublisher records every published event in order.
type capturePublisher struct {
	events []Event
}

func (p *capturePublisher) Publish(ev Event) {
	p.events = append(p.events, ev)
}
