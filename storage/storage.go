package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"

	"tasktracker/domain"
)

// Storage is the relational persistence gateway for the board. Every mutation
// is a single atomic statement; SQLite's WAL journal provides durability across
// process restarts without rewriting the whole database file per write.
type Storage struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the SQLite database at path and ensures
// the schema exists.
func Open(path string) (*Storage, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers and sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	s := &Storage{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Storage) Close() error {
	return s.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT UNIQUE NOT NULL,
	password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS lists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS cards (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	list_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'medium',
	position INTEGER NOT NULL DEFAULT 0,
	assignee TEXT,
	due_date TEXT,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (list_id) REFERENCES lists(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS comments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	card_id INTEGER NOT NULL,
	author TEXT NOT NULL,
	content TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (card_id) REFERENCES cards(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_cards_list ON cards(list_id, position);
CREATE INDEX IF NOT EXISTS idx_comments_card ON comments(card_id);
`

func (s *Storage) ensureSchema() error {
	_, err := s.db.Exec(schema)
	return err
}

// mapErr converts driver-level constraint failures into the domain taxonomy.
func mapErr(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		return domain.ErrForeignKey
	}
	return err
}

// Lists returns all lists ordered by position, ties broken by id.
func (s *Storage) Lists(ctx context.Context) ([]domain.List, error) {
	lists := []domain.List{}
	err := s.db.SelectContext(ctx, &lists,
		`SELECT id, name, position, created_at FROM lists ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// InsertList appends a list after the current last position. The position is
// computed inside the INSERT itself, so concurrent creates cannot observe the
// same maximum and collide.
func (s *Storage) InsertList(ctx context.Context, name string, now time.Time) (domain.List, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO lists (name, position, created_at)
		 VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM lists), ?)`,
		name, now)
	if err != nil {
		return domain.List{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.List{}, err
	}
	return s.getList(ctx, id)
}

func (s *Storage) getList(ctx context.Context, id int64) (domain.List, error) {
	var list domain.List
	err := s.db.GetContext(ctx, &list,
		`SELECT id, name, position, created_at FROM lists WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.List{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.List{}, err
	}
	return list, nil
}

// UpdateList overwrites name and position of an existing list.
func (s *Storage) UpdateList(ctx context.Context, id int64, name string, position int) (domain.List, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE lists SET name = ?, position = ? WHERE id = ?`, name, position, id)
	if err != nil {
		return domain.List{}, mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.List{}, domain.ErrNotFound
	}
	return s.getList(ctx, id)
}

// DeleteList removes a list; cards and their comments go with it via cascade.
// Deleting an absent id matches zero rows and reports success.
func (s *Storage) DeleteList(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM lists WHERE id = ?`, id)
	return err
}

const cardColumns = `
	c.id, c.list_id, c.title, c.description, c.priority, c.position,
	c.assignee, c.due_date, c.created_at, c.updated_at,
	(SELECT COUNT(*) FROM comments WHERE card_id = c.id) AS comment_count`

// Cards returns every card with its derived comment count, grouped by list and
// ordered by position, ties broken by id.
func (s *Storage) Cards(ctx context.Context) ([]domain.Card, error) {
	cards := []domain.Card{}
	err := s.db.SelectContext(ctx, &cards,
		`SELECT `+cardColumns+` FROM cards c ORDER BY c.list_id, c.position, c.id`)
	if err != nil {
		return nil, err
	}
	return cards, nil
}

func (s *Storage) getCard(ctx context.Context, id int64) (domain.Card, error) {
	var card domain.Card
	err := s.db.GetContext(ctx, &card,
		`SELECT `+cardColumns+` FROM cards c WHERE c.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Card{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

// InsertCard appends a card at the end of its list. Position assignment is part
// of the INSERT statement and therefore atomic per list.
func (s *Storage) InsertCard(ctx context.Context, draft domain.CardDraft, now time.Time) (domain.Card, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (list_id, title, description, priority, assignee, due_date, position, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM cards WHERE list_id = ?), ?, ?)`,
		draft.ListID, draft.Title, draft.Description, draft.Priority,
		draft.Assignee, draft.DueDate, draft.ListID, now, now)
	if err != nil {
		return domain.Card{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Card{}, err
	}
	return s.getCard(ctx, id)
}

// UpdateCard overwrites the full field set of an existing card.
func (s *Storage) UpdateCard(ctx context.Context, id int64, draft domain.CardDraft, position int, now time.Time) (domain.Card, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cards
		 SET list_id = ?, title = ?, description = ?, priority = ?, assignee = ?, due_date = ?, position = ?, updated_at = ?
		 WHERE id = ?`,
		draft.ListID, draft.Title, draft.Description, draft.Priority,
		draft.Assignee, draft.DueDate, position, now, id)
	if err != nil {
		return domain.Card{}, mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Card{}, domain.ErrNotFound
	}
	return s.getCard(ctx, id)
}

// MoveCard sets list_id and position in one statement.
func (s *Storage) MoveCard(ctx context.Context, id, listID int64, position int, now time.Time) (domain.Card, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cards SET list_id = ?, position = ?, updated_at = ? WHERE id = ?`,
		listID, position, now, id)
	if err != nil {
		return domain.Card{}, mapErr(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Card{}, domain.ErrNotFound
	}
	return s.getCard(ctx, id)
}

// DeleteCard removes a card and, via cascade, its comments.
func (s *Storage) DeleteCard(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	return err
}

// Comments returns a card's comments in creation order.
func (s *Storage) Comments(ctx context.Context, cardID int64) ([]domain.Comment, error) {
	comments := []domain.Comment{}
	err := s.db.SelectContext(ctx, &comments,
		`SELECT id, card_id, author, content, created_at FROM comments WHERE card_id = ? ORDER BY created_at, id`,
		cardID)
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// InsertComment attaches a comment to an existing card.
func (s *Storage) InsertComment(ctx context.Context, cardID int64, author, content string, now time.Time) (domain.Comment, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (card_id, author, content, created_at) VALUES (?, ?, ?, ?)`,
		cardID, author, content, now)
	if err != nil {
		return domain.Comment{}, mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Comment{}, err
	}
	var comment domain.Comment
	err = s.db.GetContext(ctx, &comment,
		`SELECT id, card_id, author, content, created_at FROM comments WHERE id = ?`, id)
	if err != nil {
		return domain.Comment{}, err
	}
	return comment, nil
}

// Credentials returns the stored identity and bcrypt password hash for a
// username.
func (s *Storage) Credentials(ctx context.Context, username string) (domain.User, string, error) {
	var row struct {
		ID       int64  `db:"id"`
		Username string `db:"username"`
		Password string `db:"password"`
	}
	err := s.db.GetContext(ctx, &row,
		`SELECT id, username, password FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, "", domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, "", err
	}
	return domain.User{ID: row.ID, Username: row.Username}, row.Password, nil
}

// SetUserPassword replaces the stored password hash for an existing user.
func (s *Storage) SetUserPassword(ctx context.Context, username, passwordHash string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET password = ? WHERE username = ?`, passwordHash, username)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
