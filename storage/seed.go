package storage

import (
	"context"
	"time"
)

var defaultLists = []string{"To Do", "In Progress", "Done"}

// Seed provisions the admin account and the starter lists. It is idempotent:
// an existing admin is left untouched and lists are only created on an empty
// board. Seeding is a one-time provisioning concern, not board logic.
func (s *Storage) Seed(ctx context.Context, adminUser, adminPasswordHash string) error {
	var users int
	if err := s.db.GetContext(ctx, &users,
		`SELECT COUNT(*) FROM users WHERE username = ?`, adminUser); err != nil {
		return err
	}
	if users == 0 {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO users (username, password) VALUES (?, ?)`,
			adminUser, adminPasswordHash); err != nil {
			return err
		}
	}

	var lists int
	if err := s.db.GetContext(ctx, &lists, `SELECT COUNT(*) FROM lists`); err != nil {
		return err
	}
	if lists == 0 {
		now := time.Now().UTC()
		for _, name := range defaultLists {
			if _, err := s.InsertList(ctx, name, now); err != nil {
				return err
			}
		}
	}
	return nil
}
