// Command provision prepares a board database: it creates the schema,
// seeds the admin account and default lists, and can reset a user's
// password in place.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"tasktracker/storage"
)

func main() {
	dbPath := flag.String("db", "tasktracker.db", "path to the SQLite database file")
	admin := flag.String("admin", "admin", "admin username to seed")
	password := flag.String("password", "", "password for the seeded or reset account")
	reset := flag.Bool("reset-password", false, "reset the password of an existing user instead of seeding")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("ADMIN_PASSWORD")
	}
	if *password == "" {
		log.Fatal("no password given, use -password or ADMIN_PASSWORD")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	store, err := storage.Open(*dbPath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *reset {
		if err := store.SetUserPassword(ctx, *admin, string(hash)); err != nil {
			log.Fatalf("reset password for %q: %v", *admin, err)
		}
		log.WithField("username", *admin).Info("password reset")
		return
	}

	if err := store.Seed(ctx, *admin, string(hash)); err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.WithFields(log.Fields{"db": *dbPath, "username": *admin}).Info("database provisioned")
}
