// Command createuser provisions a user in the credential store. The public
// API has no signup endpoint; accounts are seeded with this tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"biblioteca-backend/models"
	"biblioteca-backend/store"
)

func main() {
	var (
		dsn      string
		username string
		email    string
		password string
		role     string
		inactive bool
	)

	flag.StringVar(&dsn, "dsn", "", "Postgres connection string (defaults to DATABASE_URL)")
	flag.StringVar(&username, "username", "", "Username for the account")
	flag.StringVar(&email, "email", "", "Email address for the account")
	flag.StringVar(&password, "password", "", "Password for the account")
	flag.StringVar(&role, "role", models.RoleUser, "Role: admin or user")
	flag.BoolVar(&inactive, "inactive", false, "Create the account disabled")
	flag.Parse()

	_ = godotenv.Load()
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if strings.TrimSpace(dsn) == "" {
		fatalf("--dsn or DATABASE_URL is required")
	}
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		fatalf("--username is required")
	}
	if email == "" {
		fatalf("--email is required")
	}
	if len(password) < 8 {
		fatalf("--password must be at least 8 characters")
	}
	if !models.RoleValid(role) {
		fatalf("--role must be one of: %s", strings.Join(models.ValidRoles, ", "))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := store.NewPostgres(ctx, dsn)
	if err != nil {
		fatalf("open datastore: %v", err)
	}
	defer db.Close()

	if existing, err := db.UserByIdentifier(ctx, username); err != nil {
		fatalf("lookup user: %v", err)
	} else if existing != nil {
		fatalf("a user with that username already exists")
	}
	if existing, err := db.UserByIdentifier(ctx, email); err != nil {
		fatalf("lookup user: %v", err)
	} else if existing != nil {
		fatalf("a user with that email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     !inactive,
		CreatedAt:    time.Now(),
	}
	if err := db.CreateUser(ctx, user); err != nil {
		fatalf("create user: %v", err)
	}
	fmt.Printf("User %s (%s, role %s) created with id %d.\n", user.Username, user.Email, user.Role, user.ID)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
