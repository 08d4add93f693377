// Package auth is the identity provider for the web front end: email and
// password accounts with bearer session tokens, stored in SQLite.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/joelkehle/justplanit/internal/storage"
)

const (
	MinPasswordLength = 6
	DefaultSessionTTL = 7 * 24 * time.Hour
)

var (
	ErrMissingFields      = errors.New("please fill in all fields")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidSession     = errors.New("session is invalid or expired")
)

const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	username      TEXT NOT NULL,
	display_name  TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	token_hash TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TEXT NOT NULL,
	expires_at TEXT NOT NULL
);
`

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Username     string `db:"username"`
	DisplayName  string `db:"display_name"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) user() User {
	return User{
		ID:          r.ID,
		Email:       r.Email,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		CreatedAt:   storage.ParseTime(r.CreatedAt),
	}
}

type Session struct {
	Token     string    `json:"access_token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type SignUpInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type Options struct {
	SessionTTL time.Duration
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	Clock      func() time.Time
}

type Service struct {
	db   *sqlx.DB
	opts Options
}

// NewService applies the auth schema to db. The caller owns db.
func NewService(db *sqlx.DB, opts Options) (*Service, error) {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("create auth schema: %w", err)
	}
	return &Service{db: db, opts: opts}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) (User, error) {
	email := normalizeEmail(in.Email)
	username := strings.TrimSpace(in.Username)
	displayName := strings.TrimSpace(in.DisplayName)
	if email == "" || in.Password == "" || username == "" || displayName == "" {
		return User{}, ErrMissingFields
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return User{}, ErrInvalidEmail
	}
	if len(in.Password) < MinPasswordLength {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	row := userRow{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Username:     username,
		DisplayName:  displayName,
		CreatedAt:    storage.FormatTime(s.opts.Clock()),
	}
	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, username, display_name, created_at)
		VALUES (:id, :email, :password_hash, :username, :display_name, :created_at)`, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return User{}, ErrEmailTaken
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return row.user(), nil
}

func (s *Service) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrMissingFields
	}
	var row userRow
	err := s.db.GetContext(ctx, &row, `SELECT id, email, password_hash, username, display_name, created_at FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("load user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	token := newToken()
	now := s.opts.Clock()
	expires := now.Add(s.opts.SessionTTL)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (token_hash, user_id, created_at, expires_at) VALUES (?, ?, ?, ?)`,
		hashToken(token), row.ID, storage.FormatTime(now), storage.FormatTime(expires))
	if err != nil {
		return Session{}, fmt.Errorf("insert session: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires.UTC(), User: row.user()}, nil
}

// SignOut revokes token. Unknown tokens are not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, hashToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Lookup resolves a bearer token to its user.
func (s *Service) Lookup(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrInvalidSession
	}
	var row struct {
		userRow
		ExpiresAt string `db:"expires_at"`
	}
	err := s.db.GetContext(ctx, &row, `
		SELECT u.id, u.email, u.password_hash, u.username, u.display_name, u.created_at, s.expires_at
		FROM sessions s JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = ?`, hashToken(token))
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrInvalidSession
	}
	if err != nil {
		return User{}, fmt.Errorf("load session: %w", err)
	}
	if !s.opts.Clock().Before(storage.ParseTime(row.ExpiresAt)) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = ?`, hashToken(token))
		return User{}, ErrInvalidSession
	}
	return row.user(), nil
}

func newToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
