// Package session holds the console's single process-wide session. It is
// loaded once at startup from the persisted session file and exposed to the
// rest of the application as a capability interface, replacing per-screen
// re-reads of the stored token.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoSession indicates the session file is missing.
	ErrNoSession = errors.New("session: not signed in")
	// ErrExpired indicates the stored token is past its expiry.
	ErrExpired = errors.New("session: token expired")
)

// User is the signed-in operator as persisted at login.
type User struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	EmployeeID string `json:"employeeid"`
}

// Session is the immutable session state for this process.
type Session struct {
	Token     string
	User      User
	ExpiresAt time.Time
}

type sessionFile struct {
	Token string `json:"token"`
	User  struct {
		Details User `json:"details"`
	} `json:"user"`
}

// Load reads the session file written at login and fills in any fields the
// file omits from the token's claims. The token is not verified here; the
// server is authoritative and rejects stale tokens on first use.
func Load(path string) (*Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}

	var file sessionFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("session: parse %s: %w", path, err)
	}
	if file.Token == "" {
		return nil, ErrNoSession
	}

	sess := &Session{Token: file.Token, User: file.User.Details}
	fillFromClaims(sess)
	if !sess.ExpiresAt.IsZero() && time.Now().After(sess.ExpiresAt) {
		return nil, ErrExpired
	}
	return sess, nil
}

func fillFromClaims(sess *Session) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(sess.Token, claims); err != nil {
		return
	}
	if sess.User.Role == "" {
		if role, ok := claims["role"].(string); ok {
			sess.User.Role = role
		}
	}
	if sess.User.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			sess.User.ID = sub
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		sess.ExpiresAt = exp.Time
	}
}

// Role returns the operator's role string.
func (s *Session) Role() string {
	return s.User.Role
}

// IsSuperAdmin reports whether the operator holds the Super Admin role.
func (s *Session) IsSuperAdmin() bool {
	return strings.EqualFold(s.User.Role, "Super Admin")
}

// CanDelete gates destructive row actions.
func (s *Session) CanDelete() bool {
	return s.IsSuperAdmin()
}

// CanBulkUpload gates the batch import flow.
func (s *Session) CanBulkUpload() bool {
	return s.IsSuperAdmin() || strings.EqualFold(s.User.Role, "Admin")
}

// CanApprove gates proposal and on-call approval actions, which belong to
// the regional and national service heads.
func (s *Session) CanApprove() bool {
	switch strings.ToUpper(s.User.Role) {
	case "RSH", "NSH":
		return true
	default:
		return s.IsSuperAdmin()
	}
}
