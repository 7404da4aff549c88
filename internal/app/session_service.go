package app

import (
	"context"
	"crypto/subtle"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"quiz-outcome-service/internal/domain"
)

// SessionRepository abstracts where browser sessions live (in-memory, Redis).
type SessionRepository interface {
	// Load returns the session and whether it exists.
	Load(ctx context.Context, id string) (domain.Session, bool, error)
	Save(ctx context.Context, id string, session domain.Session) error
	Delete(ctx context.Context, id string) error
}

// Credentials is the single admin account. PasswordHash, when set, is a bcrypt
// hash and takes precedence over the plaintext Password.
type Credentials struct {
	Username     string
	Password     string
	PasswordHash string
}

// Plaintext reports whether the credential is checked against a plaintext password.
func (c Credentials) Plaintext() bool {
	return c.PasswordHash == ""
}

func (c Credentials) matches(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	var passOK bool
	if c.Plaintext() {
		passOK = subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	} else {
		passOK = bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) == nil
	}
	return userOK && passOK && c.Username != ""
}

// SessionService handles admin login state and flash messages.
type SessionService struct {
	sessions SessionRepository
	creds    Credentials
}

func NewSessionService(sessions SessionRepository, creds Credentials) *SessionService {
	return &SessionService{sessions: sessions, creds: creds}
}

// Login checks the credentials and moves the session to a new id with the
// admin flag set, returning that id. Pending flashes carry over and the old id
// is dropped, so an id known before login never becomes an admin session.
func (s *SessionService) Login(ctx context.Context, sessionID, username, password string) (string, error) {
	if !s.creds.matches(username, password) {
		return "", domain.ErrInvalidCredentials
	}
	sess, _, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	sess.Admin = true
	newID := uuid.NewString()
	if err := s.sessions.Save(ctx, newID, sess); err != nil {
		return "", err
	}
	if sessionID != "" {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			return "", err
		}
	}
	return newID, nil
}

// Logout clears the admin flag. Pending flashes survive so the logout notice can be shown.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	return s.update(ctx, sessionID, func(sess *domain.Session) {
		sess.Admin = false
	})
}

// IsAdmin reports whether the session has logged in.
func (s *SessionService) IsAdmin(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	sess, ok, err := s.sessions.Load(ctx, sessionID)
	if err != nil || !ok {
		return false, err
	}
	return sess.Admin, nil
}

// AddFlash queues a message for the next rendered page.
func (s *SessionService) AddFlash(ctx context.Context, sessionID, category, message string) error {
	return s.update(ctx, sessionID, func(sess *domain.Session) {
		sess.Flashes = append(sess.Flashes, domain.Flash{Category: category, Message: message})
	})
}

// PopFlashes returns and clears queued messages.
func (s *SessionService) PopFlashes(ctx context.Context, sessionID string) ([]domain.Flash, error) {
	if sessionID == "" {
		return nil, nil
	}
	sess, ok, err := s.sessions.Load(ctx, sessionID)
	if err != nil || !ok || len(sess.Flashes) == 0 {
		return nil, err
	}
	flashes := sess.Flashes
	sess.Flashes = nil
	if err := s.sessions.Save(ctx, sessionID, sess); err != nil {
		return nil, err
	}
	return flashes, nil
}

func (s *SessionService) update(ctx context.Context, sessionID string, fn func(*domain.Session)) error {
	sess, _, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}
	fn(&sess)
	return s.sessions.Save(ctx, sessionID, sess)
}
