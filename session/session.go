package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/mixtape-fm/mixtape/db"
	"github.com/mixtape-fm/mixtape/pkg/web"
)

// Session is a server-side login record. The cookie handed to the client is
// a signed token referencing the session, so logout revokes access even
// before the token expires.
type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Manager struct {
	db       *db.DB
	key      []byte
	ttl      time.Duration
	sessions map[string]*Session // in-memory cache in front of the table
	mu       sync.RWMutex
}

func NewManager(database *db.DB, secret string, ttl time.Duration) *Manager {
	_, err := database.Exec(`
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at TIMESTAMP,
		expires_at TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(id)
	)`)

	if err != nil {
		log.Printf("Error creating sessions table: %v", err)
	}

	return &Manager{
		db:       database,
		key:      []byte(secret),
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session for a user and returns it together with the
// signed cookie token.
func (m *Manager) Create(userID int64) (*Session, string, error) {
	b := make([]byte, 32)
	rand.Read(b)
	sessionID := base64.URLEncoding.EncodeToString(b)

	now := time.Now().UTC()
	expiresAt := now.Add(m.ttl)

	session := &Session{
		ID:        sessionID,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}

	tok, err := jwt.NewBuilder().
		Subject(strconv.FormatInt(userID, 10)).
		Claim("sid", sessionID).
		IssuedAt(now).
		Expiration(expiresAt).
		Build()
	if err != nil {
		return nil, "", err
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, m.key))
	if err != nil {
		return nil, "", err
	}

	m.mu.Lock()
	m.sessions[sessionID] = session
	m.mu.Unlock()

	if m.db != nil {
		_, err := m.db.Exec(`
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
			sessionID, userID, now, expiresAt)

		if err != nil {
			log.Printf("Error storing session in database: %v", err)
		}
	}

	return session, string(signed), nil
}

// Validate verifies the signed token and resolves the referenced session.
func (m *Manager) Validate(token string) (*Session, bool) {
	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, m.key),
		jwt.WithValidate(true))
	if err != nil {
		return nil, false
	}

	sidClaim, ok := tok.Get("sid")
	if !ok {
		return nil, false
	}
	sessionID, ok := sidClaim.(string)
	if !ok {
		return nil, false
	}

	return m.lookup(sessionID)
}

func (m *Manager) lookup(sessionID string) (*Session, bool) {
	m.mu.RLock()
	session, exists := m.sessions[sessionID]
	m.mu.RUnlock()

	if exists {
		if time.Now().UTC().After(session.ExpiresAt) {
			m.Delete(sessionID)
			return nil, false
		}
		return session, true
	}

	if m.db != nil {
		session = &Session{ID: sessionID}

		err := m.db.QueryRow(`
		SELECT user_id, created_at, expires_at
		FROM sessions WHERE id = ?`, sessionID).Scan(
			&session.UserID, &session.CreatedAt, &session.ExpiresAt)

		if err != nil {
			return nil, false
		}

		if time.Now().UTC().After(session.ExpiresAt) {
			m.Delete(sessionID)
			return nil, false
		}

		m.mu.Lock()
		m.sessions[sessionID] = session
		m.mu.Unlock()

		return session, true
	}

	return nil, false
}

// Delete removes a session
func (m *Manager) Delete(sessionID string) {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if m.db != nil {
		_, err := m.db.Exec("DELETE FROM sessions WHERE id = ?", sessionID)
		if err != nil {
			log.Printf("Error deleting session from database: %v", err)
		}
	}
}

// SetCookie sets the signed session cookie for the user.
func (m *Manager) SetCookie(w http.ResponseWriter, session *Session, token string) {
	cookie := &http.Cookie{
		Name:     "session",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		Expires:  session.ExpiresAt,
	}
	http.SetCookie(w, cookie)
}

// ClearCookie clears the session cookie
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	cookie := &http.Cookie{
		Name:     "session",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		MaxAge:   -1,
	}
	http.SetCookie(w, cookie)
}

// FromRequest resolves the session referenced by the request cookie.
func (m *Manager) FromRequest(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie("session")
	if err != nil {
		return nil, false
	}
	return m.Validate(cookie.Value)
}

// WithAuth rejects unauthenticated requests with a 401 JSON body and
// injects the resolved user id into the request context otherwise.
func WithAuth(handler http.HandlerFunc, m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := m.FromRequest(r)
		if !ok {
			web.ErrorMessage(w, http.StatusUnauthorized, "authentication required")
			return
		}

		ctx := WithUserID(r.Context(), session.UserID)
		ctx = WithSessionID(ctx, session.ID)
		handler(w, r.WithContext(ctx))
	}
}

type contextKey int

const (
	userIDKey contextKey = iota
	sessionIDKey
)

func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey).(string)
	return sessionID, ok
}
