package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mixtape-fm/mixtape/db"
	"github.com/mixtape-fm/mixtape/models"
)

func setupManager(t *testing.T, ttl time.Duration) (*Manager, int64) {
	t.Helper()

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.Initialize(); err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}

	userID, err := database.CreateUser(&models.User{
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "x",
	})
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return NewManager(database, "test-secret", ttl), userID
}

func TestCreateAndValidate(t *testing.T) {
	manager, userID := setupManager(t, time.Hour)

	sess, token, err := manager.Create(userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}

	got, ok := manager.Validate(token)
	if !ok {
		t.Fatal("expected token to validate")
	}
	if got.UserID != userID || got.ID != sess.ID {
		t.Errorf("resolved wrong session: %+v", got)
	}
}

func TestValidateSurvivesCacheLoss(t *testing.T) {
	manager, userID := setupManager(t, time.Hour)

	_, token, err := manager.Create(userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// drop the in-memory cache; the table is the source of truth
	manager.mu.Lock()
	manager.sessions = make(map[string]*Session)
	manager.mu.Unlock()

	if _, ok := manager.Validate(token); !ok {
		t.Fatal("expected session to be resolvable from the database")
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	manager, userID := setupManager(t, time.Hour)

	_, token, err := manager.Create(userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, ok := manager.Validate(tampered); ok {
		t.Fatal("tampered token must not validate")
	}
}

func TestWrongKeyRejected(t *testing.T) {
	manager, userID := setupManager(t, time.Hour)
	other, _ := setupManager(t, time.Hour)

	_, token, err := manager.Create(userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	other.key = []byte("different-secret")
	if _, ok := other.Validate(token); ok {
		t.Fatal("token signed with another key must not validate")
	}
}

func TestDeleteRevokesSession(t *testing.T) {
	manager, userID := setupManager(t, time.Hour)

	sess, token, err := manager.Create(userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	manager.Delete(sess.ID)

	if _, ok := manager.Validate(token); ok {
		t.Fatal("deleted session must not validate even with a valid signature")
	}
}

func TestExpiredSessionRejected(t *testing.T) {
	manager, userID := setupManager(t, -time.Minute)

	_, token, err := manager.Create(userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, ok := manager.Validate(token); ok {
		t.Fatal("expired session must not validate")
	}
}

func TestWithAuthRejectsMissingCookie(t *testing.T) {
	manager, _ := setupManager(t, time.Hour)

	handler := WithAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	}, manager)

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/playlists", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Errorf("expected JSON error body, got %q", rec.Body.String())
	}
}

func TestWithAuthInjectsUserID(t *testing.T) {
	manager, userID := setupManager(t, time.Hour)

	sess, token, err := manager.Create(userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var gotUser int64
	var gotSession string
	handler := WithAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = GetUserID(r.Context())
		gotSession, _ = GetSessionID(r.Context())
	}, manager)

	req := httptest.NewRequest(http.MethodGet, "/api/playlists", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})

	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != userID {
		t.Errorf("expected user %d in context, got %d", userID, gotUser)
	}
	if gotSession != sess.ID {
		t.Errorf("expected session %s in context, got %s", sess.ID, gotSession)
	}
}
