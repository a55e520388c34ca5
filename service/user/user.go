// Package user handles account registration and session login/logout.
package user

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mixtape-fm/mixtape/db"
	"github.com/mixtape-fm/mixtape/models"
	"github.com/mixtape-fm/mixtape/pkg/web"
	"github.com/mixtape-fm/mixtape/session"
)

type Service struct {
	db       *db.DB
	sessions *session.Manager
	logger   *slog.Logger
}

func NewService(database *db.DB, sessions *session.Manager, logger *slog.Logger) *Service {
	return &Service{db: database, sessions: sessions, logger: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account. Username and email are unique; a collision
// surfaces as Conflict.
func (s *Service) Register(req registerRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", models.ErrBadRequest)
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", models.ErrBadRequest)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	}

	id, err := s.db.CreateUser(user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	return user, nil
}

// Authenticate verifies credentials and returns the matching user.
func (s *Service) Authenticate(email, password string) (*models.User, error) {
	user, err := s.db.GetUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown account", models.ErrNotFound)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: wrong password", models.ErrForbidden)
	}

	return user, nil
}

func (s *Service) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.ErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.Register(req)
	if err != nil {
		web.Error(w, err)
		return
	}

	s.logger.Info("user registered", "user", user.ID, "username", user.Username)
	web.JSON(w, http.StatusCreated, user)
}

func (s *Service) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.ErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.Authenticate(req.Email, req.Password)
	if err != nil {
		// don't distinguish unknown account from wrong password
		web.ErrorMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	sess, token, err := s.sessions.Create(user.ID)
	if err != nil {
		s.logger.Error("session creation failed", "user", user.ID, "err", err)
		web.Error(w, err)
		return
	}

	s.sessions.SetCookie(w, sess, token)
	web.JSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Service) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := session.GetSessionID(r.Context()); ok {
		s.sessions.Delete(sessionID)
	}

	s.sessions.ClearCookie(w)
	web.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
