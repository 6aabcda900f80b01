package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"travelagency/internal/api"
	"travelagency/internal/audit"
	"travelagency/internal/authz"
	"travelagency/internal/events"
	"travelagency/internal/user"
	"travelagency/pkg/config"
	"travelagency/pkg/db"
	"travelagency/pkg/logger"
	"travelagency/pkg/token"
)

type Handlers struct {
	DB    *pgxpool.Pool
	Users *user.Repository
	Cfg   config.AuthConfig
	Log   logger.Logger
}

type Session struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	ExpiresAt    time.Time  `json:"expiresAt"`
	RefreshToken string     `json:"refreshToken"`
}

// issue signs an access token and stores a fresh refresh token in tx.
func (h Handlers) issue(ctx context.Context, tx pgx.Tx, u *user.User) (*Session, error) {
	now := time.Now()
	acc, err := token.IssueAccess(h.Cfg.JWTSecret, u.ID, string(u.Role), h.Cfg.AccessTTL, now)
	if err != nil {
		return nil, err
	}
	raw, err := token.NewRefresh()
	if err != nil {
		return nil, err
	}
	if err := InsertRefresh(ctx, tx, u.ID, token.HashRefresh(raw), now.Add(h.Cfg.RefreshTTL)); err != nil {
		return nil, err
	}
	return &Session{User: u, AccessToken: acc.Token, ExpiresAt: acc.ExpiresAt, RefreshToken: raw}, nil
}

func invalidCredentials(w http.ResponseWriter) {
	api.WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
}

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=200"`
	Phone    string `json:"phone" validate:"max=50"`
}

// Register always creates a CUSTOMER. Staff accounts come from CreateEmployee.
func (h Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	hash, err := user.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		api.WriteAppError(w, err)
		return
	}

	var s *Session
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		u, err := user.Create(r.Context(), tx, user.CreateParams{
			Email:        req.Email,
			PasswordHash: hash,
			Name:         req.Name,
			Phone:        req.Phone,
			Role:         authz.RoleCustomer,
		})
		if err != nil {
			return err
		}
		if err := audit.Insert(r.Context(), tx, audit.Entry{
			ActorID:    u.ID,
			ActorRole:  string(u.Role),
			Action:     "REGISTERED",
			RecordKind: events.KindUser,
			RecordID:   &u.ID,
		}); err != nil {
			return err
		}
		s, err = h.issue(r.Context(), tx, u)
		return err
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, s)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}

	u, err := h.Users.FindByEmail(r.Context(), req.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		invalidCredentials(w)
		return
	}
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	ok, err := user.CheckPassword(u.PasswordHash, req.Password)
	if err != nil {
		h.Log.Error("password check failed", "user_id", u.ID, "error", err)
	}
	if !ok {
		invalidCredentials(w)
		return
	}

	var s *Session
	err = db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		if err := audit.Insert(r.Context(), tx, audit.Entry{
			ActorID:    u.ID,
			ActorRole:  string(u.Role),
			Action:     "LOGIN",
			RecordKind: events.KindUser,
		}); err != nil {
			return err
		}
		var err error
		s, err = h.issue(r.Context(), tx, u)
		return err
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Refresh rotates the refresh token. The old one stops working.
func (h Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}

	var s *Session
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		userID, err := ConsumeRefresh(r.Context(), tx, token.HashRefresh(req.RefreshToken))
		if errors.Is(err, pgx.ErrNoRows) {
			api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid refresh token")
			return pgx.ErrTxCommitRollback
		}
		if err != nil {
			return err
		}
		u, err := user.GetForUpdate(r.Context(), tx, userID)
		if err != nil {
			return err
		}
		s, err = h.issue(r.Context(), tx, u)
		return err
	})
	if err != nil {
		if err == pgx.ErrTxCommitRollback {
			return
		}
		api.WriteAppError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, s)
}

func (h Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := api.Decode(r, &req); err != nil {
		api.WriteAppError(w, err)
		return
	}
	err := db.WithTx(r.Context(), h.DB, func(tx pgx.Tx) error {
		return RevokeRefresh(r.Context(), tx, token.HashRefresh(req.RefreshToken))
	})
	if err != nil {
		api.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h Handlers) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := api.Caller(w, r)
	if !ok {
		return
	}
	u, err := h.Users.GetByID(r.Context(), caller.UserID)
	if err != nil {
		api.WriteAppError(w, db.NotFound(err, events.KindUser, caller.UserID))
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"user": u})
}

// EnsureSuperAdmin creates or promotes the bootstrap account from config.
// It does nothing when no email is configured.
func EnsureSuperAdmin(ctx context.Context, users *user.Repository, cfg config.AuthConfig) error {
	if cfg.SuperAdminEmail == "" {
		return nil
	}
	hash, err := user.HashPassword(cfg.SuperAdminPassword, cfg.BcryptCost)
	if err != nil {
		return err
	}
	return users.UpsertSuperAdmin(ctx, cfg.SuperAdminEmail, hash)
}
