// Package service implements authentication and user management.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/claimdesk/internal/auth/domain"
	"github.com/smallbiznis/claimdesk/internal/auth/password"
	"github.com/smallbiznis/claimdesk/internal/config"
)

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	GenID    *snowflake.Node
	Users    domain.Repository
	Sessions domain.SessionRepository
}

type service struct {
	cfg      config.Config
	log      *zap.Logger
	genID    *snowflake.Node
	users    domain.Repository
	sessions domain.SessionRepository
	now      func() time.Time
}

func New(p Params) domain.Service {
	return &service{
		cfg:      p.Config,
		log:      p.Log,
		genID:    p.GenID,
		users:    p.Users,
		sessions: p.Sessions,
		now:      time.Now,
	}
}

func (s *service) CreateUser(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidEmail
	}
	if len(req.Password) < 8 {
		return nil, domain.ErrInvalidPassword
	}
	if !domain.ValidRole(req.Role) {
		return nil, domain.ErrInvalidRole
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           s.genID.Generate(),
		Email:        email,
		PasswordHash: &hash,
		FullName:     strings.TrimSpace(req.FullName),
		Role:         req.Role,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !password.Verify(req.Password, *user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	rawToken, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(s.cfg.SessionTTLHours) * time.Hour)
	session := &domain.Session{
		ID:               s.genID.Generate(),
		UserID:           user.ID,
		SessionTokenHash: hashToken(rawToken),
		UserAgent:        req.UserAgent,
		IPAddress:        req.IPAddress,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
		LastSeenAt:       now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info("login", zap.String("user_id", user.ID.String()))
	return &domain.LoginResult{
		User:      user,
		RawToken:  rawToken,
		ExpiresAt: expiresAt,
		SessionID: session.ID,
	}, nil
}

func (s *service) Logout(ctx context.Context, rawToken string) error {
	session, err := s.sessions.GetSessionByTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		return err
	}
	return s.sessions.RevokeSession(ctx, session.ID, s.now())
}

// Authenticate resolves a raw session token into the active user behind it.
func (s *service) Authenticate(ctx context.Context, rawToken string) (*domain.User, *domain.Session, error) {
	if rawToken == "" {
		return nil, nil, domain.ErrInvalidSession
	}

	session, err := s.sessions.GetSessionByTokenHash(ctx, hashToken(rawToken))
	if err != nil {
		return nil, nil, err
	}
	now := s.now()
	if session.RevokedAt != nil {
		return nil, nil, domain.ErrSessionRevoked
	}
	if now.After(session.ExpiresAt) {
		return nil, nil, domain.ErrSessionExpired
	}

	user, err := s.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsActive {
		return nil, nil, domain.ErrUserInactive
	}

	if err := s.sessions.UpdateLastSeen(ctx, session.ID, now); err != nil {
		s.log.Warn("update session last seen", zap.Error(err))
	}
	return user, session, nil
}

func (s *service) ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.PasswordHash == nil || !password.Verify(currentPassword, *user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	if len(newPassword) < 8 {
		return domain.ErrInvalidPassword
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdateFields(ctx, userID, map[string]any{
		"password_hash": hash,
		"updated_at":    s.now(),
	})
}

func (s *service) GetUser(ctx context.Context, id snowflake.ID) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *service) ListUsers(ctx context.Context, filter domain.ListUserFilter) ([]*domain.User, error) {
	return s.users.List(ctx, filter)
}

func (s *service) UpdateUser(ctx context.Context, id snowflake.ID, req domain.UpdateUserRequest) (*domain.User, error) {
	fields := map[string]any{}
	if req.FullName != nil {
		fields["full_name"] = strings.TrimSpace(*req.FullName)
	}
	if req.Role != nil {
		if !domain.ValidRole(*req.Role) {
			return nil, domain.ErrInvalidRole
		}
		fields["role"] = *req.Role
	}
	if req.IsActive != nil {
		fields["is_active"] = *req.IsActive
	}
	if len(fields) > 0 {
		fields["updated_at"] = s.now()
		if err := s.users.UpdateFields(ctx, id, fields); err != nil {
			return nil, err
		}
	}
	return s.users.FindByID(ctx, id)
}

func (s *service) DeleteUser(ctx context.Context, id snowflake.ID) error {
	return s.users.Delete(ctx, id)
}

func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// hashToken stores only a digest of the session token at rest.
func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
