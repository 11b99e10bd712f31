package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	auditdomain "github.com/smallbiznis/claimdesk/internal/audit/domain"
	authdomain "github.com/smallbiznis/claimdesk/internal/auth/domain"
	"github.com/smallbiznis/claimdesk/internal/authorization"
	"github.com/smallbiznis/claimdesk/internal/config"
)

type fakeAuthService struct {
	loginCalls int
	loginErr   error
	user       *authdomain.User
}

func (f *fakeAuthService) CreateUser(ctx context.Context, req authdomain.CreateUserRequest) (*authdomain.User, error) {
	return &authdomain.User{ID: snowflake.ID(200), Email: req.Email, Role: req.Role}, nil
}

func (f *fakeAuthService) Login(ctx context.Context, req authdomain.LoginRequest) (*authdomain.LoginResult, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &authdomain.LoginResult{
		User:      f.user,
		RawToken:  "session-token",
		ExpiresAt: time.Now().Add(time.Hour),
		SessionID: snowflake.ID(300),
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, rawToken string) error {
	return nil
}

func (f *fakeAuthService) Authenticate(ctx context.Context, rawToken string) (*authdomain.User, *authdomain.Session, error) {
	if rawToken != "session-token" {
		return nil, nil, authdomain.ErrInvalidSession
	}
	return f.user, &authdomain.Session{
		ID:        snowflake.ID(300),
		UserID:    f.user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (f *fakeAuthService) ChangePassword(ctx context.Context, userID snowflake.ID, currentPassword, newPassword string) error {
	return nil
}

func (f *fakeAuthService) GetUser(ctx context.Context, id snowflake.ID) (*authdomain.User, error) {
	return f.user, nil
}

func (f *fakeAuthService) ListUsers(ctx context.Context, filter authdomain.ListUserFilter) ([]*authdomain.User, error) {
	return nil, nil
}

func (f *fakeAuthService) UpdateUser(ctx context.Context, id snowflake.ID, req authdomain.UpdateUserRequest) (*authdomain.User, error) {
	return f.user, nil
}

func (f *fakeAuthService) DeleteUser(ctx context.Context, id snowflake.ID) error {
	return nil
}

type fakeAuditService struct{}

func (fakeAuditService) AuditLog(ctx context.Context, actorType string, actorID *string, action string, targetType string, targetID *string, metadata map[string]any) error {
	return nil
}

func (fakeAuditService) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	return auditdomain.ListAuditLogResponse{}, nil
}

type fakeAuthzService struct {
	allow bool
}

func (f *fakeAuthzService) Authorize(ctx context.Context, role authdomain.Role, object, action string) error {
	if !f.allow {
		return authorization.ErrForbidden
	}
	return nil
}

func newTestServer(authSvc authdomain.Service, authzSvc authorization.Service) *Server {
	return &Server{
		cfg:      config.Config{},
		log:      zap.NewNop(),
		authsvc:  authSvc,
		authzSvc: authzSvc,
		auditSvc: fakeAuditService{},
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := &fakeAuthService{
		user: &authdomain.User{ID: snowflake.ID(200), Email: "alice@example.com", Role: authdomain.RolePolicyholder, IsActive: true},
	}
	srv := newTestServer(authSvc, &fakeAuthzService{allow: true})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/auth/login", srv.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"alice@example.com","password":"secret"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if authSvc.loginCalls != 1 {
		t.Fatalf("expected one login call, got %d", authSvc.loginCalls)
	}

	var sessionCookie *http.Cookie
	for _, cookie := range resp.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if sessionCookie.Value != "session-token" {
		t.Fatalf("unexpected cookie value %q", sessionCookie.Value)
	}
	if !sessionCookie.HttpOnly {
		t.Fatal("expected session cookie to be http-only")
	}
}

func TestLoginInvalidCredentialsReturns401(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := &fakeAuthService{loginErr: authdomain.ErrInvalidCredentials}
	srv := newTestServer(authSvc, &fakeAuthzService{allow: true})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/auth/login", srv.Login)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"alice@example.com","password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAuthRequiredRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := &fakeAuthService{
		user: &authdomain.User{ID: snowflake.ID(200), Role: authdomain.RolePolicyholder, IsActive: true},
	}
	srv := newTestServer(authSvc, &fakeAuthzService{allow: true})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/ping", srv.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestAuthRequiredAcceptsBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := &fakeAuthService{
		user: &authdomain.User{ID: snowflake.ID(200), Role: authdomain.RolePolicyholder, IsActive: true},
	}
	srv := newTestServer(authSvc, &fakeAuthzService{allow: true})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/ping", srv.AuthRequired(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer session-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
}

func TestAuthorizeDeniedReturns403(t *testing.T) {
	gin.SetMode(gin.TestMode)

	authSvc := &fakeAuthService{
		user: &authdomain.User{ID: snowflake.ID(200), Role: authdomain.RolePolicyholder, IsActive: true},
	}
	srv := newTestServer(authSvc, &fakeAuthzService{allow: false})

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/audit-logs",
		srv.AuthRequired(),
		srv.authorize(authorization.ObjectAuditLog, authorization.ActionView),
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		},
	)

	req := httptest.NewRequest(http.MethodGet, "/api/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer session-token")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", resp.Code)
	}
}
