package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/agriconnect/internal/metrics"
	"github.com/Skotchmaster/agriconnect/internal/mykafka"
	"github.com/Skotchmaster/agriconnect/internal/repo"
	"github.com/Skotchmaster/agriconnect/pkg/hash"
	"github.com/Skotchmaster/agriconnect/pkg/logging"
	"github.com/Skotchmaster/agriconnect/pkg/registry"
	"github.com/Skotchmaster/agriconnect/pkg/tokens"
)

type PrincipalFinder interface {
	FindPrincipalByEmail(ctx context.Context, email string) (*repo.Principal, error)
}

type AuthService struct {
	Principals PrincipalFinder
	Issuer     *tokens.Issuer
	Hasher     *hash.Hasher
	Registry   registry.Store
	Events     EventPublisher

	dummyOnce   sync.Once
	dummyDigest string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    string
}

type LoginResult struct {
	TokenPair
	Principal *repo.Principal
}

// burnVerify spends the same bcrypt work as a real check so unknown emails
// answer in about the same time as wrong passwords.
func (s *AuthService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.Hasher.Hash("agriconnect-dummy-password")
	})
	_ = s.Hasher.Verify(password, s.dummyDigest)
}

func (s *AuthService) issuePair(ctx context.Context, sub, email string, role tokens.Role) (*TokenPair, error) {
	access, err := s.Issuer.IssueAccess(sub, email, role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Issuer.IssueRefresh(sub, email, role)
	if err != nil {
		return nil, err
	}
	if err := s.Registry.Add(ctx, refresh, s.Issuer.RefreshTTL); err != nil {
		return nil, err
	}
	metrics.IssuedTokens.WithLabelValues("access").Inc()
	metrics.IssuedTokens.WithLabelValues("refresh").Inc()
	return &TokenPair{AccessToken: access, RefreshToken: refresh, ExpiresIn: s.Issuer.AccessLabel}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		l.Warn("login failed", "status", 400, "reason", "missing fields")
		metrics.LoginTotal.WithLabelValues("invalid").Inc()
		return nil, fail(ErrValidation, "Email e senha são obrigatórios")
	}

	p, err := s.Principals.FindPrincipalByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.burnVerify(password)
		l.Warn("login failed", "status", 401, "reason", "invalid credentials")
		metrics.LoginTotal.WithLabelValues("invalid").Inc()
		return nil, fail(ErrInvalidCredentials, "Credenciais inválidas")
	}
	if err != nil {
		l.Error("login failed", "status", 500, "error", err)
		metrics.LoginTotal.WithLabelValues("fail").Inc()
		return nil, err
	}
	if !s.Hasher.Verify(password, p.PasswordHash()) {
		l.Warn("login failed", "status", 401, "reason", "invalid credentials")
		metrics.LoginTotal.WithLabelValues("invalid").Inc()
		return nil, fail(ErrInvalidCredentials, "Credenciais inválidas")
	}

	pair, err := s.issuePair(ctx, p.ID(), p.Email(), p.Role())
	if err != nil {
		l.Error("login failed", "status", 500, "error", err)
		metrics.LoginTotal.WithLabelValues("fail").Inc()
		return nil, err
	}

	metrics.LoginTotal.WithLabelValues("ok").Inc()
	l.Info("login succeeded", "kind", p.Kind.String(), "sub", p.ID())
	publish(ctx, s.Events, mykafka.TopicUserEvents, p.ID(), "user_logged_in", map[string]any{
		"sub":  p.ID(),
		"kind": p.Kind.String(),
		"role": p.Role(),
	})
	return &LoginResult{TokenPair: *pair, Principal: p}, nil
}

// Refresh exchanges a registered refresh token for a new pair. The old token
// is consumed before anything else so it can be used at most once.
func (s *AuthService) Refresh(ctx context.Context, oldToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if oldToken == "" {
		metrics.RefreshTotal.WithLabelValues("invalid").Inc()
		return nil, fail(ErrMissingToken, "Refresh token não fornecido")
	}

	ok, err := s.Registry.Consume(ctx, oldToken)
	if err != nil {
		l.Error("refresh failed", "status", 500, "error", err)
		metrics.RefreshTotal.WithLabelValues("fail").Inc()
		return nil, err
	}
	if !ok {
		l.Warn("refresh failed", "status", 403, "reason", "token not registered")
		metrics.RefreshTotal.WithLabelValues("unregistered").Inc()
		return nil, fail(ErrTokenNotRegistered, "Refresh token inválido")
	}

	claims, err := s.Issuer.VerifyRefresh(oldToken)
	if err != nil {
		l.Warn("refresh failed", "status", 403, "reason", "token invalid or expired", "error", err)
		metrics.RefreshTotal.WithLabelValues("invalid").Inc()
		return nil, fail(ErrTokenInvalidOrExpired, "Refresh token expirado ou inválido")
	}

	p, err := s.Principals.FindPrincipalByEmail(ctx, claims.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		l.Warn("refresh failed", "status", 404, "reason", "principal gone", "sub", claims.Subject)
		metrics.RefreshTotal.WithLabelValues("gone").Inc()
		return nil, fail(ErrPrincipalGone, "Usuário não encontrado")
	}
	if err != nil {
		l.Error("refresh failed", "status", 500, "error", err)
		metrics.RefreshTotal.WithLabelValues("fail").Inc()
		s.restore(ctx, oldToken, claims)
		return nil, err
	}
	if p.ID() != claims.Subject {
		l.Warn("refresh failed", "status", 404, "reason", "subject changed", "sub", claims.Subject)
		metrics.RefreshTotal.WithLabelValues("gone").Inc()
		return nil, fail(ErrPrincipalGone, "Usuário não encontrado")
	}

	pair, err := s.issuePair(ctx, p.ID(), p.Email(), p.Role())
	if err != nil {
		l.Error("refresh failed", "status", 500, "error", err)
		metrics.RefreshTotal.WithLabelValues("fail").Inc()
		s.restore(ctx, oldToken, claims)
		return nil, err
	}
	metrics.RefreshTotal.WithLabelValues("ok").Inc()
	return pair, nil
}

// restore puts a consumed token back after a server-side failure so the
// client can retry with it. Only its remaining lifetime is restored.
func (s *AuthService) restore(ctx context.Context, token string, claims *tokens.Claims) {
	if claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.Registry.Add(ctx, token, ttl); err != nil {
		logging.FromContext(ctx).With("svc", "auth.refresh").Error("restore refresh token failed", "error", err)
	}
}

// Logout revokes the token if one is given. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.Registry.Revoke(ctx, token); err != nil {
		logging.FromContext(ctx).With("svc", "auth.logout").Error("logout failed", "status", 500, "error", err)
		return err
	}
	return nil
}

// ValidRefresh reports whether a stored refresh token still verifies.
func (s *AuthService) ValidRefresh(token string) bool {
	_, err := s.Issuer.VerifyRefresh(token)
	return err == nil
}
