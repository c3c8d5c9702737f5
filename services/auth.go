package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/tadeyemo32/strategai-backend/config"
	"github.com/tadeyemo32/strategai-backend/logger"
)

var (
	ErrMissingAuthHeader = errors.New("Missing authorization header")
	ErrNotAuthenticated  = errors.New("User not authenticated")
)

// DevUserID owns everything created with the dev bypass token.
const DevUserID = "00000000-0000-0000-0000-000000000001"

// SessionResolver maps a bearer token to the id of the signed-in user.
type SessionResolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// NewSessionResolver picks local JWT verification when a secret is
// configured, the auth server's /user endpoint when only its URL and anon
// key are, and rejects everyone otherwise.
func NewSessionResolver(cfg config.AuthConfig) SessionResolver {
	var r SessionResolver
	switch {
	case cfg.JWTSecret != "":
		r = NewJWTResolver([]byte(cfg.JWTSecret))
	case cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "":
		r = NewGoTrueResolver(cfg.SupabaseURL, cfg.SupabaseAnonKey)
	default:
		logger.Log.Warn("[Auth] No session verifier configured; all requests will be rejected")
		r = rejectAll{}
	}
	if cfg.IsDev() {
		r = &devBypassResolver{token: cfg.DevBypassToken, next: r}
	}
	return r
}

// BearerToken pulls the token out of an Authorization header value.
func BearerToken(header string) (string, error) {
	if strings.TrimSpace(header) == "" {
		return "", ErrMissingAuthHeader
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrNotAuthenticated
	}
	return strings.TrimSpace(parts[1]), nil
}

type rejectAll struct{}

func (rejectAll) ResolveUser(context.Context, string) (string, error) {
	return "", ErrNotAuthenticated
}

type devBypassResolver struct {
	token string
	next  SessionResolver
}

func (d *devBypassResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	if token == d.token {
		return DevUserID, nil
	}
	return d.next.ResolveUser(ctx, token)
}

// ─── Local HS256 verification ─────────────────────────────────────────────────

// JWTResolver verifies access tokens signed with the project's JWT secret.
// The user id is the "sub" claim.
type JWTResolver struct {
	secret []byte
}

func NewJWTResolver(secret []byte) *JWTResolver {
	return &JWTResolver{secret: secret}
}

func (j *JWTResolver) ResolveUser(_ context.Context, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		logger.Log.Debugf("[Auth] token rejected: %v", err)
		return "", ErrNotAuthenticated
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		// anon keys are valid JWTs without a subject
		return "", ErrNotAuthenticated
	}
	return sub, nil
}

// GenerateJWT signs an access token for userID, for local development and tests.
func GenerateJWT(secret []byte, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": "authenticated",
		"aud":  "authenticated",
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// ─── Remote verification ──────────────────────────────────────────────────────
// Docs: https://supabase.com/docs/reference/api (GET /auth/v1/user)

// GoTrueResolver asks the auth server who the token belongs to.
type GoTrueResolver struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewGoTrueResolver(baseURL, anonKey string) *GoTrueResolver {
	return &GoTrueResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *GoTrueResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", g.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth server: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read auth server response: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("auth server returned HTTP status %d", resp.StatusCode)
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &user); err != nil {
		return "", fmt.Errorf("auth server response: %w", err)
	}
	if user.ID == "" {
		return "", ErrNotAuthenticated
	}
	return user.ID, nil
}
