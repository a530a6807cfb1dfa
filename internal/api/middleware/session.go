package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionHeader = "X-Cart-Session"

type sessionContextKey struct{}

var SessionContextKey = sessionContextKey{}

// CartSession hands out signed session tokens so an anonymous shopper keeps
// the same cart across requests.
type CartSession struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewCartSession(key []byte, ttl time.Duration) *CartSession {
	return &CartSession{key: key, ttl: ttl, now: time.Now}
}

// Issue signs a token for sessionID valid for the configured TTL.
func (m *CartSession) Issue(sessionID string) (string, error) {
	now := m.now()

	claims := &models.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return token, nil
}

// Parse returns the claims of a valid token signed with HS256 and our key.
func (m *CartSession) Parse(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(m.now))
	if err != nil {
		return nil, err
	}

	if !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("session token carries no session id")
	}

	return claims, nil
}

// Handler resolves the session from the X-Cart-Session header. A missing,
// invalid or expired token starts a new session; the new token is returned in
// the same header. Tokens past half their lifetime are renewed.
func (m *CartSession) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		var sessionID string
		renew := true

		if tokenString := r.Header.Get(SessionHeader); tokenString != "" {
			claims, err := m.Parse(tokenString)
			if err != nil {
				logger.Warn("Rejected cart session token, starting a new session", slog.String("error", err.Error()))
			} else {
				sessionID = claims.SessionID
				renew = claims.ExpiresAt != nil && claims.ExpiresAt.Sub(m.now()) < m.ttl/2
			}
		}

		if sessionID == "" {
			sessionID = uuid.NewString()
		}

		if renew {
			token, err := m.Issue(sessionID)
			if err != nil {
				logger.Error("Failed to issue cart session token", slog.String("error", err.Error()))
			} else {
				w.Header().Set(SessionHeader, token)
			}
		}

		requestLogger := logger.With(slog.String("sessionId", sessionID))

		ctx := context.WithValue(r.Context(), SessionContextKey, sessionID)
		ctx = WithLogger(ctx, requestLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(SessionContextKey).(string)
	return sessionID, ok && sessionID != ""
}
