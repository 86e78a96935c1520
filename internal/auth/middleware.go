package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const UserIDKey contextKey = "userID"

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrBadScheme    = errors.New("invalid authorization format")
)

// TokenFromRequest reads a bearer token from the Authorization header. Websocket
// handshakes cannot set headers, so a "token" query parameter is accepted when
// allowQuery is set.
func TokenFromRequest(r *http.Request, allowQuery bool) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		if t := r.URL.Query().Get("token"); allowQuery && t != "" {
			return t, nil
		}
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrBadScheme
	}
	return token, nil
}

// Authenticate resolves the user of a request.
func (s *Service) Authenticate(r *http.Request, allowQuery bool) (string, error) {
	token, err := TokenFromRequest(r, allowQuery)
	if err != nil {
		return "", err
	}
	return s.ValidateToken(token)
}

func (s *Service) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.Authenticate(r, false)
		if err != nil {
			msg := err.Error()
			if errors.Is(err, ErrInvalidToken) {
				msg = "invalid token"
			}
			writeError(w, http.StatusUnauthorized, msg)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
