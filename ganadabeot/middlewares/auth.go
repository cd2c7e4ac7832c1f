// ganadabeot/middlewares/auth.go
package middlewares

import (
	"context"
	"net/http"
	"time"

	"ganadabeot/ganadabeot/sources/session"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const sessionKey contextKey = "session"

const SessionCookie = "ganadabeot_session"

// TokenIssuer signs a session id for the cookie.
type TokenIssuer interface {
	IssueToken(sessionID string) (string, error)
}

// SessionMiddleware resolves the visitor's session from the signed cookie,
// creating a fresh unauthenticated one when the cookie is missing, invalid
// or points at an expired session. The cookie is re-issued once less than
// half of ttl remains, so it slides along with the session's idle timer.
func SessionMiddleware(store *session.Store, issuer TokenIssuer, signingKey []byte, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, expires := lookupSession(r, store, signingKey)
			if sess == nil {
				sess = store.Create()
			}
			if time.Until(expires) < ttl/2 {
				if err := SetSessionCookie(w, r, issuer, sess.ID, ttl); err != nil {
					http.Error(w, "session error", http.StatusInternalServerError)
					return
				}
			}
			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetSessionCookie signs sessionID and sets it as the session cookie.
func SetSessionCookie(w http.ResponseWriter, r *http.Request, issuer TokenIssuer, sessionID string, ttl time.Duration) error {
	token, err := issuer.IssueToken(sessionID)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// lookupSession returns the cookie's live session and the token expiry.
func lookupSession(r *http.Request, store *session.Store, signingKey []byte) (*session.Session, time.Time) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, time.Time{}
	}
	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, time.Time{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, time.Time{}
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return nil, time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, time.Time{}
	}
	sess, err := store.Get(sid)
	if err != nil {
		return nil, time.Time{}
	}
	return sess, exp.Time
}

// SessionFromContext returns the session placed by SessionMiddleware.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok && sess != nil
}

// RequireAuth lets authenticated sessions through. Others are redirected
// to loginPath, or get 401 when loginPath is empty.
func RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok || !sess.Authenticated() {
				if loginPath == "" {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
