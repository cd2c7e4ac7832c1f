// ganadabeot/controllers/auth.go
package controllers

import (
	"crypto/rand"
	"crypto/subtle"
	"time"

	"ganadabeot/ganadabeot/services/metrics"
	"ganadabeot/ganadabeot/sources/session"
	"ganadabeot/ganadabeot/utils/logging"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Authenticate reports whether submitted is exactly the configured secret.
// No trimming or case folding is applied.
func Authenticate(submitted, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(submitted), []byte(secret)) == 1
}

type AuthController struct {
	password   string
	signingKey []byte
	tokenTTL   time.Duration
	metrics    *metrics.Metrics
}

func NewAuthController(password string, signingKey []byte, tokenTTL time.Duration, m *metrics.Metrics) *AuthController {
	if m == nil {
		m = metrics.NewNopMetrics()
	}
	return &AuthController{
		password:   password,
		signingKey: signingKey,
		tokenTTL:   tokenTTL,
		metrics:    m,
	}
}

// Login opens the gate for sess when password matches. Failed attempts
// leave the session untouched and may be retried immediately.
func (c *AuthController) Login(sess *session.Session, password string) bool {
	if !c.verify(sess, password) {
		return false
	}
	sess.SetAuthenticated(true)
	return true
}

// LoginRenew is Login that also replaces sess with a new authenticated
// session under a fresh id, so an id handed out before login is useless
// afterwards. The caller must issue a cookie for the returned session.
// A session that is already authenticated, or still has a round trip
// outstanding, is authenticated in place so its busy flag keeps holding.
func (c *AuthController) LoginRenew(store *session.Store, sess *session.Session, password string) (*session.Session, bool) {
	if !c.verify(sess, password) {
		return nil, false
	}
	if sess.Authenticated() || sess.Busy() {
		sess.SetAuthenticated(true)
		return sess, true
	}
	fresh := store.Create()
	fresh.SetAuthenticated(true)
	store.Delete(sess.ID)
	logging.AppLogger.Info("session renewed", zap.String("old_session_id", sess.ID), zap.String("session_id", fresh.ID))
	return fresh, true
}

func (c *AuthController) verify(sess *session.Session, password string) bool {
	if !Authenticate(password, c.password) {
		c.metrics.LoginAttemptsTotal.WithLabelValues("denied").Inc()
		logging.AppLogger.Info("login denied", zap.String("session_id", sess.ID))
		return false
	}
	c.metrics.LoginAttemptsTotal.WithLabelValues("ok").Inc()
	logging.AppLogger.Info("login ok", zap.String("session_id", sess.ID))
	return true
}

func (c *AuthController) Logout(sess *session.Session) {
	sess.SetAuthenticated(false)
	logging.AppLogger.Info("logout", zap.String("session_id", sess.ID))
}

// IssueToken signs the session id for the session cookie.
func (c *AuthController) IssueToken(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(c.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.signingKey)
}

// SigningKey returns secret as bytes, or 32 random bytes when secret is
// empty. A random key invalidates cookies on restart.
func SigningKey(secret string) ([]byte, error) {
	if secret != "" {
		return []byte(secret), nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}
