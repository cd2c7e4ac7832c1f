// ganadabeot/routes/auth.go
package routes

import (
	"net/http"
	"time"

	"ganadabeot/ganadabeot/controllers"
	"ganadabeot/ganadabeot/middlewares"
	"ganadabeot/ganadabeot/sources/session"
	"ganadabeot/ganadabeot/utils/logging"
	"ganadabeot/ganadabeot/views"

	"go.uber.org/zap"
)

const MsgAccessDenied = "비밀번호가 올바르지 않습니다."

// LoginPage shows the password gate, or sends authenticated visitors home.
func LoginPage(v *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middlewares.SessionFromContext(r.Context())
		if ok && sess.Authenticated() {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		render(w, v, http.StatusOK, views.PageLogin, views.PageData{})
	}
}

// Login checks the password and, on success, moves the visitor to a new
// session id with a fresh cookie.
func Login(ctrl *controllers.AuthController, store *session.Store, ttl time.Duration, v *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middlewares.SessionFromContext(r.Context())
		if !ok {
			http.Error(w, "no session", http.StatusInternalServerError)
			return
		}
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		fresh, ok := ctrl.LoginRenew(store, sess, r.PostForm.Get("password"))
		if !ok {
			render(w, v, http.StatusUnauthorized, views.PageLogin, views.PageData{Error: MsgAccessDenied})
			return
		}
		if err := middlewares.SetSessionCookie(w, r, ctrl, fresh.ID, ttl); err != nil {
			logging.ErrorLogger.Error("session cookie error", zap.Error(err))
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func Logout(ctrl *controllers.AuthController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, ok := middlewares.SessionFromContext(r.Context()); ok {
			ctrl.Logout(sess)
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func render(w http.ResponseWriter, v *views.Renderer, status int, page string, data views.PageData) {
	if err := v.Render(w, status, page, data); err != nil {
		logging.ErrorLogger.Error("render failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}
