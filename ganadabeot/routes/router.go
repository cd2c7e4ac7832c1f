// ganadabeot/routes/router.go
package routes

import (
	"net/http"
	"time"

	"ganadabeot/ganadabeot/config"
	"ganadabeot/ganadabeot/controllers"
	"ganadabeot/ganadabeot/middlewares"
	"ganadabeot/ganadabeot/services/metrics"
	"ganadabeot/ganadabeot/sources/session"
	"ganadabeot/ganadabeot/views"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Config         config.Config
	Sessions       *session.Store
	SigningKey     []byte
	Auth           *controllers.AuthController
	Writing        *controllers.WritingController
	Guideline      *controllers.GuidelineController
	Health         *controllers.HealthController
	Views          *views.Renderer
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter builds the application router. Page and form routes get a
// request timeout longer than the assistant's run timeout; /ws is left
// out since it reports progress while the run is polled.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	if d.Metrics != nil {
		r.Use(middlewares.Metrics(d.Metrics))
	}
	r.Use(middleware.Recoverer)

	r.Mount("/health", HealthRoutes(d.Health))
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.SessionMiddleware(d.Sessions, d.Auth, d.SigningKey, d.Config.SessionTTL))

		gr.Group(func(pages chi.Router) {
			pages.Use(middleware.Timeout(requestTimeout(d.Config.RunTimeout)))
			pages.Get("/login", LoginPage(d.Views))
			pages.Post("/login", Login(d.Auth, d.Sessions, d.Config.SessionTTL, d.Views))
			pages.Post("/logout", Logout(d.Auth))
			pages.Group(func(app chi.Router) {
				app.Use(middlewares.RequireAuth("/login"))
				app.Get("/", PageHandler(d.Views, d.Guideline))
				app.Post("/review", WritingHandler(d.Writing, config.ModeReview))
				app.Post("/generate", WritingHandler(d.Writing, config.ModeGenerate))
				app.Mount("/guideline", GuidelineRoutes(d.Guideline))
			})
		})

		gr.With(middlewares.RequireAuth("")).Get("/ws", WritingSocket(d.Writing))
	})
	return r
}

func requestTimeout(runTimeout time.Duration) time.Duration {
	return runTimeout + 30*time.Second
}

// ConfigErrorHandler answers every request with 503 and the list of
// configuration problems.
func ConfigErrorHandler(v *views.Renderer, problems []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := v.Render(w, http.StatusServiceUnavailable, views.PageConfigError, views.PageData{ConfigProblems: problems}); err != nil {
			http.Error(w, "service misconfigured", http.StatusServiceUnavailable)
		}
	})
}
