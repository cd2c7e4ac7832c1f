package routes

import (
	"net/http"

	"ganadabeot/ganadabeot/config"
	"ganadabeot/ganadabeot/controllers"
	"ganadabeot/ganadabeot/middlewares"
	"ganadabeot/ganadabeot/views"
)

// PageHandler renders the main page for the tab in ?tab=.
func PageHandler(v *views.Renderer, guideline *controllers.GuidelineController) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middlewares.SessionFromContext(r.Context())
		data := views.PageData{
			Tab:               views.Tab(r.URL.Query().Get("tab")),
			Flash:             sess.TakeFlash(),
			ReviewDraft:       sess.Draft(config.ModeReview),
			GenerateTopic:     sess.Draft(config.ModeGenerate),
			GuidelineFilename: guideline.Filename(),
		}
		data.ReviewResult, _ = sess.Result(config.ModeReview)
		data.GenerateResult, _ = sess.Result(config.ModeGenerate)
		render(w, v, http.StatusOK, views.PageApp, data)
	}
}
