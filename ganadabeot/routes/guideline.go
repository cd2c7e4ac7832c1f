package routes

import (
	"ganadabeot/ganadabeot/controllers"

	"github.com/go-chi/chi/v5"
)

func GuidelineRoutes(ctrl *controllers.GuidelineController) chi.Router {
	r := chi.NewRouter()
	r.Get("/download", ctrl.Download)
	return r
}
