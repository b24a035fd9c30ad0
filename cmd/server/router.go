package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sgladkov/admoderation/internal/api"
	apiMiddleware "github.com/sgladkov/admoderation/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	h := api.NewModerationHandler(app.moderationService, app.logger)

	r.Post("/predict", h.Predict)
	r.Post("/simple_predict", h.SimplePredict)
	r.Post("/async_predict", h.AsyncPredict)
	r.Get("/moderation_result/{task_id}", h.Result)
	r.Post("/close", h.Close)
	r.Get("/health", h.Health)

	return r
}
