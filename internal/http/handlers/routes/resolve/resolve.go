// Package resolve отдаёт решение о доступе к маршруту клиентского приложения.
package resolve

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/access"
	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/http/response"
)

// Handler обрабатывает HTTP-запросы проверки маршрута.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Доступ к маршруту
// @Description Применяет правила доступа маршрута к текущей сессии: render, pending, redirect,
// @Description verification_required, forbidden или not_found.
// @Tags Routes
// @Produce  json
// @Security BearerAuth
// @Param path query string true "Путь клиентского приложения"
// @Success 200 {object} response.Response{data=access.Decision}
// @Failure 400 {object} response.ErrorResponse "Не передан путь"
// @Router /routes/resolve [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.routes.resolve"

	path := r.URL.Query().Get("path")
	if path == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("query parameter path is required"))
		return
	}

	decision := access.Resolve(path, middlewarectx.StateFromContext(r.Context()))
	h.log.Debug("route resolved",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", path),
		slog.String("action", string(decision.Action)))
	render.JSON(w, r, response.StatusOKWithData(decision))
}
