// Package me отдаёт состояние сессии текущего запроса.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/http/response"
)

// Handler обрабатывает HTTP-запросы состояния сессии.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущая сессия
// @Description Возвращает восстановленное состояние сессии. Для анонимного клиента user равен null,
// @Description пока хранилище сессий недоступно, loading равен true.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.SessionState}
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	state := middlewarectx.StateFromContext(r.Context())
	h.log.Debug("session state requested",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Bool("authenticated", state.User != nil),
		slog.Bool("loading", state.Loading),
	)
	render.JSON(w, r, response.StatusOKWithData(state))
}
