// Package dashboard реализует HTTP-обработчик личного кабинета.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/services/dashboard"
)

// Service описывает сборку личного кабинета.
type Service interface {
	Get(ctx context.Context, u *models.User) (*dashboard.View, error)
}

// Handler обрабатывает HTTP-запросы личного кабинета.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Личный кабинет
// @Description Тариф, срок действия, квота и последние проверки пользователя.
// @Tags Dashboard
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dashboard.View}
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.dashboard"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	view, err := h.service.Get(r.Context(), middlewarectx.UserFromContext(r.Context()))
	if err != nil {
		log.Error("failed to build dashboard", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(view))
}
