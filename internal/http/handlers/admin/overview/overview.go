// Package overview реализует HTTP-обработчик панели администратора.
package overview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Service описывает сборку панели администратора.
type Service interface {
	Overview(ctx context.Context) (*models.AdminOverview, error)
}

// Handler обрабатывает HTTP-запросы панели администратора.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Панель администратора
// @Description Сводка, пользователи, счета, журнал проверок и заявки.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.AdminOverview}
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/overview [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.overview"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	ov, err := h.service.Overview(r.Context())
	if err != nil {
		log.Error("failed to build overview", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(ov))
}
