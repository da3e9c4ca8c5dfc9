// Package selectplan реализует HTTP-обработчик выбора тарифа на странице цен.
package selectplan

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/services/payment"
)

// Service описывает выбор тарифа.
type Service interface {
	SelectPlan(u *models.User, planID models.Plan) (payment.Selection, error)
}

// Handler обрабатывает HTTP-запросы выбора тарифа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Выбор тарифа
// @Description Возвращает следующий шаг: login для анонимного клиента, none для бесплатного тарифа,
// @Description choose_network со списком сетей для платного.
// @Tags Plans
// @Produce  json
// @Security BearerAuth
// @Param id path string true "Идентификатор тарифа"
// @Success 200 {object} response.Response{data=payment.Selection}
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Router /plans/{id}/select [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.selectplan"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	planID := models.Plan(chi.URLParam(r, "id"))
	sel, err := h.service.SelectPlan(middlewarectx.UserFromContext(r.Context()), planID)
	if err != nil {
		log.Info("plan not selected", slog.String("plan", string(planID)), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("plan selected", slog.String("plan", string(planID)), slog.String("action", sel.Action))
	render.JSON(w, r, response.StatusOKWithData(sel))
}
