// Package check реализует HTTP-обработчик проверки адреса кошелька.
package check

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Service описывает проверку адреса.
type Service interface {
	Check(ctx context.Context, u *models.User, address string) (*models.RiskResult, error)
}

// Handler обрабатывает HTTP-запросы проверки адреса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Проверка кошелька
// @Description Оценивает риск адреса и списывает одну проверку из квоты тарифа.
// @Tags Risk
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.RiskCheckRequest true "Адрес кошелька"
// @Success 200 {object} response.Response{data=models.RiskResult}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 402 {object} response.ErrorResponse "Квота исчерпана"
// @Failure 403 {object} response.ErrorResponse "Почта не подтверждена"
// @Failure 422 {object} response.ErrorResponse "Пустой адрес"
// @Failure 429 {object} response.ErrorResponse "Слишком частые запросы"
// @Router /risk/check [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.risk.check"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.RiskCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	result, err := h.service.Check(r.Context(), middlewarectx.UserFromContext(r.Context()), req.Address)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrQuotaExceeded), errors.Is(err, models.ErrEmptyAddress):
			log.Info("check rejected", sl.Err(err))
		case errors.Is(err, context.Canceled):
			log.Info("check cancelled by client")
		default:
			log.Error("check failed", sl.Err(err))
		}
		response.WriteError(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(result))
}
