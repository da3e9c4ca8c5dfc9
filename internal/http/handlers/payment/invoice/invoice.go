// Package invoice реализует HTTP-обработчик выставления счёта на тариф.
package invoice

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Service описывает выставление счёта.
type Service interface {
	CreateInvoice(ctx context.Context, u *models.User, planID models.Plan, network string) (*models.Invoice, error)
}

// Handler обрабатывает HTTP-запросы выставления счёта.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Счёт на оплату тарифа
// @Description Выставляет счёт на выбранный тариф в сети TRC20 или BEP20.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.InvoiceRequest true "Тариф и сеть"
// @Success 201 {object} response.Response{data=models.Invoice}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 404 {object} response.ErrorResponse "Тариф не найден"
// @Failure 422 {object} response.ErrorResponse "Бесплатный тариф или неизвестная сеть"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments/invoice [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.invoice"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	inv, err := h.service.CreateInvoice(r.Context(), middlewarectx.UserFromContext(r.Context()),
		models.Plan(req.PlanID), req.Network)
	if err != nil {
		log.Error("failed to create invoice", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("invoice issued", slog.String("payment_id", inv.PaymentID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(inv))
}
