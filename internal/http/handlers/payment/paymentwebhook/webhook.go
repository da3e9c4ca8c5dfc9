// Package paymentwebhook принимает уведомления платёжного провайдера о статусе счёта.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
	"github.com/magabrotheeeer/gridnode/internal/models"
	"github.com/magabrotheeeer/gridnode/internal/paymentprovider"
)

// Service подтверждает оплату.
type Service interface {
	ConfirmPayment(ctx context.Context, payload models.PaymentWebhook) error
}

// Handler обрабатывает уведомления провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	validate      *validator.Validate
	webhookSecret string // секрет для проверки подписи
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		validate:      validator.New(),
		webhookSecret: secret,
	}
}

// maxBodyBytes ограничивает размер уведомления.
const maxBodyBytes = 64 << 10

// ServeHTTP godoc
// @Summary Уведомление об оплате
// @Description Принимает подписанное уведомление провайдера. Подпись передаётся в заголовке X-Api-Signature
// @Description как base64(HMAC-SHA256(body)). Статус finished активирует тариф на месяц.
// @Tags Payments
// @Accept  json
// @Param X-Api-Signature header string true "Подпись тела запроса"
// @Param request body models.PaymentWebhook true "Статус платежа"
// @Success 200
// @Failure 400 "Некорректное тело"
// @Failure 401 "Неверная подпись"
// @Failure 404 "Счёт не найден"
// @Failure 413 "Слишком большое тело"
// @Failure 500 "Внутренняя ошибка сервера"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	signature := r.Header.Get(paymentprovider.SignatureHeader)
	if signature == "" || !paymentprovider.VerifySignature(h.webhookSecret, body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	var payload models.PaymentWebhook
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		log.Error("webhook payload is incomplete", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := h.service.ConfirmPayment(r.Context(), payload); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			log.Warn("webhook for unknown payment", slog.String("payment_id", payload.PaymentID), sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			return
		}
		log.Error("failed to process webhook", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	log.Info("webhook processed successfully",
		slog.String("status", payload.Status),
		slog.String("payment_id", payload.PaymentID))
	w.WriteHeader(http.StatusOK)
}
