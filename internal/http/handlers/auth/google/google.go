// Package google реализует HTTP-обработчик демо-входа через Google.
package google

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

// Service описывает бизнес-логику входа через Google.
type Service interface {
	LoginWithGoogle(ctx context.Context) (*models.Session, error)
}

// Handler обрабатывает HTTP-запросы входа через Google.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Вход через Google
// @Description Выдаёт сессию подтверждённого демо-пользователя без обращения к Google.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response{data=models.Session}
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/google [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.google"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	session, err := h.service.LoginWithGoogle(r.Context())
	if err != nil {
		log.Error("google login failed", sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	log.Info("google login success", slog.String("user_id", session.User.ID))
	render.JSON(w, r, response.StatusOKWithData(session))
}
