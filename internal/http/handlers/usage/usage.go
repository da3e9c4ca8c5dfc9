// Package usage отдаёт снимок квоты проверок текущего пользователя.
package usage

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/quota"
)

// Handler обрабатывает HTTP-запросы квоты.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Квота проверок
// @Description Лимит, остаток и процент использования по текущему тарифу. Для безлимитного тарифа limit и remaining равны null.
// @Tags Risk
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=quota.Usage}
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /quota [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage"

	u := middlewarectx.UserFromContext(r.Context())
	usage := quota.Compute(u)
	h.log.Debug("quota requested",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Int("scans_used", usage.ScansUsed))
	render.JSON(w, r, response.StatusOKWithData(usage))
}
