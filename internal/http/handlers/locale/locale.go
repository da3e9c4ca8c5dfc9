// Package locale отдаёт таблицы локализации интерфейса.
package locale

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/i18n"
)

// Messages тело ответа: язык, который реально отдан, и его таблица.
type Messages struct {
	Lang     i18n.Lang         `json:"lang"`
	Messages map[string]string `json:"messages"`
}

// Handler обрабатывает HTTP-запросы локализации.
type Handler struct {
	log     *slog.Logger
	catalog *i18n.Catalog
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, catalog *i18n.Catalog) *Handler {
	return &Handler{log: log, catalog: catalog}
}

// ServeHTTP godoc
// @Summary Таблица локализации
// @Description Возвращает строки интерфейса для en или vi. Неизвестный язык заменяется на en.
// @Tags I18n
// @Produce  json
// @Param lang path string true "Код языка" Enums(en, vi)
// @Success 200 {object} response.Response{data=locale.Messages}
// @Router /i18n/{lang} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.i18n"

	requested := chi.URLParam(r, "lang")
	lang := i18n.Parse(requested)
	if string(lang) != requested {
		h.log.Debug("language fallback",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("requested", requested),
			slog.String("lang", string(lang)))
	}
	render.JSON(w, r, response.StatusOKWithData(Messages{
		Lang:     lang,
		Messages: h.catalog.Table(lang),
	}))
}
