// Package export отдаёт выгрузку таблицы панели администратора в CSV.
package export

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/lib/csvexport"
	"github.com/magabrotheeeer/gridnode/internal/lib/sl"
)

// Service описывает выгрузку таблиц.
type Service interface {
	Export(ctx context.Context, table string, w io.Writer) error
}

// Handler обрабатывает HTTP-запросы выгрузки.
type Handler struct {
	log     *slog.Logger
	service Service
	now     func() time.Time
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, now: time.Now}
}

// ServeHTTP godoc
// @Summary Выгрузка таблицы
// @Description Отдаёт таблицу users, deposits, scan_logs или contacts файлом CSV.
// @Tags Admin
// @Produce  text/csv
// @Security BearerAuth
// @Param table path string true "Имя таблицы" Enums(users, deposits, scan_logs, contacts)
// @Success 200 {file} file
// @Failure 403 {object} response.ErrorResponse "Нет прав администратора"
// @Failure 404 {object} response.ErrorResponse "Неизвестная таблица"
// @Router /admin/export/{table} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.export"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	table := chi.URLParam(r, "table")
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), table, &buf); err != nil {
		log.Error("export failed", slog.String("table", table), sl.Err(err))
		response.WriteError(w, r, err)
		return
	}

	name := csvexport.Filename(table, h.now().UTC().Format(time.DateOnly))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write export", sl.Err(err))
	}
}
