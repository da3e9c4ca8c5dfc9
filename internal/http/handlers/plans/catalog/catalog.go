// Package catalog отдаёт каталог тарифов и платёжных сетей.
package catalog

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gridnode/internal/http/response"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

// Service источник каталога тарифов.
type Service interface {
	Plans() []models.PlanInfo
	Networks() []models.NetworkOption
}

// Catalog тело ответа страницы цен.
type Catalog struct {
	Plans    []models.PlanInfo      `json:"plans"`
	Networks []models.NetworkOption `json:"networks"`
}

// Handler обрабатывает HTTP-запросы каталога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог тарифов
// @Description Возвращает тарифы в порядке возрастания цены и доступные платёжные сети.
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response{data=catalog.Catalog}
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plans.catalog"

	h.log.Debug("catalog requested",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.JSON(w, r, response.StatusOKWithData(Catalog{
		Plans:    h.service.Plans(),
		Networks: h.service.Networks(),
	}))
}
