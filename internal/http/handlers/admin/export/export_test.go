package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Export(ctx context.Context, table string, w io.Writer) error {
	args := m.Called(ctx, table, w)
	if args.Error(0) == nil {
		_, _ = io.WriteString(w, args.String(1))
	}
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func newRequest(table string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/export/"+table, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("table", table)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestExportHandler_Success(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Export", mock.Anything, "contacts", mock.Anything).
		Return(nil, "id,name\ncontact_1,Lan\n").Once()

	h := New(newNoopLogger(), svc)
	h.now = func() time.Time { return time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC) }
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, newRequest("contacts"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="contacts_2026-03-05.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "id,name\ncontact_1,Lan\n", rec.Body.String())
}

func TestExportHandler_UnknownTable(t *testing.T) {
	svc := new(ServiceMock)
	svc.On("Export", mock.Anything, "secrets", mock.Anything).
		Return(fmt.Errorf("services.admin.Export: %w", models.ErrNotFound), "").Once()

	rec := httptest.NewRecorder()
	New(newNoopLogger(), svc).ServeHTTP(rec, newRequest("secrets"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"status":"Error","error":"record not found"}`, rec.Body.String())
}
