package resolve

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gridnode/internal/access"
	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestResolveHandler_ServeHTTP(t *testing.T) {
	verified := &models.User{ID: "u1", IsVerified: true, Role: models.RoleUser}
	unverified := &models.User{ID: "u2", Role: models.RoleUser}

	tests := []struct {
		name  string
		path  string
		state models.SessionState
		want  access.Decision
	}{
		{name: "public page", path: "/pricing", want: access.Decision{Action: access.ActionRender, View: "pricing"}},
		{name: "anonymous to dashboard", path: "/dashboard", want: access.Decision{Action: access.ActionRedirect, Redirect: access.LoginPath}},
		{name: "loading session", path: "/dashboard", state: models.SessionState{Loading: true}, want: access.Decision{Action: access.ActionPending, View: "dashboard"}},
		{name: "unverified risk check", path: "/risk-check", state: models.SessionState{User: unverified}, want: access.Decision{Action: access.ActionVerificationRequired, View: "verify-email"}},
		{name: "verified risk check", path: "/risk-check", state: models.SessionState{User: verified}, want: access.Decision{Action: access.ActionRender, View: "risk-check"}},
		{name: "user on admin", path: "/admin", state: models.SessionState{User: verified}, want: access.Decision{Action: access.ActionForbidden, View: "admin"}},
		{name: "unknown path", path: "/nowhere", want: access.Decision{Action: access.ActionNotFound, View: "not-found"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/routes/resolve?path="+url.QueryEscape(tt.path), nil)
			req = req.WithContext(middlewarectx.WithState(req.Context(), tt.state, ""))
			rec := httptest.NewRecorder()

			New(newNoopLogger()).ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var got struct {
				Data access.Decision `json:"data"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.want, got.Data)
		})
	}
}

func TestResolveHandler_MissingPath(t *testing.T) {
	rec := httptest.NewRecorder()
	New(newNoopLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/routes/resolve", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
