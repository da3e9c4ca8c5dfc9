package me

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/gridnode/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gridnode/internal/models"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestMeHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name        string
		state       models.SessionState
		wantUser    bool
		wantLoading bool
	}{
		{name: "anonymous", state: models.SessionState{}},
		{name: "loading", state: models.SessionState{Loading: true}, wantLoading: true},
		{name: "signed in", state: models.SessionState{User: &models.User{ID: "u1"}}, wantUser: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			req = req.WithContext(middlewarectx.WithState(req.Context(), tt.state, ""))
			rec := httptest.NewRecorder()

			New(newNoopLogger()).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			var got struct {
				Status string              `json:"status"`
				Data   models.SessionState `json:"data"`
			}
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, "OK", got.Status)
			assert.Equal(t, tt.wantLoading, got.Data.Loading)
			assert.Equal(t, tt.wantUser, got.Data.User != nil)
		})
	}
}
