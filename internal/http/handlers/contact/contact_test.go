package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/gridnode/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Submit(ctx context.Context, req models.ContactRequest) (*models.Contact, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*models.Contact)
	return c, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestContactHandler_ServeHTTP(t *testing.T) {
	valid := models.ContactRequest{Name: "Lan", Email: "lan@corp.vn", Company: "Corp", Message: "Need B2B plan"}

	tests := []struct {
		name           string
		req            any
		mockCall       bool
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{name: "accepted", req: valid, mockCall: true, wantStatusCode: http.StatusCreated},
		{
			name:           "company is optional",
			req:            models.ContactRequest{Name: "Lan", Email: "lan@corp.vn", Message: "Hi"},
			mockCall:       true,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "missing message",
			req:            models.ContactRequest{Name: "Lan", Email: "lan@corp.vn"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Message is a required field",
		},
		{
			name:           "bad email",
			req:            models.ContactRequest{Name: "Lan", Email: "lan", Message: "Hi"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Email must be a valid email",
		},
		{
			name:           "message too long",
			req:            models.ContactRequest{Name: "Lan", Email: "lan@corp.vn", Message: strings.Repeat("a", 5001)},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Message is too long",
		},
		{
			name:           "line break in name",
			req:            models.ContactRequest{Name: "Eve\r\nBcc: x@y.z", Email: "eve@corp.vn", Message: "Hi"},
			mockCall:       true,
			mockErr:        fmt.Errorf("services.contact.Submit: %w", models.ErrMultilineField),
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "name and company must be a single line",
		},
		{name: "store failure", req: valid, mockCall: true, mockErr: errors.New("db down"), wantStatusCode: http.StatusInternalServerError, wantError: "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.mockCall {
				req := tt.req.(models.ContactRequest)
				var resp *models.Contact
				if tt.mockErr == nil {
					resp = &models.Contact{ID: "contact_1", Name: req.Name, Email: req.Email, Message: req.Message}
				}
				svc.On("Submit", mock.Anything, req).Return(resp, tt.mockErr).Once()
			}

			body, err := json.Marshal(tt.req)
			assert.NoError(t, err)
			rec := httptest.NewRecorder()

			New(newNoopLogger(), svc).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/contact", bytes.NewReader(body)))

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.Equal(t, "contact_1", got["data"].(map[string]any)["id"])
			}
			svc.AssertExpectations(t)
		})
	}
}
