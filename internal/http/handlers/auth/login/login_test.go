package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/speechtospeechai/accounts-service/internal/http/middlewarectx"
	"github.com/speechtospeechai/accounts-service/internal/models"
)

type AccountsMock struct {
	mock.Mock
}

func (m *AccountsMock) Login(ctx context.Context, email, rawPassword string) (*models.Account, string, []string, error) {
	args := m.Called(ctx, email, rawPassword)
	var acc *models.Account
	if args.Get(0) != nil {
		acc = args.Get(0).(*models.Account)
	}
	var keys []string
	if args.Get(2) != nil {
		keys = args.Get(2).([]string)
	}
	return acc, args.String(1), keys, args.Error(3)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func doRequest(t *testing.T, handler *Handler, body Request) *httptest.ResponseRecorder {
	t.Helper()
	bodyBytes, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginHandler_Success(t *testing.T) {
	accountsMock := new(AccountsMock)
	accountsMock.On("Login", mock.Anything, "user@example.com", "password123").
		Return(&models.Account{UID: "uid-1", Email: "user@example.com", IsConfirm: true},
			"jwt-token", nil, nil).Once()

	handler := New(newNoopLogger(), accountsMock)
	rec := doRequest(t, handler, Request{Email: "user@example.com", Password: "password123"})

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	data := got["data"].(map[string]any)
	assert.Equal(t, "jwt-token", data["token"])
	assert.Equal(t, true, data["is_confirm"])

	// Сессия уезжает и в cookie.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middlewarectx.SessionCookie, cookies[0].Name)
	assert.Equal(t, "jwt-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	accountsMock.AssertExpectations(t)
}

func TestLoginHandler_Validation(t *testing.T) {
	tests := []struct {
		name      string
		body      Request
		wantError string
	}{
		{
			name:      "missing email",
			body:      Request{Password: "password123"},
			wantError: "field Email is a required field",
		},
		{
			name:      "malformed email",
			body:      Request{Email: "not-an-email", Password: "password123"},
			wantError: "field Email must be a valid email",
		},
		{
			name:      "missing password",
			body:      Request{Email: "user@example.com"},
			wantError: "field Password is a required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accountsMock := new(AccountsMock)
			handler := New(newNoopLogger(), accountsMock)
			rec := doRequest(t, handler, tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, "Error", got["status"])
			assert.Contains(t, got["error"], tt.wantError)

			// До сервиса такой запрос не доходит.
			accountsMock.AssertNotCalled(t, "Login")
		})
	}
}

func TestLoginHandler_WrongCredentials(t *testing.T) {
	accountsMock := new(AccountsMock)
	accountsMock.On("Login", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, "", []string{"wrong_credentials"}, nil).Once()

	handler := New(newNoopLogger(), accountsMock)
	rec := doRequest(t, handler, Request{Email: "ghost@example.com", Password: "nope"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "Error", got["status"])
	assert.Equal(t, []any{"wrong_credentials"}, got["errors"])
	assert.Empty(t, rec.Result().Cookies())
}
