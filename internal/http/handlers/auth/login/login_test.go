package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	services "github.com/magabrotheeeer/account-gatekeeper/internal/services/auth"
)

// Мок сервиса с методом Login
type AuthServiceMock struct {
	mock.Mock
}

func (m *AuthServiceMock) Login(ctx context.Context, username, password, ip string) (string, error) {
	args := m.Called(ctx, username, password, ip)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	authMock := new(AuthServiceMock)
	logger := newNoopLogger()

	handler := New(logger, authMock)

	tests := []struct {
		name           string
		requestBody    interface{}
		mockToken      string
		mockErr        error
		mockCalled     bool
		wantStatusCode int
		wantData       map[string]any
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid login",
			requestBody:    Request{Username: "user1", Password: "Str0ng!Pass"},
			mockToken:      "sessiontoken123",
			mockCalled:     true,
			wantStatusCode: http.StatusOK,
			wantData: map[string]any{
				"token":    "sessiontoken123",
				"username": "user1",
			},
			wantStatus: "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Username: "user1"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "wrong password",
			requestBody:    Request{Username: "user1", Password: "wrongpass"},
			mockErr:        services.ErrInvalidCredentials,
			mockCalled:     true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid username or password",
			wantStatus:     "Error",
		},
		{
			// Неизвестное имя пользователя даёт тот же ответ, что и
			// неверный пароль.
			name:           "unknown username",
			requestBody:    Request{Username: "ghost", Password: "whatever1!A"},
			mockErr:        services.ErrInvalidCredentials,
			mockCalled:     true,
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "invalid username or password",
			wantStatus:     "Error",
		},
		{
			name:           "account locked",
			requestBody:    Request{Username: "user1", Password: "Str0ng!Pass"},
			mockErr:        services.ErrAccountLocked,
			mockCalled:     true,
			wantStatusCode: http.StatusLocked,
			wantError:      "account is temporarily locked due to multiple failed login attempts",
			wantStatus:     "Error",
		},
		{
			name:           "internal error",
			requestBody:    Request{Username: "user1", Password: "Str0ng!Pass"},
			mockErr:        errors.New("database error"),
			mockCalled:     true,
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "login failed",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authMock.ExpectedCalls = nil
			authMock.Calls = nil

			if tt.mockCalled {
				authMock.On("Login", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(tt.mockToken, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.wantData != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				for k, v := range tt.wantData {
					assert.Equal(t, v, data[k])
				}
			}

			authMock.AssertExpectations(t)
		})
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "192.0.2.10:54321"
	assert.Equal(t, "192.0.2.10", clientIP(req))

	req.RemoteAddr = "192.0.2.11"
	assert.Equal(t, "192.0.2.11", clientIP(req))
}
