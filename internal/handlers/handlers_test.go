package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"whisperbox/internal/middleware"
	"whisperbox/internal/models"
	"whisperbox/internal/services"
)

type mockMessageService struct {
	mock.Mock
}

func (m *mockMessageService) SetAccepting(ctx context.Context, userID int, accept bool) error {
	return m.Called(ctx, userID, accept).Error(0)
}

func (m *mockMessageService) IsAccepting(ctx context.Context, userID int) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockMessageService) Accept(ctx context.Context, username, content string) (*models.Message, error) {
	args := m.Called(ctx, username, content)
	msg, _ := args.Get(0).(*models.Message)
	return msg, args.Error(1)
}

func (m *mockMessageService) List(ctx context.Context, userID, limit, offset int) ([]*models.Message, error) {
	args := m.Called(ctx, userID, limit, offset)
	msgs, _ := args.Get(0).([]*models.Message)
	return msgs, args.Error(1)
}

func (m *mockMessageService) Delete(ctx context.Context, userID int, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

type mockVerificationService struct {
	mock.Mock
}

func (m *mockVerificationService) RequestCode(ctx context.Context, identifier string) error {
	return m.Called(ctx, identifier).Error(0)
}

func (m *mockVerificationService) Confirm(ctx context.Context, identifier, code string) error {
	return m.Called(ctx, identifier, code).Error(0)
}

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

// asUser stands in for AuthMiddleware.
func asUser(id int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, id)
		c.Next()
	}
}

func serve(r http.Handler, method, path, body string) (*httptest.ResponseRecorder, Response) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func newMessageRouter(svc services.MessageService, logger *zap.Logger) *gin.Engine {
	h := NewMessageHandler(svc, 10, logger)
	r := gin.New()
	r.POST("/u/:username/messages", h.Send)
	authed := r.Group("/", asUser(7))
	authed.GET("/messages", h.List)
	authed.DELETE("/messages/:id", h.Delete)
	authed.GET("/messages/accepting", h.GetAccepting)
	authed.PUT("/messages/accepting", h.SetAccepting)
	return r
}

func TestMessageHandler_Send(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		setup  func(*mockMessageService)
		status int
		reason services.Reason
	}{
		{
			name: "accepted",
			body: `{"content":"hello"}`,
			setup: func(m *mockMessageService) {
				m.On("Accept", mock.Anything, "owl", "hello").Return(&models.Message{ID: uuid.New()}, nil)
			},
			status: http.StatusCreated,
		},
		{name: "missing content", body: `{}`, status: http.StatusBadRequest},
		{name: "blank content", body: `{"content":"   "}`, status: http.StatusBadRequest},
		{name: "too long", body: `{"content":"ééééééééééé"}`, status: http.StatusBadRequest},
		{name: "malformed json", body: `{"content":`, status: http.StatusBadRequest},
		{
			name: "not accepting",
			body: `{"content":"hello"}`,
			setup: func(m *mockMessageService) {
				m.On("Accept", mock.Anything, "owl", "hello").Return(nil, services.ErrNotAcceptingMessages)
			},
			status: http.StatusForbidden,
			reason: services.ReasonNotAcceptingMessages,
		},
		{
			name: "unknown recipient",
			body: `{"content":"hello"}`,
			setup: func(m *mockMessageService) {
				m.On("Accept", mock.Anything, "owl", "hello").Return(nil, services.ErrUserNotFound)
			},
			status: http.StatusNotFound,
			reason: services.ReasonUserNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockMessageService{}
			if tt.setup != nil {
				tt.setup(svc)
			}
			w, resp := serve(newMessageRouter(svc, zap.NewNop()), http.MethodPost, "/u/owl/messages", tt.body)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.reason, resp.Reason)
			assert.Equal(t, tt.status < 300, resp.Success)
			assert.Nil(t, resp.Data)
			svc.AssertExpectations(t)
		})
	}
}

func TestMessageHandler_List(t *testing.T) {
	svc := &mockMessageService{}
	svc.On("List", mock.Anything, 7, defaultPageSize, 0).Return([]*models.Message{}, nil).Once()
	svc.On("List", mock.Anything, 7, 5, 10).Return([]*models.Message{{ID: uuid.New(), Content: "hi"}}, nil).Once()
	r := newMessageRouter(svc, zap.NewNop())

	w, _ := serve(r, http.MethodGet, "/messages", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	w, _ = serve(r, http.MethodGet, "/messages?limit=5&offset=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"content":"hi"`)

	w, resp := serve(r, http.MethodGet, "/messages?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "limit")

	svc.AssertExpectations(t)
}

func TestMessageHandler_Delete(t *testing.T) {
	id := uuid.New()
	svc := &mockMessageService{}
	svc.On("Delete", mock.Anything, 7, id).Return(nil).Once()
	svc.On("Delete", mock.Anything, 7, id).Return(services.ErrMessageNotFound).Once()
	r := newMessageRouter(svc, zap.NewNop())

	w, _ := serve(r, http.MethodDelete, "/messages/"+id.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := serve(r, http.MethodDelete, "/messages/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, services.ReasonMessageNotFound, resp.Reason)

	w, _ = serve(r, http.MethodDelete, "/messages/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestMessageHandler_Accepting(t *testing.T) {
	svc := &mockMessageService{}
	svc.On("IsAccepting", mock.Anything, 7).Return(true, nil)
	svc.On("SetAccepting", mock.Anything, 7, false).Return(nil)
	r := newMessageRouter(svc, zap.NewNop())

	w, _ := serve(r, http.MethodGet, "/messages/accepting", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accept_messages":true`)

	w, _ = serve(r, http.MethodPut, "/messages/accepting", `{"accept_messages":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accept_messages":false`)

	// false is a value, a missing field is not
	w, resp := serve(r, http.MethodPut, "/messages/accepting", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "accept_messages is required", resp.Message)

	svc.AssertExpectations(t)
}

func TestRespondError_Infrastructure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	svc := &mockMessageService{}
	svc.On("IsAccepting", mock.Anything, 7).Return(false, errors.New("connection refused"))
	r := newMessageRouter(svc, zap.New(core))

	w, resp := serve(r, http.MethodGet, "/messages/accepting", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", resp.Message)
	assert.NotContains(t, w.Body.String(), "connection refused")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "/messages/accepting", logs.All()[0].ContextMap()["route"])
}

func TestCurrentUserID_Missing(t *testing.T) {
	h := NewMessageHandler(&mockMessageService{}, 10, zap.NewNop())
	r := gin.New()
	r.GET("/messages", h.List)

	w, _ := serve(r, http.MethodGet, "/messages", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestVerifyHandler_Confirm(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		call   bool
		status int
		reason services.Reason
		msg    string
	}{
		{name: "verified", body: `{"identifier":"owl","code":"048213"}`, call: true, status: http.StatusOK},
		{name: "short code reaches the service", body: `{"identifier":"owl","code":"4821"}`, err: services.ErrCodeMismatch, call: true, status: http.StatusBadRequest, reason: services.ReasonCodeMismatch},
		{name: "expired", body: `{"identifier":"owl","code":"048213"}`, err: services.ErrCodeExpired, call: true, status: http.StatusBadRequest, reason: services.ReasonCodeExpired},
		{name: "no code", body: `{"identifier":"owl","code":"048213"}`, err: services.ErrCodeNotFound, call: true, status: http.StatusBadRequest, reason: services.ReasonCodeNotFound},
		{name: "already verified", body: `{"identifier":"owl","code":"048213"}`, err: services.ErrAlreadyVerified, call: true, status: http.StatusConflict, reason: services.ReasonAlreadyVerified},
		{name: "letters", body: `{"identifier":"owl","code":"04a213"}`, status: http.StatusBadRequest, msg: "code must be a numeric code of up to 6 digits"},
		{name: "too long", body: `{"identifier":"owl","code":"0482130"}`, status: http.StatusBadRequest},
		{name: "missing identifier", body: `{"code":"048213"}`, status: http.StatusBadRequest, msg: "identifier is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockVerificationService{}
			if tt.call {
				svc.On("Confirm", mock.Anything, "owl", mock.AnythingOfType("string")).Return(tt.err)
			}
			h := NewVerifyHandler(svc, zap.NewNop())
			r := gin.New()
			r.POST("/auth/verify/confirm", h.Confirm)

			w, resp := serve(r, http.MethodPost, "/auth/verify/confirm", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.reason, resp.Reason)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, resp.Message)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestVerifyHandler_RequestCodeDeliveryFailure(t *testing.T) {
	svc := &mockVerificationService{}
	svc.On("RequestCode", mock.Anything, "owl@example.com").Return(services.ErrNotificationFailed)
	h := NewVerifyHandler(svc, zap.NewNop())
	r := gin.New()
	r.POST("/auth/verify/request", h.RequestCode)

	w, resp := serve(r, http.MethodPost, "/auth/verify/request", `{"identifier":"owl@example.com"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, services.ReasonNotificationFailed, resp.Reason)
}

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	r := gin.New()
	r.GET("/up", NewHealthHandler(map[string]HealthCheck{"database": ok, "redis": ok}).Health)
	r.GET("/down", NewHealthHandler(map[string]HealthCheck{"database": ok, "redis": down}).Health)

	w, resp := serve(r, http.MethodGet, "/up", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = serve(r, http.MethodGet, "/down", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, w.Body.String(), `"redis":"dial tcp: refused"`)
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor("something_new"))
	assert.Equal(t, http.StatusUnauthorized, statusFor(services.ReasonInvalidCredentials))
}
