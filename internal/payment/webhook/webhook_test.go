package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/order"
	"dscommerce-be/internal/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) Process(ctx context.Context, source string, ev payment.Event) (payment.Outcome, error) {
	args := m.Called(ctx, source, ev)
	return args.Get(0).(payment.Outcome), args.Error(1)
}

func post(h http.Handler, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook/payment", bytes.NewBufferString(body))
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandler_ServeHTTP(t *testing.T) {
	const secret = "secret-token"

	t.Run("Success_Paid", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Process", mock.Anything, payment.SourceWebhook, payment.Event{OrderID: 3, Status: "PAID"}).
			Return(payment.OutcomeConfirmed, nil)

		w := post(NewWebhookHandler(svc, secret), secret, `{"orderId":3,"status":"PAID"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"orderId":3,"outcome":"confirmed"}`, w.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		svc := new(MockPaymentService)

		for _, token := range []string{"", "wrong"} {
			w := post(NewWebhookHandler(svc, secret), token, `{"orderId":3,"status":"PAID"}`)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var resp apperror.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "Invalid credential", resp.Error)
			assert.Equal(t, "/webhook/payment", resp.Path)
		}
		svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NoTokenConfigured", func(t *testing.T) {
		w := post(NewWebhookHandler(new(MockPaymentService), ""), "", `{"orderId":3,"status":"PAID"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		w := post(NewWebhookHandler(new(MockPaymentService), secret), secret, `{invalid-json}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidTransition", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Process", mock.Anything, payment.SourceWebhook, mock.Anything).
			Return(payment.OutcomeFailed, order.ErrInvalidTransition)

		w := post(NewWebhookHandler(svc, secret), secret, `{"orderId":2,"status":"PAID"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		var resp apperror.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Order status does not allow this operation", resp.Error)
	})

	t.Run("OrderNotFound", func(t *testing.T) {
		svc := new(MockPaymentService)
		svc.On("Process", mock.Anything, payment.SourceWebhook, mock.Anything).
			Return(payment.OutcomeFailed, order.ErrOrderNotFound)

		w := post(NewWebhookHandler(svc, secret), secret, `{"orderId":1000,"status":"PAID"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
