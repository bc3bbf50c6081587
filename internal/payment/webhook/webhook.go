package webhook

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	"dscommerce-be/internal/apperror"
	"dscommerce-be/internal/logger"
	"dscommerce-be/internal/payment"

	"go.uber.org/zap"
)

// TokenHeader carries the shared secret configured at the payment provider.
const TokenHeader = "X-Callback-Token"

type Handler struct {
	svc   payment.Service
	token string
}

func NewWebhookHandler(svc payment.Service, token string) *Handler {
	return &Handler{svc: svc, token: token}
}

type response struct {
	OrderID int64  `json:"orderId"`
	Outcome string `json:"outcome"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := logger.FromCtx(r.Context()).With(zap.String("layer", "webhook"))

	// 1. Verify token
	if !h.verify(r.Header.Get(TokenHeader)) {
		log.Warn("payment webhook rejected")
		apperror.WriteJSON(w, r, apperror.ErrInvalidCredential)
		return
	}

	// 2. Decode
	var ev payment.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		log.Warn("invalid webhook payload", zap.Error(err))
		apperror.WriteJSON(w, r, fmt.Errorf("%w: %v", apperror.ErrMalformedRequest, err))
		return
	}

	// 3. Apply
	outcome, err := h.svc.Process(r.Context(), payment.SourceWebhook, ev)
	if err != nil {
		apperror.WriteJSON(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response{OrderID: ev.OrderID, Outcome: string(outcome)})
}

func (h *Handler) verify(got string) bool {
	if h.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(h.token)) == 1
}
