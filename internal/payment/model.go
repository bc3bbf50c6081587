package payment

import "time"

// Event is a payment status notification for one order, as delivered by the
// payment provider webhook or the payment events topic.
type Event struct {
	OrderID int64      `json:"orderId"`
	Status  string     `json:"status"`
	PaidAt  *time.Time `json:"paidAt,omitempty"`
}

type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeCanceled  Outcome = "canceled"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeFailed    Outcome = "failed"
)

// Event sources, used as the metrics label.
const (
	SourceWebhook = "webhook"
	SourceKafka   = "kafka"
)
