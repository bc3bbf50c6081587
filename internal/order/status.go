package order

type Status string

const (
	StatusWaitingPayment Status = "WAITING_PAYMENT"
	StatusPaid           Status = "PAID"
	StatusShipped        Status = "SHIPPED"
	StatusDelivered      Status = "DELIVERED"
	StatusCanceled       Status = "CANCELED"
)

// transitions lists the forward moves allowed from each status.
// DELIVERED and CANCELED are terminal.
var transitions = map[Status][]Status{
	StatusWaitingPayment: {StatusPaid, StatusCanceled},
	StatusPaid:           {StatusShipped, StatusCanceled},
	StatusShipped:        {StatusDelivered},
}

func (s Status) Valid() bool {
	switch s {
	case StatusWaitingPayment, StatusPaid, StatusShipped, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
