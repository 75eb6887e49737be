package logic

import (
	"errors"

	orderdal "DigiMart/app/dal/order"
)

var (
	ErrOrderNotFound      = errors.New("order not found for payment session")
	ErrAmountMismatch     = errors.New("payment amount mismatch")
	ErrDeliveryInProgress = errors.New("order delivery already in progress")
	ErrOrderClosed        = errors.New("order can no longer be delivered")
)

// IsRetryable reports whether running the same delivery again may succeed.
// A missing order, a mismatched amount and a closed order never will.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrOrderNotFound) &&
		!errors.Is(err, ErrAmountMismatch) &&
		!errors.Is(err, ErrOrderClosed)
}

type DeliveryRequest struct {
	Provider  string
	SessionID string
	// Payload is the confirmation as received; it is stored on the order at commit.
	Payload map[string]any
}

type OutcomeStatus string

const (
	OutcomeDelivered OutcomeStatus = "delivered"
	OutcomePartial   OutcomeStatus = "partial"
	OutcomeSkipped   OutcomeStatus = "skipped"
)

const (
	ReasonMissingFileInfo = "missing_file_info"
	ReasonOutOfStock      = "out_of_stock"
	ReasonUnsupportedType = "unsupported_type"
)

// ItemOutcome is what happened to one line item, in order position.
type ItemOutcome struct {
	Index     int
	ProductID int64
	Name      string
	Kind      string
	Status    OutcomeStatus
	Reason    string
	// Units is the number of links or codes handed out for the item.
	Units int
}

type DeliveryResult struct {
	Order            *orderdal.Orders
	Outcomes         []ItemOutcome
	AlreadyDelivered bool
	MessageID        string
	CodeIDs          []int64
}

func (r *DeliveryResult) Skipped() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == OutcomeSkipped {
			n++
		}
	}
	return n
}
