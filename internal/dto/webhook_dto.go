package dto

import "github.com/shopspring/decimal"

// Processor event types, exactly the lifecycle the reconciler handles.
// Unrecognized types are logged and ignored.
const (
	EventChargeSucceeded = "charge.succeeded"
	EventChargeFailed    = "charge.failed"
	EventChargeRefunded  = "charge.refunded"
	EventTransferCreated = "transfer.created"
	EventTransferPaid    = "transfer.paid"
	EventTransferFailed  = "transfer.failed"
	EventAccountUpdated  = "account.updated"
)

// Charge purposes carried in event data; tells a charge event apart between
// an originating customer payment and a company commission batch.
const (
	PurposeCustomerPayment = "customer_payment"
	PurposeCompanyBatch    = "company_batch"
)

// ProcessorEvent is the signed webhook payload from the payment processor.
type ProcessorEvent struct {
	EventID string    `json:"event_id" binding:"required"`
	Type    string    `json:"type" binding:"required"`
	Ts      int64     `json:"ts"`
	Data    EventData `json:"data"`
}

// EventData is the union of fields across event types; handlers read only
// what their type defines.
type EventData struct {
	Purpose       string          `json:"purpose,omitempty"`
	ChargeRef     string          `json:"charge_ref,omitempty"`
	TransferRef   string          `json:"transfer_ref,omitempty"`
	AccountRef    string          `json:"account_ref,omitempty"`
	AccountStatus string          `json:"account_status,omitempty"` // unverified|pending|verified|disabled
	Amount        decimal.Decimal `json:"amount,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	CompanyID     uint64          `json:"company_id,omitempty"`
}

// EventEnvelope is what the webhook handler publishes to the internal bus.
type EventEnvelope struct {
	Event      ProcessorEvent `json:"event"`
	TraceID    string         `json:"trace_id"`
	ReceivedAt int64          `json:"received_at"`
	RetryCount int            `json:"retry_count"`
}
