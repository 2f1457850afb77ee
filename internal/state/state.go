// Package state holds the closed status enumerations for every settlement
// entity and the legal transitions between them. All status writes go through
// CanTransition so an illegal move (e.g. paid -> pending) is rejected in one
// place instead of being a per-call convention.
package state

// CommissionStatus tracks the affiliate-facing lifecycle of a commission.
type CommissionStatus int8

const (
	CommissionPending CommissionStatus = iota
	CommissionApproved
	CommissionRejected
	CommissionPendingPayout
	CommissionPaid
)

// CompanyPaymentStatus tracks whether the company has paid the commission in.
type CompanyPaymentStatus int8

const (
	CompanyPayPending CompanyPaymentStatus = iota
	CompanyPayProcessing
	CompanyPayPaid
)

// BatchStatus is the lifecycle of a company payment batch.
type BatchStatus int8

const (
	BatchPending BatchStatus = iota
	BatchProcessing
	BatchSucceeded
	BatchFailed
)

// PayoutStatus is the lifecycle of an affiliate payout transfer.
type PayoutStatus int8

const (
	PayoutScheduled PayoutStatus = iota
	PayoutProcessing
	PayoutCompleted
	PayoutFailed
)

// AccountStatus is the processor-side state of an affiliate payout account.
type AccountStatus int8

const (
	AccountUnverified AccountStatus = iota
	AccountPendingVerify
	AccountVerified
	AccountDisabled
)

var commissionTransitions = map[CommissionStatus][]CommissionStatus{
	CommissionPending:  {CommissionApproved, CommissionRejected},
	CommissionApproved: {CommissionPendingPayout},
	// transfer failure compensating reversal
	CommissionPendingPayout: {CommissionPaid, CommissionApproved},
	CommissionRejected:      {},
	CommissionPaid:          {},
}

var companyPayTransitions = map[CompanyPaymentStatus][]CompanyPaymentStatus{
	CompanyPayPending: {CompanyPayProcessing},
	// a failed charge releases the commissions back to pending
	CompanyPayProcessing: {CompanyPayPaid, CompanyPayPending},
	CompanyPayPaid:       {},
}

var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchPending:    {BatchProcessing, BatchSucceeded, BatchFailed},
	BatchProcessing: {BatchSucceeded, BatchFailed},
	BatchSucceeded:  {},
	BatchFailed:     {},
}

var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutScheduled:  {PayoutProcessing, PayoutCompleted, PayoutFailed},
	PayoutProcessing: {PayoutCompleted, PayoutFailed},
	PayoutCompleted:  {},
	PayoutFailed:     {},
}

func contains[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func (s CommissionStatus) CanTransition(to CommissionStatus) bool {
	return contains(commissionTransitions[s], to)
}

func (s CommissionStatus) Terminal() bool {
	return len(commissionTransitions[s]) == 0
}

func (s CompanyPaymentStatus) CanTransition(to CompanyPaymentStatus) bool {
	return contains(companyPayTransitions[s], to)
}

func (s BatchStatus) CanTransition(to BatchStatus) bool {
	return contains(batchTransitions[s], to)
}

func (s BatchStatus) Terminal() bool {
	return len(batchTransitions[s]) == 0
}

func (s PayoutStatus) CanTransition(to PayoutStatus) bool {
	return contains(payoutTransitions[s], to)
}

func (s PayoutStatus) Terminal() bool {
	return len(payoutTransitions[s]) == 0
}

func (s CommissionStatus) String() string {
	switch s {
	case CommissionPending:
		return "pending"
	case CommissionApproved:
		return "approved"
	case CommissionRejected:
		return "rejected"
	case CommissionPendingPayout:
		return "pending_payout"
	case CommissionPaid:
		return "paid"
	}
	return "unknown"
}

func (s CompanyPaymentStatus) String() string {
	switch s {
	case CompanyPayPending:
		return "pending"
	case CompanyPayProcessing:
		return "processing"
	case CompanyPayPaid:
		return "paid"
	}
	return "unknown"
}

func (s BatchStatus) String() string {
	switch s {
	case BatchPending:
		return "pending"
	case BatchProcessing:
		return "processing"
	case BatchSucceeded:
		return "succeeded"
	case BatchFailed:
		return "failed"
	}
	return "unknown"
}

func (s PayoutStatus) String() string {
	switch s {
	case PayoutScheduled:
		return "scheduled"
	case PayoutProcessing:
		return "processing"
	case PayoutCompleted:
		return "completed"
	case PayoutFailed:
		return "failed"
	}
	return "unknown"
}

func (s AccountStatus) String() string {
	switch s {
	case AccountUnverified:
		return "unverified"
	case AccountPendingVerify:
		return "pending"
	case AccountVerified:
		return "verified"
	case AccountDisabled:
		return "disabled"
	}
	return "unknown"
}
