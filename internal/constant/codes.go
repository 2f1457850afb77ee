package constant

// System codes (0 / 1xxx)
const (
	CodeSuccess       = 0
	CodeSystemError   = 1000
	CodeDatabaseError = 1001
	CodeConfigError   = 1002
	CodeAuthError     = 1003
	CodeParamError    = 1004
)

// Commission codes (2xxx)
const (
	CodeCommissionNotFound      = 2000
	CodeCommissionStatusInvalid = 2001
	CodeDealValueInvalid        = 2002
	CodeDealRefMissing          = 2003
	CodeCommissionNotApproved   = 2004
	CodeCommissionInBatch       = 2005
)

// Batch codes (21xx)
const (
	CodeBatchNotFound      = 2100
	CodeBatchStatusInvalid = 2101
	CodeBatchEmpty         = 2102
	CodeBatchOwnership     = 2103
	CodeBatchChargeFailed  = 2104
)

// Payout codes (22xx)
const (
	CodePayoutNotFound      = 2200
	CodePayoutStatusInvalid = 2201
	CodeAccountNotVerified  = 2202
	CodeTransferFailed      = 2203
)

// Party codes (23xx)
const (
	CodeCompanyNotFound   = 2300
	CodeAffiliateNotFound = 2301
	CodePermissionDenied  = 2302
)

// Processor codes (3xxx)
const (
	CodeProcessorError     = 3000
	CodeProcessorDeclined  = 3001
	CodeWebhookSignInvalid = 3002
	CodeWebhookNoSecret    = 3003
	CodeEventUnknownType   = 3004
)
