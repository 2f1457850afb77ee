package constant

// ErrorMessages maps registered codes to user-facing text.
var ErrorMessages = map[int]string{
	CodeSuccess:       "Success",
	CodeSystemError:   "System error",
	CodeDatabaseError: "Database error",
	CodeConfigError:   "Service misconfigured",
	CodeAuthError:     "Authentication failed",
	CodeParamError:    "Invalid request parameters",

	CodeCommissionNotFound:      "Commission not found",
	CodeCommissionStatusInvalid: "Commission status does not allow this operation",
	CodeDealValueInvalid:        "Deal value must be positive",
	CodeDealRefMissing:          "Deal is missing affiliate or company reference",
	CodeCommissionNotApproved:   "Commission is not approved",
	CodeCommissionInBatch:       "Commission already belongs to a payment batch",

	CodeBatchNotFound:      "Payment batch not found",
	CodeBatchStatusInvalid: "Payment batch status does not allow this operation",
	CodeBatchEmpty:         "Payment batch has no commissions",
	CodeBatchOwnership:     "Commission does not belong to the calling company",
	CodeBatchChargeFailed:  "Charge request failed",

	CodePayoutNotFound:      "Payout not found",
	CodePayoutStatusInvalid: "Payout status does not allow this operation",
	CodeAccountNotVerified:  "Affiliate payout account is not verified",
	CodeTransferFailed:      "Transfer request failed",

	CodeCompanyNotFound:   "Company not found",
	CodeAffiliateNotFound: "Affiliate not found",
	CodePermissionDenied:  "Permission denied",

	CodeProcessorError:     "Payment processor error",
	CodeProcessorDeclined:  "Payment declined by processor",
	CodeWebhookSignInvalid: "Webhook signature mismatch",
	CodeWebhookNoSecret:    "Webhook verification secret not provisioned",
	CodeEventUnknownType:   "Unsupported event type",
}
