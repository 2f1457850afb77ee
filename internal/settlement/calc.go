package settlement

import (
	"github.com/shopspring/decimal"

	"affiliate-settlement-api/internal/dto"
	mainmodel "affiliate-settlement-api/internal/model/main"
)

var hundred = decimal.NewFromInt(100)

// Calculate computes the commission split for one closed deal.
//
// FeePayer:
//
//	FeePayerAffiliate - fee comes out of the affiliate's payout
//	FeePayerCompany   - payout is the full commission, the company's batch
//	                    charge carries the fee on top
func Calculate(dealValue, rate decimal.Decimal, rateType int8, platformFeeRate decimal.Decimal, feePayer int8, currency string) dto.SettlementResult {
	var commission decimal.Decimal
	switch rateType {
	case mainmodel.RateTypeFixed:
		commission = rate
	default:
		commission = dealValue.Mul(rate).Div(hundred)
	}
	fee := commission.Mul(platformFeeRate).Div(hundred)

	res := dto.SettlementResult{
		DealValue:        dealValue,
		CommissionAmount: commission,
		PlatformFee:      fee,
		FeePayer:         feePayer,
		Currency:         currency,
	}

	switch feePayer {
	case mainmodel.FeePayerCompany:
		res.PayoutAmount = commission
		res.CompanyCharge = commission.Add(fee)
	default:
		res.PayoutAmount = MaxDecimal(commission.Sub(fee), decimal.Zero)
		res.CompanyCharge = commission
	}

	return res
}

func MaxDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}
