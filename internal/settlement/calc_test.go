package settlement

import (
	"testing"

	"github.com/shopspring/decimal"

	mainmodel "affiliate-settlement-api/internal/model/main"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func TestCalculate_PercentAffiliatePaysFee(t *testing.T) {
	// 1000 deal, 10% commission, 20% platform fee borne by the affiliate
	res := Calculate(d("1000"), d("10"), mainmodel.RateTypePercent, d("20"), mainmodel.FeePayerAffiliate, "USD")

	if !res.CommissionAmount.Equal(d("100")) {
		t.Errorf("commission = %s, want 100", res.CommissionAmount)
	}
	if !res.PlatformFee.Equal(d("20")) {
		t.Errorf("fee = %s, want 20", res.PlatformFee)
	}
	if !res.PayoutAmount.Equal(d("80")) {
		t.Errorf("payout = %s, want 80", res.PayoutAmount)
	}
	if !res.CompanyCharge.Equal(d("100")) {
		t.Errorf("company charge = %s, want 100", res.CompanyCharge)
	}
	if !res.CommissionAmount.Equal(res.PayoutAmount.Add(res.PlatformFee)) {
		t.Errorf("commission != payout + fee")
	}
}

func TestCalculate_PercentCompanyPaysFee(t *testing.T) {
	res := Calculate(d("1000"), d("10"), mainmodel.RateTypePercent, d("20"), mainmodel.FeePayerCompany, "USD")

	if !res.PayoutAmount.Equal(d("100")) {
		t.Errorf("payout = %s, want 100", res.PayoutAmount)
	}
	if !res.CompanyCharge.Equal(d("120")) {
		t.Errorf("company charge = %s, want 120", res.CompanyCharge)
	}
}

func TestCalculate_FixedRate(t *testing.T) {
	res := Calculate(d("5000"), d("250"), mainmodel.RateTypeFixed, d("10"), mainmodel.FeePayerAffiliate, "USD")

	if !res.CommissionAmount.Equal(d("250")) {
		t.Errorf("commission = %s, want 250", res.CommissionAmount)
	}
	if !res.PlatformFee.Equal(d("25")) {
		t.Errorf("fee = %s, want 25", res.PlatformFee)
	}
	if !res.PayoutAmount.Equal(d("225")) {
		t.Errorf("payout = %s, want 225", res.PayoutAmount)
	}
}

func TestCalculate_PayoutNeverNegative(t *testing.T) {
	// degenerate fee rate above 100%
	res := Calculate(d("100"), d("10"), mainmodel.RateTypePercent, d("150"), mainmodel.FeePayerAffiliate, "USD")
	if res.PayoutAmount.Sign() < 0 {
		t.Errorf("payout went negative: %s", res.PayoutAmount)
	}
}

func TestCalculate_BatchScenario(t *testing.T) {
	// three identical commissions: batch total 300, payouts 240, fees 60
	total := decimal.Zero
	payouts := decimal.Zero
	fees := decimal.Zero
	for i := 0; i < 3; i++ {
		res := Calculate(d("1000"), d("10"), mainmodel.RateTypePercent, d("20"), mainmodel.FeePayerAffiliate, "USD")
		total = total.Add(res.CompanyCharge)
		payouts = payouts.Add(res.PayoutAmount)
		fees = fees.Add(res.PlatformFee)
	}
	if !total.Equal(d("300")) {
		t.Errorf("batch total = %s, want 300", total)
	}
	if !payouts.Equal(d("240")) {
		t.Errorf("payout sum = %s, want 240", payouts)
	}
	if !fees.Equal(d("60")) {
		t.Errorf("fee sum = %s, want 60", fees)
	}
}
