package utils

import "testing"

func TestGenerateSignDeterministic(t *testing.T) {
	params := map[string]string{
		"amount":   "120.00",
		"currency": "USD",
		"purpose":  "company_batch",
	}
	a := GenerateSign(params, "k1")
	b := GenerateSign(params, "k1")
	if a != b {
		t.Fatalf("sign not deterministic: %s vs %s", a, b)
	}
	if a == GenerateSign(params, "k2") {
		t.Fatal("different secrets must produce different signs")
	}
}

func TestGenerateSignSkipsEmptyAndSignKeys(t *testing.T) {
	base := map[string]string{"amount": "10", "currency": "USD"}
	noisy := map[string]string{"amount": "10", "currency": "USD", "memo": "", "sign": "ABC"}
	if GenerateSign(base, "k") != GenerateSign(noisy, "k") {
		t.Fatal("empty values and the sign field must not affect the signature")
	}
}
