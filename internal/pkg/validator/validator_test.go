package validator

import (
	"testing"

	"github.com/shopspring/decimal"
)

type paymentInput struct {
	Amount decimal.Decimal `json:"amount" validate:"money"`
	Type   string          `json:"type" validate:"required,tx_type"`
	Method string          `json:"payment_method" validate:"payment_method"`
	Phone  string          `json:"phone" validate:"omitempty,phone"`
}

func TestValidateMoney(t *testing.T) {
	tests := []struct {
		amount string
		ok     bool
	}{
		{"10", true},
		{"10.25", true},
		{"0.01", true},
		{"0", false},
		{"-3", false},
		{"1.005", false},
	}

	for _, tt := range tests {
		in := paymentInput{Amount: decimal.RequireFromString(tt.amount), Type: "PAYMENT"}
		errs := Validate(&in)
		if tt.ok && errs != nil {
			t.Fatalf("%s: expected valid, got %v", tt.amount, errs)
		}
		if !tt.ok && errs["amount"] == "" {
			t.Fatalf("%s: expected amount error, got %v", tt.amount, errs)
		}
	}
}

func TestValidateUsesJSONNames(t *testing.T) {
	errs := Validate(&paymentInput{Amount: decimal.NewFromInt(5), Type: "REFUND", Method: "cheque", Phone: "abc"})
	for _, field := range []string{"type", "payment_method", "phone"} {
		if errs[field] == "" {
			t.Fatalf("expected error for %s, got %v", field, errs)
		}
	}
}
