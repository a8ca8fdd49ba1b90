package payment

import "testing"

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		from        Status
		to          Status
		shouldAllow bool
	}{
		{"pending to completed", StatusPending, StatusCompleted, true},
		{"pending to failed", StatusPending, StatusFailed, true},
		{"pending to cancelled", StatusPending, StatusCancelled, true},
		{"completed to failed", StatusCompleted, StatusFailed, false},
		{"completed to pending", StatusCompleted, StatusPending, false},
		{"failed to completed", StatusFailed, StatusCompleted, false},
		{"cancelled to completed", StatusCancelled, StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Payment{Status: tt.from}
			if got := p.CanTransitionTo(tt.to); got != tt.shouldAllow {
				t.Errorf("CanTransitionTo(%s) from %s = %v, want %v", tt.to, tt.from, got, tt.shouldAllow)
			}
		})
	}
}

func TestMergeDetailsLaterKeysWin(t *testing.T) {
	p := &Payment{
		PaymentDetails: map[string]interface{}{
			"mpesa_receipt": "QA12XYZ",
			"phone":         "+254712345678",
		},
	}

	p.MergeDetails(map[string]interface{}{
		"mpesa_receipt": "QB34ABC",
		"result_code":   0,
	})

	if p.PaymentDetails["mpesa_receipt"] != "QB34ABC" {
		t.Errorf("later key should win, got %v", p.PaymentDetails["mpesa_receipt"])
	}
	if p.PaymentDetails["phone"] != "+254712345678" {
		t.Error("untouched key lost in merge")
	}
	if p.PaymentDetails["result_code"] != 0 {
		t.Error("new key not merged")
	}
}

func TestMergeDetailsIntoNilBag(t *testing.T) {
	p := &Payment{}
	p.MergeDetails(map[string]interface{}{"a": 1})
	if p.PaymentDetails["a"] != 1 {
		t.Error("merge into nil bag failed")
	}
}

func TestValidMethod(t *testing.T) {
	for _, m := range []Method{MethodMpesa, MethodBankTransfer, MethodCash, MethodCard, MethodAirtelMoney} {
		if !ValidMethod(m) {
			t.Errorf("%s should be valid", m)
		}
	}
	if ValidMethod("paypal") {
		t.Error("paypal should not be valid")
	}
}
