package models

import (
	"strings"
	"testing"
)

func TestPaymentTypeValidation(t *testing.T) {
	valid := []PaymentType{
		PaymentTypeCash, PaymentTypeQris, PaymentTypeBankTransfer,
		PaymentTypeEWallet, PaymentTypeDebt,
	}
	for _, p := range valid {
		if !p.IsValid() {
			t.Errorf("%s should be a valid payment type", p)
		}
	}
	for _, p := range []PaymentType{"", "cash", "CREDIT_CARD"} {
		if p.IsValid() {
			t.Errorf("%q should not be a valid payment type", p)
		}
	}
}

func TestPaymentTypeSettlesImmediately(t *testing.T) {
	if !PaymentTypeCash.SettlesImmediately() {
		t.Error("cash must settle at checkout")
	}
	deferred := []PaymentType{
		PaymentTypeQris, PaymentTypeBankTransfer, PaymentTypeEWallet, PaymentTypeDebt,
	}
	for _, p := range deferred {
		if p.SettlesImmediately() {
			t.Errorf("%s must start unpaid", p)
		}
	}
}

func TestActivityTypeValidation(t *testing.T) {
	valid := []ActivityType{
		ActivitySaleCreated, ActivitySaleUpdated, ActivityProductAdded,
		ActivityProductUpdated, ActivityCustomerAdded, ActivityWarungUpdated,
	}
	for _, a := range valid {
		if !a.IsValid() {
			t.Errorf("%s should be a valid activity type", a)
		}
	}
	if ActivityType("SALE_DELETED").IsValid() {
		t.Error("unknown activity type must be rejected")
	}
}

func TestGenerateBackupCodesFormat(t *testing.T) {
	codes, err := generateBackupCodes()
	if err != nil {
		t.Fatalf("generateBackupCodes: %v", err)
	}
	if len(codes) != backupCodeCount {
		t.Fatalf("got %d codes, want %d", len(codes), backupCodeCount)
	}

	seen := map[string]bool{}
	for _, code := range codes {
		if len(code) != backupCodeLength {
			t.Errorf("code %q has length %d, want %d", code, len(code), backupCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(backupCodeCharset, r) {
				t.Errorf("code %q contains %q outside the charset", code, r)
			}
		}
		seen[code] = true
	}
	if len(seen) != len(codes) {
		t.Error("backup codes within one batch should not collide")
	}
}
