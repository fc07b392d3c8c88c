package utils

import (
	"encoding/base32"
	"testing"
	"time"
)

// RFC 4226 appendix D vectors for the shared secret "12345678901234567890".
func TestHotpCodeRfcVectors(t *testing.T) {
	secret := []byte("12345678901234567890")
	expected := []string{
		"755224", "287082", "359152", "969429", "338314",
		"254676", "287922", "162583", "399871", "520489",
	}

	for counter, want := range expected {
		got, err := hotpCode(secret, int64(counter))
		if err != nil {
			t.Fatalf("hotpCode(counter=%d): %v", counter, err)
		}
		if got != want {
			t.Errorf("counter %d: got %q, want %q", counter, got, want)
		}
	}
}

func TestDeriveAndVerifyOtpCode(t *testing.T) {
	secret, err := GenerateOtpSecret()
	if err != nil {
		t.Fatalf("GenerateOtpSecret: %v", err)
	}

	now := time.Unix(1700000000, 0)
	code, err := DeriveOtpCode(secret, now)
	if err != nil {
		t.Fatalf("DeriveOtpCode: %v", err)
	}
	if len(code) != otpDigits || !isNumericString(code) {
		t.Fatalf("derived code %q is not %d digits", code, otpDigits)
	}

	ok, err := VerifyOtpCode(secret, code, now)
	if err != nil {
		t.Fatalf("VerifyOtpCode: %v", err)
	}
	if !ok {
		t.Fatal("code derived at the same instant should verify")
	}
}

func TestVerifyOtpCodeSkew(t *testing.T) {
	secret, err := GenerateOtpSecret()
	if err != nil {
		t.Fatalf("GenerateOtpSecret: %v", err)
	}

	issuedAt := time.Unix(1700000000, 0)
	code, err := DeriveOtpCode(secret, issuedAt)
	if err != nil {
		t.Fatalf("DeriveOtpCode: %v", err)
	}

	// one step either side is accepted
	oneStepLater := issuedAt.Add(otpPeriod * time.Second)
	if ok, _ := VerifyOtpCode(secret, code, oneStepLater); !ok {
		t.Error("code should still verify one step after issue")
	}
	oneStepBefore := issuedAt.Add(-otpPeriod * time.Second)
	if ok, _ := VerifyOtpCode(secret, code, oneStepBefore); !ok {
		t.Error("code should verify one step before issue")
	}

	// three steps away is expired
	threeStepsLater := issuedAt.Add(3 * otpPeriod * time.Second)
	if ok, _ := VerifyOtpCode(secret, code, threeStepsLater); ok {
		t.Error("code three steps old must not verify")
	}
}

func TestVerifyOtpCodeRejectsMalformedInput(t *testing.T) {
	secret, err := GenerateOtpSecret()
	if err != nil {
		t.Fatalf("GenerateOtpSecret: %v", err)
	}

	now := time.Now()
	for _, code := range []string{"", "12345", "1234567", "12a456", "abcdef"} {
		ok, err := VerifyOtpCode(secret, code, now)
		if err != nil {
			t.Fatalf("VerifyOtpCode(%q): %v", code, err)
		}
		if ok {
			t.Errorf("malformed code %q must not verify", code)
		}
	}
}

func TestGenerateOtpSecretIsDecodableAndFresh(t *testing.T) {
	a, err := GenerateOtpSecret()
	if err != nil {
		t.Fatalf("GenerateOtpSecret: %v", err)
	}
	b, err := GenerateOtpSecret()
	if err != nil {
		t.Fatalf("GenerateOtpSecret: %v", err)
	}
	if a == b {
		t.Fatal("two generated secrets should not collide")
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	raw, err := enc.DecodeString(a)
	if err != nil {
		t.Fatalf("secret is not valid base32: %v", err)
	}
	if len(raw) != otpSecretBytes {
		t.Fatalf("secret decodes to %d bytes, want %d", len(raw), otpSecretBytes)
	}
}
