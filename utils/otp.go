package utils

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// One-time codes are 6-digit RFC 4226 truncations over a 5-minute time step.
// Codes ride in email, so the step is deliberately longer than the usual
// authenticator-app 30 seconds.

const (
	otpSecretBytes = 20
	otpDigits      = 6
	otpPeriod      = 300 // seconds
	otpSkew        = 1   // accepted steps either side of now
)

// GenerateOtpSecret returns a fresh random shared secret, base32-encoded
// without padding.
func GenerateOtpSecret() (string, error) {
	raw := make([]byte, otpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return enc.EncodeToString(raw), nil
}

// DeriveOtpCode computes the 6-digit code for the given secret at the given
// moment.
func DeriveOtpCode(secret string, now time.Time) (string, error) {
	raw, err := decodeOtpSecret(secret)
	if err != nil {
		return "", err
	}
	return hotpCode(raw, now.Unix()/otpPeriod)
}

// VerifyOtpCode checks a submitted code against the secret, accepting one
// step of clock skew either side.
func VerifyOtpCode(secret string, code string, now time.Time) (bool, error) {
	trimmed := strings.TrimSpace(code)
	if len(trimmed) != otpDigits || !isNumericString(trimmed) {
		return false, nil
	}

	raw, err := decodeOtpSecret(secret)
	if err != nil {
		return false, err
	}

	baseCounter := now.Unix() / otpPeriod
	for step := -otpSkew; step <= otpSkew; step++ {
		counter := baseCounter + int64(step)
		if counter < 0 {
			continue
		}
		generated, err := hotpCode(raw, counter)
		if err != nil {
			return false, err
		}
		if subtle.ConstantTimeCompare([]byte(generated), []byte(trimmed)) == 1 {
			return true, nil
		}
	}

	return false, nil
}

func decodeOtpSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, errors.New("empty otp secret")
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return enc.DecodeString(strings.ToUpper(strings.TrimSpace(secret)))
}

func hotpCode(secret []byte, counter int64) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("empty otp secret")
	}
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	mod := 1
	for i := 0; i < otpDigits; i++ {
		mod *= 10
	}

	return fmt.Sprintf("%0*d", otpDigits, bin%mod), nil
}

func isNumericString(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
