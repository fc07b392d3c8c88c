package models

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
)

// MFA lifecycle. The shared secret only ever lives in two places: redis
// while an enrollment is pending (MfaPending:<token>, 10 minute TTL) and the
// user row once enabled. Invariant after every operation here:
// mfa_enabled is true exactly when mfa_secret is non-empty, and a disabled
// user holds no backup codes.

const (
	mfaPendingLifespan = 10 * time.Minute
	backupCodeCount    = 8
	backupCodeLength   = 6
)

const backupCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type MfaStatus struct {
	Enabled         bool `json:"enabled"`
	BackupCodesLeft int  `json:"backup_codes_left"`
}

type MfaEnrollment struct {
	Token string `json:"token"`
}

func GetMfaStatus(ctx context.Context) (*MfaStatus, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	status := MfaStatus{Enabled: user.HasMfaEnabled()}
	if status.Enabled && user.MfaBackupCodes != "" {
		var codes []string
		if err := json.Unmarshal([]byte(user.MfaBackupCodes), &codes); err == nil {
			status.BackupCodesLeft = len(codes)
		}
	}
	return &status, nil
}

// GenerateMfaSecret starts an enrollment: a fresh secret is parked in redis
// under an opaque token and its current code is mailed to the user. Nothing
// touches the user row until EnableMfa succeeds.
func GenerateMfaSecret(ctx context.Context) (*MfaEnrollment, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user.EmailVerifiedAt == nil {
		return nil, utils.ErrorPreconditionFailed
	}

	secret, err := utils.GenerateOtpSecret()
	if err != nil {
		return nil, err
	}

	token := uuid.NewString()
	if err := config.SetRedisValue("MfaPending:"+token, secret, mfaPendingLifespan); err != nil {
		return nil, err
	}

	code, err := utils.DeriveOtpCode(secret, time.Now())
	if err != nil {
		return nil, err
	}
	body := "Your WarungKu security code is " + code + ". It expires in 10 minutes."
	if err := config.SendMail(user.Email, "Enable two-factor authentication", body); err != nil {
		return nil, err
	}

	return &MfaEnrollment{Token: token}, nil
}

// EnableMfa confirms the pending enrollment. On a wrong code one fresh code
// is mailed from the same pending secret so the user can retry within the
// TTL. On success the secret, the enabled flag and the backup codes land on
// the user row in a single write, and the backup codes are returned exactly
// once.
func EnableMfa(ctx context.Context, token string, code string) ([]string, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	secret, exists, err := config.GetRedisValue("MfaPending:" + token)
	if err != nil {
		return nil, err
	}
	if !exists || secret == "" {
		return nil, utils.ErrorPreconditionFailed
	}

	ok, err := utils.VerifyOtpCode(secret, code, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		freshCode, err := utils.DeriveOtpCode(secret, time.Now())
		if err == nil {
			body := "Your WarungKu security code is " + freshCode + ". It expires in 10 minutes."
			if err := config.SendMail(user.Email, "Enable two-factor authentication", body); err != nil {
				config.LogError(config.GetLogger(), "models", "EnableMfa", "Could not resend security code", user.Username, err)
			}
		}
		return nil, utils.ErrorInvalidCode
	}

	backupCodes, err := generateBackupCodes()
	if err != nil {
		return nil, err
	}
	codesJSON, err := json.Marshal(backupCodes)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"mfa_enabled":      true,
		"mfa_secret":       secret,
		"mfa_backup_codes": string(codesJSON),
	}).Error; err != nil {
		return nil, err
	}

	if err := config.RemoveRedisKey("MfaPending:" + token); err != nil {
		config.LogError(config.GetLogger(), "models", "EnableMfa", "Could not drop pending secret", user.Username, err)
	}

	return backupCodes, nil
}

// DisableMfa clears everything unconditionally; calling it on an already
// disabled user is a no-op.
func DisableMfa(ctx context.Context) (bool, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return false, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"mfa_enabled":      false,
		"mfa_secret":       "",
		"mfa_backup_codes": "",
	}).Error; err != nil {
		return false, err
	}
	return true, nil
}

func sendLoginCodeMail(user *User) error {
	if !user.HasMfaEnabled() {
		return utils.ErrorNotConfigured
	}
	code, err := utils.DeriveOtpCode(user.MfaSecret, time.Now())
	if err != nil {
		return err
	}
	body := "Your WarungKu login code is " + code + ". It expires in 10 minutes."
	return config.SendMail(user.Email, "Your login code", body)
}

// resolveMfaLogin maps a pending login token back to its user.
func resolveMfaLogin(ctx context.Context, mfaToken string) (*User, error) {
	username, exists, err := config.GetRedisValue("MfaLogin:" + mfaToken)
	if err != nil {
		return nil, err
	}
	if !exists || username == "" {
		return nil, utils.ErrorPreconditionFailed
	}
	return GetUserByUsername(ctx, username)
}

// SendLoginCode re-mails the current code during a pending MFA login.
func SendLoginCode(ctx context.Context, mfaToken string) (bool, error) {
	user, err := resolveMfaLogin(ctx, mfaToken)
	if err != nil {
		return false, err
	}
	if err := sendLoginCodeMail(user); err != nil {
		return false, err
	}
	return true, nil
}

// VerifyLoginCode completes a pending MFA login with an emailed code.
func VerifyLoginCode(ctx context.Context, mfaToken string, code string) (*LoginInfo, error) {
	user, err := resolveMfaLogin(ctx, mfaToken)
	if err != nil {
		return nil, err
	}
	if !user.HasMfaEnabled() {
		return nil, utils.ErrorNotConfigured
	}

	ok, err := utils.VerifyOtpCode(user.MfaSecret, code, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.ErrorInvalidCode
	}

	if err := config.RemoveRedisKey("MfaLogin:" + mfaToken); err != nil {
		return nil, err
	}
	return issueSession(user)
}

// UseBackupCode completes a pending MFA login by consuming one backup code.
// A code works exactly once; the match is removed in the same write.
func UseBackupCode(ctx context.Context, mfaToken string, code string) (*LoginInfo, error) {
	user, err := resolveMfaLogin(ctx, mfaToken)
	if err != nil {
		return nil, err
	}
	if !user.HasMfaEnabled() {
		return nil, utils.ErrorNotConfigured
	}

	var codes []string
	if user.MfaBackupCodes != "" {
		if err := json.Unmarshal([]byte(user.MfaBackupCodes), &codes); err != nil {
			return nil, err
		}
	}

	submitted := strings.ToUpper(strings.TrimSpace(code))
	matched := -1
	for i, c := range codes {
		if c == submitted {
			matched = i
			break
		}
	}
	if matched < 0 {
		return nil, utils.ErrorInvalidCode
	}

	remaining := append(codes[:matched], codes[matched+1:]...)
	remainingJSON, err := json.Marshal(remaining)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).
		UpdateColumn("mfa_backup_codes", string(remainingJSON)).Error; err != nil {
		return nil, err
	}

	if err := config.RemoveRedisKey("MfaLogin:" + mfaToken); err != nil {
		return nil, err
	}
	return issueSession(user)
}

func generateBackupCodes() ([]string, error) {
	codes := make([]string, 0, backupCodeCount)
	for i := 0; i < backupCodeCount; i++ {
		var sb strings.Builder
		for j := 0; j < backupCodeLength; j++ {
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(backupCodeCharset))))
			if err != nil {
				return nil, err
			}
			sb.WriteByte(backupCodeCharset[n.Int64()])
		}
		codes = append(codes, sb.String())
	}
	return codes, nil
}
