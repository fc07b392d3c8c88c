package models_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/models"
	"github.com/warungku/pos_backend/utils"
)

// Exercises the full MFA lifecycle against real redis+mysql. Mail delivery
// is not configured in tests, so the pending secret is parked in redis
// directly, exactly where GenerateMfaSecret would put it.
func TestMfaEnableLoginAndBackupCodeFlow(t *testing.T) {
	ctx, _ := setupWarungTestEnv(t, "owner-mfa")

	db := config.GetDB()
	user, err := models.GetUserByUsername(ctx, "owner-mfa")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	now := time.Now()
	if err := db.Model(&models.User{}).Where("id = ?", user.ID).
		UpdateColumn("email_verified_at", &now).Error; err != nil {
		t.Fatalf("mark email verified: %v", err)
	}

	secret, err := utils.GenerateOtpSecret()
	if err != nil {
		t.Fatalf("GenerateOtpSecret: %v", err)
	}
	enrollToken := uuid.NewString()
	if err := config.SetRedisValue("MfaPending:"+enrollToken, secret, 10*time.Minute); err != nil {
		t.Fatalf("park pending secret: %v", err)
	}

	correctCode, err := utils.DeriveOtpCode(secret, time.Now())
	if err != nil {
		t.Fatalf("DeriveOtpCode: %v", err)
	}
	wrongCode := "000000"
	if wrongCode == correctCode {
		wrongCode = "000001"
	}

	// wrong code leaves the enrollment pending
	if _, err := models.EnableMfa(ctx, enrollToken, wrongCode); !errors.Is(err, utils.ErrorInvalidCode) {
		t.Fatalf("EnableMfa wrong code: got %v, want ErrorInvalidCode", err)
	}

	backupCodes, err := models.EnableMfa(ctx, enrollToken, correctCode)
	if err != nil {
		t.Fatalf("EnableMfa: %v", err)
	}
	if len(backupCodes) != 8 {
		t.Fatalf("backup codes: got %d, want 8", len(backupCodes))
	}

	status, err := models.GetMfaStatus(ctx)
	if err != nil {
		t.Fatalf("GetMfaStatus: %v", err)
	}
	if !status.Enabled || status.BackupCodesLeft != 8 {
		t.Fatalf("status after enable: %+v", status)
	}

	// login is now held back until a code is presented
	info, err := models.Login(ctx, "owner-mfa", "secretpw123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !info.MfaRequired || info.MfaToken == "" {
		t.Fatalf("login with MFA enabled must return a pending token, got %+v", info)
	}
	if info.Token != "" {
		t.Fatal("no session token may be issued before the code is verified")
	}

	enabled, err := models.GetUserByUsername(ctx, "owner-mfa")
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	loginCode, err := utils.DeriveOtpCode(enabled.MfaSecret, time.Now())
	if err != nil {
		t.Fatalf("derive login code: %v", err)
	}
	session, err := models.VerifyLoginCode(ctx, info.MfaToken, loginCode)
	if err != nil {
		t.Fatalf("VerifyLoginCode: %v", err)
	}
	if session.Token == "" {
		t.Fatal("verified login must carry a session token")
	}

	// the pending token is consumed with the session
	if _, err := models.VerifyLoginCode(ctx, info.MfaToken, loginCode); !errors.Is(err, utils.ErrorPreconditionFailed) {
		t.Fatalf("reused mfa token: got %v, want ErrorPreconditionFailed", err)
	}

	// a backup code works exactly once
	info2, err := models.Login(ctx, "owner-mfa", "secretpw123")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	session2, err := models.UseBackupCode(ctx, info2.MfaToken, backupCodes[0])
	if err != nil {
		t.Fatalf("UseBackupCode: %v", err)
	}
	if session2.Token == "" {
		t.Fatal("backup code login must carry a session token")
	}

	status, err = models.GetMfaStatus(ctx)
	if err != nil {
		t.Fatalf("GetMfaStatus after backup use: %v", err)
	}
	if status.BackupCodesLeft != 7 {
		t.Fatalf("backup codes left: got %d, want 7", status.BackupCodesLeft)
	}

	info3, err := models.Login(ctx, "owner-mfa", "secretpw123")
	if err != nil {
		t.Fatalf("third Login: %v", err)
	}
	if _, err := models.UseBackupCode(ctx, info3.MfaToken, backupCodes[0]); !errors.Is(err, utils.ErrorInvalidCode) {
		t.Fatalf("spent backup code: got %v, want ErrorInvalidCode", err)
	}

	// disable clears everything; plain login works again
	if _, err := models.DisableMfa(ctx); err != nil {
		t.Fatalf("DisableMfa: %v", err)
	}
	plain, err := models.Login(ctx, "owner-mfa", "secretpw123")
	if err != nil {
		t.Fatalf("Login after disable: %v", err)
	}
	if plain.MfaRequired || plain.Token == "" {
		t.Fatalf("login after disable must issue a session directly, got %+v", plain)
	}
}
