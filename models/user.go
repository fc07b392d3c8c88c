package models

import (
	"context"
	"errors"
	"html"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warungku/pos_backend/config"
	"github.com/warungku/pos_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID              int        `gorm:"primary_key" json:"id"`
	Username        string     `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name            string     `gorm:"size:100;not null" json:"name" binding:"required"`
	Email           string     `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Password        string     `gorm:"size:255;not null" json:"password"`
	IsActive        *bool      `gorm:"not null;default:true" json:"is_active"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	MfaEnabled      *bool      `gorm:"not null;default:false" json:"mfa_enabled"`
	MfaSecret       string     `gorm:"size:64" json:"-"`
	MfaBackupCodes  string     `gorm:"type:text" json:"-"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInfo struct {
	Token       string `json:"token,omitempty"`
	Name        string `json:"name"`
	MfaRequired bool   `json:"mfa_required"`
	MfaToken    string `json:"mfa_token,omitempty"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func (user User) HasMfaEnabled() bool {
	return user.MfaEnabled != nil && *user.MfaEnabled && user.MfaSecret != ""
}

// current session user, loaded from db
func currentUser(ctx context.Context) (*User, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok || userId == 0 {
		return nil, utils.ErrorUnauthenticated
	}
	return utils.FetchSingleModel[User](ctx, userId)
}

func Register(ctx context.Context, input *NewUser) (*User, error) {

	db := config.GetDB()
	var count int64

	if !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}
	input.Email = strings.ToLower(input.Email)

	err := db.WithContext(ctx).Model(&User{}).
		Where("username = ?", input.Username).Or("email = ?", input.Email).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.ErrorDuplicate
	}

	hashedPassword, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: html.EscapeString(strings.TrimSpace(input.Username)),
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashedPassword),
		IsActive: utils.NewTrue(),
	}

	err = db.WithContext(ctx).Create(&user).Error
	if err != nil {
		if IsDuplicateEntryError(err) {
			return nil, utils.ErrorDuplicate
		}
		return nil, err
	}

	// verification mail failure must not lose the registration
	if err := sendEmailVerification(ctx, &user); err != nil {
		config.LogError(config.GetLogger(), "models", "Register", "Could not send verification mail", user.Username, err)
	}

	user.PrepareGive()
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	var user User

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error
	if err != nil {
		return nil, errors.New("invalid username or password")
	}

	err = utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return nil, errors.New("invalid username or password")
	}

	if user.IsActive == nil || !*user.IsActive {
		return nil, errors.New("user is disabled")
	}

	// MFA holds the session back until a code or backup code is presented
	if user.HasMfaEnabled() {
		mfaToken := uuid.NewString()
		if err := config.SetRedisValue("MfaLogin:"+mfaToken, user.Username, 10*time.Minute); err != nil {
			return nil, err
		}
		if err := sendLoginCodeMail(&user); err != nil {
			config.LogError(config.GetLogger(), "models", "Login", "Could not send login code", user.Username, err)
		}
		return &LoginInfo{
			Name:        user.Username,
			MfaRequired: true,
			MfaToken:    mfaToken,
		}, nil
	}

	return issueSession(&user)
}

// issueSession creates the redis-backed session token for a fully
// authenticated user.
func issueSession(user *User) (*LoginInfo, error) {

	token := uuid.New()

	tokenLifespan, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil {
		tokenLifespan = 24
	}

	// add new token to the user's tokens set
	if err := config.AddRedisSet("Tokens:"+user.Username, token.String()); err != nil {
		return nil, err
	}
	if err := config.SetRedisValue("Token:"+token.String(), user.Username, time.Duration(tokenLifespan)*time.Hour); err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token: token.String(),
		Name:  user.Username,
	}, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + token); err != nil {
		return false, err
	}
	// remove current token from tokens list
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

func (user *User) DestroyAllSessions() error {
	allTokens, err := config.GetRedisSetMembers("Tokens:" + user.Username)
	if err != nil {
		return err
	}
	for _, token := range allTokens {
		if err := config.RemoveRedisKey("Token:" + token); err != nil {
			return err
		}
	}
	if err := config.RemoveRedisKey("Tokens:" + user.Username); err != nil {
		return err
	}

	return nil
}

func ChangePassword(ctx context.Context, oldPassword string, newPassword string) (*User, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	// check oldPassword
	if err := utils.ComparePassword(user.Password, oldPassword); err != nil {
		return nil, errors.New("old password is wrong")
	}

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).
		UpdateColumn("password", string(hashedPassword)).Error; err != nil {
		return nil, err
	}

	// destroying all session tokens
	if err := user.DestroyAllSessions(); err != nil {
		return nil, err
	}

	user.PrepareGive()
	return user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {

	db := config.GetDB()
	var result User

	err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&result).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &result, nil
}

/* email verification */

func sendEmailVerification(ctx context.Context, user *User) error {
	secret, err := utils.GenerateOtpSecret()
	if err != nil {
		return err
	}
	if err := config.SetRedisValue("EmailVerify:"+user.Username, secret, 10*time.Minute); err != nil {
		return err
	}
	code, err := utils.DeriveOtpCode(secret, time.Now())
	if err != nil {
		return err
	}
	body := "Your WarungKu verification code is " + code + ". It expires in 10 minutes."
	return config.SendMail(user.Email, "Verify your email", body)
}

func SendEmailVerification(ctx context.Context) (bool, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return false, err
	}
	if user.EmailVerifiedAt != nil {
		return true, nil
	}
	if err := sendEmailVerification(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

func ConfirmEmailVerification(ctx context.Context, code string) (*User, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user.EmailVerifiedAt != nil {
		return user, nil
	}

	secret, exists, err := config.GetRedisValue("EmailVerify:" + user.Username)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, utils.ErrorPreconditionFailed
	}

	ok, err := utils.VerifyOtpCode(secret, code, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, utils.ErrorInvalidCode
	}

	now := time.Now()
	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).
		UpdateColumn("email_verified_at", &now).Error; err != nil {
		return nil, err
	}
	if err := config.RemoveRedisKey("EmailVerify:" + user.Username); err != nil {
		return nil, err
	}

	user.PrepareGive()
	return user, nil
}
