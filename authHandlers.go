package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warungku/pos_backend/models"
)

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		user, err := models.Register(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		info, err := models.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.Logout(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": ok})
	}
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

func changePasswordHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		user, err := models.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func sendEmailVerificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.SendEmailVerification(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": ok})
	}
}

type codeRequest struct {
	Code string `json:"code" binding:"required"`
}

func confirmEmailVerificationHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req codeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		user, err := models.ConfirmEmailVerification(c.Request.Context(), req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

/* MFA lifecycle */

func mfaStatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := models.GetMfaStatus(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}

func generateMfaSecretHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		enrollment, err := models.GenerateMfaSecret(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, enrollment)
	}
}

type enableMfaRequest struct {
	Token string `json:"token" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

func enableMfaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req enableMfaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		backupCodes, err := models.EnableMfa(c.Request.Context(), req.Token, req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		// backup codes are shown exactly once
		c.JSON(http.StatusOK, gin.H{"backup_codes": backupCodes})
	}
}

func disableMfaHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := models.DisableMfa(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": ok})
	}
}

/* pending MFA login ceremony */

type mfaTokenRequest struct {
	MfaToken string `json:"mfa_token" binding:"required"`
}

func sendLoginCodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mfaTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		ok, err := models.SendLoginCode(c.Request.Context(), req.MfaToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": ok})
	}
}

type mfaCodeRequest struct {
	MfaToken string `json:"mfa_token" binding:"required"`
	Code     string `json:"code" binding:"required"`
}

func verifyLoginCodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mfaCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		info, err := models.VerifyLoginCode(c.Request.Context(), req.MfaToken, req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}

func useBackupCodeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req mfaCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		info, err := models.UseBackupCode(c.Request.Context(), req.MfaToken, req.Code)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, info)
	}
}
