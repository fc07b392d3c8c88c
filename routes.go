package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/warungku/pos_backend/middlewares"
	"github.com/warungku/pos_backend/utils"
)

func registerRoutes(r *gin.Engine) {

	auth := r.Group("/auth")
	{
		auth.POST("/register", registerHandler())
		auth.POST("/login", loginHandler())
		// pending MFA login ceremony (mfa_token from /login)
		auth.POST("/mfa/send-code", sendLoginCodeHandler())
		auth.POST("/mfa/verify-code", verifyLoginCodeHandler())
		auth.POST("/mfa/backup-code", useBackupCodeHandler())

		session := auth.Group("", middlewares.RequireSession())
		{
			session.POST("/logout", logoutHandler())
			session.POST("/change-password", changePasswordHandler())
			session.POST("/email-verification/send", sendEmailVerificationHandler())
			session.POST("/email-verification/confirm", confirmEmailVerificationHandler())

			session.GET("/mfa", mfaStatusHandler())
			session.POST("/mfa/generate", generateMfaSecretHandler())
			session.POST("/mfa/enable", enableMfaHandler())
			session.POST("/mfa/disable", disableMfaHandler())
		}
	}

	warungs := r.Group("/warungs", middlewares.RequireSession())
	{
		warungs.POST("", createWarungHandler())
		warungs.GET("", listWarungsHandler())
		warungs.GET("/:warungId", getWarungHandler())
		warungs.PUT("/:warungId", updateWarungHandler())
		warungs.POST("/:warungId/toggle-active", toggleActiveWarungHandler())

		warungs.POST("/:warungId/categories", createCategoryHandler())
		warungs.GET("/:warungId/categories", listCategoriesHandler())
		warungs.PUT("/:warungId/categories/:id", updateCategoryHandler())
		warungs.DELETE("/:warungId/categories/:id", deleteCategoryHandler())

		warungs.POST("/:warungId/products", createProductHandler())
		warungs.GET("/:warungId/products", listProductsHandler())
		warungs.GET("/:warungId/products/low-stock", lowStockProductsHandler())
		warungs.GET("/:warungId/products/:id", getProductHandler())
		warungs.PUT("/:warungId/products/:id", updateProductHandler())
		warungs.DELETE("/:warungId/products/:id", deleteProductHandler())

		warungs.POST("/:warungId/customers", createCustomerHandler())
		warungs.GET("/:warungId/customers", listCustomersHandler())
		warungs.GET("/:warungId/customers/:id", getCustomerHandler())
		warungs.PUT("/:warungId/customers/:id", updateCustomerHandler())
		warungs.DELETE("/:warungId/customers/:id", deleteCustomerHandler())

		warungs.POST("/:warungId/sales", createSaleHandler())
		warungs.GET("/:warungId/sales", listSalesHandler())
		warungs.GET("/:warungId/sales/:id", getSaleHandler())
		warungs.POST("/:warungId/sales/:id/mark-paid", markSaleAsPaidHandler())

		warungs.GET("/:warungId/activities", listActivitiesHandler())

		warungs.GET("/:warungId/reports/dashboard", dashboardReportHandler())
		warungs.GET("/:warungId/reports/sales-by-product", salesByProductReportHandler())
		warungs.GET("/:warungId/reports/sales-by-product/export", salesByProductExportHandler())
	}
}

// respondError maps the error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}

	switch {
	case errors.Is(err, utils.ErrorUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorPreconditionFailed),
		errors.Is(err, utils.ErrorInvalidCode),
		errors.Is(err, utils.ErrorNotConfigured),
		errors.Is(err, utils.ErrorInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func parseIntQuery(v string) (int, error) {
	return strconv.Atoi(v)
}

func paramInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " is invalid"})
		return 0, false
	}
	return v, true
}
