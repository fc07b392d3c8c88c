package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warungku/pos_backend/models"
	"github.com/warungku/pos_backend/utils"
)

func createWarungHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewWarung
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		warung, err := models.CreateWarung(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, warung)
	}
}

func listWarungsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungs, err := models.GetAllWarungs(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, warungs)
	}
}

func getWarungHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		warung, err := models.GetWarung(c.Request.Context(), warungId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, warung)
	}
}

func updateWarungHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		var input models.NewWarung
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		warung, err := models.UpdateWarung(c.Request.Context(), warungId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, warung)
	}
}

type toggleActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

func toggleActiveWarungHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		var req toggleActiveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
		warung, err := models.ToggleActiveWarung(c.Request.Context(), warungId, utils.DereferencePtr(req.IsActive))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, warung)
	}
}

func listActivitiesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		limit := 20
		if v := c.Query("limit"); v != "" {
			if n, err := parseIntQuery(v); err == nil {
				limit = n
			}
		}
		activities, err := models.GetRecentActivities(c.Request.Context(), warungId, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, activities)
	}
}
