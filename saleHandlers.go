package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warungku/pos_backend/models"
)

func createSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		var input models.NewSale
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		sale, err := models.CreateSale(c.Request.Context(), warungId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sale)
	}
}

// listSalesHandler dispatches on query params:
// receipt= substring search, date= sales for a local day, is_paid= filter by settlement.
func listSalesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}

		ctx := c.Request.Context()
		switch {
		case c.Query("receipt") != "":
			sales, err := models.SearchSalesByReceipt(ctx, warungId, c.Query("receipt"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, sales)
		case c.Query("date") != "":
			sales, err := models.GetSalesByDate(ctx, warungId, c.Query("date"))
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, sales)
		default:
			isPaid := c.Query("is_paid") != "false"
			sales, err := models.GetSalesByPaidStatus(ctx, warungId, isPaid)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, sales)
		}
	}
}

func getSaleHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		sale, err := models.GetSale(c.Request.Context(), warungId, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}

func markSaleAsPaidHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		sale, err := models.MarkSaleAsPaid(c.Request.Context(), warungId, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, sale)
	}
}
