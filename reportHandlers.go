package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/warungku/pos_backend/models/reports"
)

func dashboardReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		metrics, err := reports.GetDashboardMetrics(c.Request.Context(), warungId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, metrics)
	}
}

func reportDateRange(c *gin.Context) (string, string, bool) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to are required (YYYY-MM-DD)"})
		return "", "", false
	}
	return from, to, true
}

func salesByProductReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		from, to, ok := reportDateRange(c)
		if !ok {
			return
		}
		records, err := reports.GetSalesByProductReport(c.Request.Context(), warungId, from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, records)
	}
}

func salesByProductExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		from, to, ok := reportDateRange(c)
		if !ok {
			return
		}
		records, err := reports.GetSalesByProductReport(c.Request.Context(), warungId, from, to)
		if err != nil {
			respondError(c, err)
			return
		}

		rows := make([]reports.ExcelExporter, len(records))
		for i, record := range records {
			rows[i] = record
		}

		fileName := fmt.Sprintf("sales-by-product-%s.xlsx", time.Now().Format("20060102-150405"))
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)

		headings := []string{"Product Name", "Qty Sold", "Sale Count", "Total Sales"}
		if err := reports.WriteExcel(c.Writer, headings, rows); err != nil {
			_ = c.Error(err)
		}
	}
}
