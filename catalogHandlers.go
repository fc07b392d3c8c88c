package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/warungku/pos_backend/models"
	"github.com/warungku/pos_backend/utils"
)

/* categories */

func createCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		var input models.NewProductCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		category, err := models.CreateProductCategory(c.Request.Context(), warungId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, category)
	}
}

func listCategoriesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		categories, err := models.GetProductCategories(c.Request.Context(), warungId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, categories)
	}
}

func updateCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		var input models.NewProductCategory
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		category, err := models.UpdateProductCategory(c.Request.Context(), warungId, id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

func deleteCategoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		category, err := models.DeleteProductCategory(c.Request.Context(), warungId, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

/* products */

func createProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		product, err := models.CreateProduct(c.Request.Context(), warungId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

func listProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		var categoryId *int
		if v := c.Query("category_id"); v != "" {
			if n, err := parseIntQuery(v); err == nil {
				categoryId = utils.NilIfEmpty(n)
			}
		}
		products, err := models.GetProducts(c.Request.Context(), warungId, c.Query("search"), categoryId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func lowStockProductsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		products, err := models.GetLowStockProducts(c.Request.Context(), warungId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
	}
}

func getProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		product, err := models.GetProduct(c.Request.Context(), warungId, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func updateProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		var input models.NewProduct
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		product, err := models.UpdateProduct(c.Request.Context(), warungId, id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

func deleteProductHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		product, err := models.DeleteProduct(c.Request.Context(), warungId, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

/* customers */

func createCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		customer, err := models.CreateCustomer(c.Request.Context(), warungId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

func listCustomersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		customers, err := models.GetCustomers(c.Request.Context(), warungId, c.Query("search"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customers)
	}
}

func getCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		customer, err := models.GetCustomer(c.Request.Context(), warungId, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func updateCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		var input models.NewCustomer
		if err := c.ShouldBindJSON(&input); err != nil {
			respondError(c, err)
			return
		}
		customer, err := models.UpdateCustomer(c.Request.Context(), warungId, id, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func deleteCustomerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		warungId, ok := paramInt(c, "warungId")
		if !ok {
			return
		}
		id, ok := paramInt(c, "id")
		if !ok {
			return
		}
		customer, err := models.DeleteCustomer(c.Request.Context(), warungId, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}
