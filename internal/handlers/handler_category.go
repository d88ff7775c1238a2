package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

type categoryHandler struct {
	categoryService portssvc.CategorySvcFacade
}

func registerCategoryRoutes(rg *gin.RouterGroup, categoryService portssvc.CategorySvcFacade) {
	h := &categoryHandler{categoryService: categoryService}

	rg.POST("/categories", h.createCategory)
	rg.GET("/categories", h.listCategories)
	rg.GET("/categories/:categoryID", h.getCategory)
	rg.GET("/categories/:categoryID/transactions", h.listCategoryTransactions)
	rg.POST("/transactions/:transactionID/categories", h.linkCategory)
	rg.GET("/transactions/:transactionID/categories", h.listTransactionCategories)
	rg.DELETE("/transactions/:transactionID/categories/:categoryID", h.unlinkCategory)
}

// createCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   category body dto.CreateCategoryRequest true "Category details"
// @Success 201 {object} dto.CategoryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 500 {object} map[string]string "Failed to create category"
// @Security BearerAuth
// @Router /categories [post]
func (h *categoryHandler) createCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	category, err := h.categoryService.CreateCategory(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToCategoryResponse(category))
}

// listCategories godoc
// @Summary List categories
// @Tags categories
// @Produce  json
// @Success 200 {array} dto.CategoryResponse
// @Failure 500 {object} map[string]string "Failed to list categories"
// @Security BearerAuth
// @Router /categories [get]
func (h *categoryHandler) listCategories(c *gin.Context) {
	categories, err := h.categoryService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCategoryResponse(categories))
}

// getCategory godoc
// @Summary Get a category
// @Tags categories
// @Produce  json
// @Param   categoryID path int true "Category ID"
// @Success 200 {object} dto.CategoryResponse
// @Failure 404 {object} map[string]string "Category not found"
// @Failure 500 {object} map[string]string "Failed to retrieve category"
// @Security BearerAuth
// @Router /categories/{categoryID} [get]
func (h *categoryHandler) getCategory(c *gin.Context) {
	categoryID, ok := idParam(c, "categoryID")
	if !ok {
		return
	}
	category, err := h.categoryService.GetCategory(c.Request.Context(), categoryID)
	if err != nil {
		respondError(c, err, "Failed to retrieve category")
		return
	}
	c.JSON(http.StatusOK, dto.ToCategoryResponse(category))
}

// listCategoryTransactions godoc
// @Summary List the transactions tagged with a category
// @Description Newest first, paginated with nextToken.
// @Tags categories
// @Produce  json
// @Param   categoryID path int true "Category ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid page parameters"
// @Failure 404 {object} map[string]string "Category not found"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /categories/{categoryID}/transactions [get]
func (h *categoryHandler) listCategoryTransactions(c *gin.Context) {
	categoryID, ok := idParam(c, "categoryID")
	if !ok {
		return
	}
	var params dto.ListCategoryTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	txns, next, err := h.categoryService.ListCategoryTransactions(c.Request.Context(), categoryID, params)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, next))
}

// linkCategory godoc
// @Summary Link a category to a transaction
// @Tags categories
// @Accept  json
// @Produce  json
// @Param   transactionID path int true "Transaction ID"
// @Param   link body dto.LinkCategoryRequest true "Category to link"
// @Success 201 {object} dto.TransactionCategoryResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Transaction or category not found"
// @Failure 409 {object} map[string]string "Already linked"
// @Failure 500 {object} map[string]string "Failed to link category"
// @Security BearerAuth
// @Router /transactions/{transactionID}/categories [post]
func (h *categoryHandler) linkCategory(c *gin.Context) {
	transactionID, ok := idParam(c, "transactionID")
	if !ok {
		return
	}
	var req dto.LinkCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	link, err := h.categoryService.LinkCategory(c.Request.Context(), transactionID, req.CategoryID)
	if err != nil {
		respondError(c, err, "Failed to link category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransactionCategoryResponse(link))
}

// listTransactionCategories godoc
// @Summary List a transaction's categories
// @Tags categories
// @Produce  json
// @Param   transactionID path int true "Transaction ID"
// @Success 200 {array} dto.CategoryResponse
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to list categories"
// @Security BearerAuth
// @Router /transactions/{transactionID}/categories [get]
func (h *categoryHandler) listTransactionCategories(c *gin.Context) {
	transactionID, ok := idParam(c, "transactionID")
	if !ok {
		return
	}
	categories, err := h.categoryService.ListTransactionCategories(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, err, "Failed to list categories")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCategoryResponse(categories))
}

// unlinkCategory godoc
// @Summary Remove a category from a transaction
// @Tags categories
// @Param   transactionID path int true "Transaction ID"
// @Param   categoryID path int true "Category ID"
// @Success 204 "Unlinked"
// @Failure 404 {object} map[string]string "Link not found"
// @Failure 500 {object} map[string]string "Failed to unlink category"
// @Security BearerAuth
// @Router /transactions/{transactionID}/categories/{categoryID} [delete]
func (h *categoryHandler) unlinkCategory(c *gin.Context) {
	transactionID, ok := idParam(c, "transactionID")
	if !ok {
		return
	}
	categoryID, ok := idParam(c, "categoryID")
	if !ok {
		return
	}
	if err := h.categoryService.UnlinkCategory(c.Request.Context(), transactionID, categoryID); err != nil {
		respondError(c, err, "Failed to unlink category")
		return
	}
	c.Status(http.StatusNoContent)
}
