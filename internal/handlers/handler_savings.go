package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/SscSPs/finex_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// savingsHandler serves the caller's own savings accounts.
type savingsHandler struct {
	savingsService portssvc.SavingsSvcFacade
}

func registerSavingsRoutes(rg *gin.RouterGroup, savingsService portssvc.SavingsSvcFacade) {
	h := &savingsHandler{savingsService: savingsService}

	savings := rg.Group("/savings")
	{
		savings.POST("", h.openSavings)
		savings.GET("", h.listSavings)
		savings.GET("/:savingsID", h.getSavings)
		savings.PATCH("/:savingsID", h.updateSavings)
		savings.DELETE("/:savingsID", h.closeSavings)
		savings.POST("/:savingsID/deposit", h.deposit)
		savings.POST("/:savingsID/withdraw", h.withdraw)
	}
}

// openSavings godoc
// @Summary Open a savings account
// @Description Opens a savings account funded from the caller's current account.
// @Tags savings
// @Accept  json
// @Produce  json
// @Param   savings body dto.OpenSavingsRequest true "Savings details"
// @Success 201 {object} dto.SavingsAccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "No current account"
// @Failure 409 {object} map[string]string "Name already used"
// @Failure 422 {object} map[string]string "Currency mismatch or insufficient funds"
// @Failure 500 {object} map[string]string "Failed to open savings account"
// @Security BearerAuth
// @Router /savings [post]
func (h *savingsHandler) openSavings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req dto.OpenSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Received request to open savings account", slog.String("name", req.Name))

	savings, err := h.savingsService.OpenSavingsAccount(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err, "Failed to open savings account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSavingsAccountResponse(savings))
}

// listSavings godoc
// @Summary List the caller's savings accounts
// @Tags savings
// @Produce  json
// @Param   status query string false "ACTIVE, FROZEN or CLOSED"
// @Param   minBalance query string false "Only accounts with at least this balance"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListSavingsAccountsResponse
// @Failure 400 {object} map[string]string "Invalid filter or page token"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list savings accounts"
// @Security BearerAuth
// @Router /savings [get]
func (h *savingsHandler) listSavings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var params dto.ListSavingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}
	accounts, next, err := h.savingsService.ListSavingsAccounts(c.Request.Context(), userID, params)
	if err != nil {
		respondError(c, err, "Failed to list savings accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListSavingsAccountsResponse(accounts, next))
}

// getSavings godoc
// @Summary Get a savings account
// @Tags savings
// @Produce  json
// @Param   savingsID path int true "Savings account ID"
// @Success 200 {object} dto.SavingsAccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Savings account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve savings account"
// @Security BearerAuth
// @Router /savings/{savingsID} [get]
func (h *savingsHandler) getSavings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	savingsID, ok := idParam(c, "savingsID")
	if !ok {
		return
	}
	savings, err := h.savingsService.GetSavingsAccount(c.Request.Context(), userID, savingsID)
	if err != nil {
		respondError(c, err, "Failed to retrieve savings account")
		return
	}
	c.JSON(http.StatusOK, dto.ToSavingsAccountResponse(savings))
}

// updateSavings godoc
// @Summary Update a savings account
// @Description Renames, changes the interest rate or changes the status. Closing requires a zero balance.
// @Tags savings
// @Accept  json
// @Produce  json
// @Param   savingsID path int true "Savings account ID"
// @Param   savings body dto.UpdateSavingsRequest true "Fields to change"
// @Success 200 {object} dto.SavingsAccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Savings account not found"
// @Failure 409 {object} map[string]string "Name already used or concurrent update"
// @Failure 422 {object} map[string]string "Status transition not allowed"
// @Failure 500 {object} map[string]string "Failed to update savings account"
// @Security BearerAuth
// @Router /savings/{savingsID} [patch]
func (h *savingsHandler) updateSavings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	savingsID, ok := idParam(c, "savingsID")
	if !ok {
		return
	}
	var req dto.UpdateSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	savings, err := h.savingsService.UpdateSavingsAccount(c.Request.Context(), userID, savingsID, req)
	if err != nil {
		respondError(c, err, "Failed to update savings account")
		return
	}
	c.JSON(http.StatusOK, dto.ToSavingsAccountResponse(savings))
}

// closeSavings godoc
// @Summary Close a savings account
// @Description Sets the status to CLOSED. The balance must be zero.
// @Tags savings
// @Produce  json
// @Param   savingsID path int true "Savings account ID"
// @Success 200 {object} dto.SavingsAccountResponse
// @Failure 400 {object} map[string]string "Balance not zero"
// @Failure 404 {object} map[string]string "Savings account not found"
// @Failure 422 {object} map[string]string "Already closed"
// @Failure 500 {object} map[string]string "Failed to close savings account"
// @Security BearerAuth
// @Router /savings/{savingsID} [delete]
func (h *savingsHandler) closeSavings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	savingsID, ok := idParam(c, "savingsID")
	if !ok {
		return
	}
	savings, err := h.savingsService.CloseSavingsAccount(c.Request.Context(), userID, savingsID)
	if err != nil {
		respondError(c, err, "Failed to close savings account")
		return
	}
	c.JSON(http.StatusOK, dto.ToSavingsAccountResponse(savings))
}

// deposit godoc
// @Summary Move money into savings
// @Tags savings
// @Accept  json
// @Produce  json
// @Param   savingsID path int true "Savings account ID"
// @Param   movement body dto.SavingsMovementRequest true "Movement details"
// @Success 201 {object} dto.SavingsMovementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Ownership or currency mismatch, insufficient funds, inactive account"
// @Failure 500 {object} map[string]string "Failed to deposit"
// @Security BearerAuth
// @Router /savings/{savingsID}/deposit [post]
func (h *savingsHandler) deposit(c *gin.Context) {
	h.move(c, h.savingsService.DepositFromCurrent, "Failed to deposit")
}

// withdraw godoc
// @Summary Move money out of savings
// @Tags savings
// @Accept  json
// @Produce  json
// @Param   savingsID path int true "Savings account ID"
// @Param   movement body dto.SavingsMovementRequest true "Movement details"
// @Success 201 {object} dto.SavingsMovementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Ownership or currency mismatch, insufficient funds, inactive account"
// @Failure 500 {object} map[string]string "Failed to withdraw"
// @Security BearerAuth
// @Router /savings/{savingsID}/withdraw [post]
func (h *savingsHandler) withdraw(c *gin.Context) {
	h.move(c, h.savingsService.WithdrawToCurrent, "Failed to withdraw")
}

type movementFunc func(ctx context.Context, userID, savingsID int64, req dto.SavingsMovementRequest) (*domain.SavingsMovementResult, error)

func (h *savingsHandler) move(c *gin.Context, fn movementFunc, fallbackMsg string) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	savingsID, ok := idParam(c, "savingsID")
	if !ok {
		return
	}
	var req dto.SavingsMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Received savings movement request",
		slog.Int64("savings_id", savingsID), slog.Int64("current_account_id", req.CurrentAccountID))

	result, err := fn(c.Request.Context(), userID, savingsID, req)
	if err != nil {
		respondError(c, err, fallbackMsg)
		return
	}
	c.JSON(http.StatusCreated, dto.ToSavingsMovementResponse(result))
}
