package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts/:accountID")
	{
		accounts.GET("", h.getAccount)
		accounts.PATCH("/status", h.updateAccountStatus)
		accounts.GET("/transactions", h.listTransactions)
		accounts.GET("/balance-history", h.listBalanceHistory)
		accounts.GET("/reconciliation", h.reconcileAccount)
	}
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path int true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid account ID"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	accountID, ok := idParam(c, "accountID")
	if !ok {
		return
	}
	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccountStatus godoc
// @Summary Change an account's status
// @Description Moves an account between ACTIVE, BLOCKED, FROZEN and CLOSED. CLOSED is terminal.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path int true "Account ID"
// @Param   status body dto.UpdateAccountStatusRequest true "New status"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Transition not allowed"
// @Failure 500 {object} map[string]string "Failed to update account status"
// @Security BearerAuth
// @Router /accounts/{accountID}/status [patch]
func (h *accountHandler) updateAccountStatus(c *gin.Context) {
	accountID, ok := idParam(c, "accountID")
	if !ok {
		return
	}
	var req dto.UpdateAccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Received request to update account status",
		slog.Int64("account_id", accountID), slog.String("status", string(req.Status)))

	account, err := h.accountService.UpdateAccountStatus(c.Request.Context(), accountID, req)
	if err != nil {
		respondError(c, err, "Failed to update account status")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listTransactions godoc
// @Summary List an account's transactions
// @Description Newest first, paginated with an opaque nextToken.
// @Tags accounts
// @Produce  json
// @Param   accountID path int true "Account ID"
// @Param   limit query int false "Page size (1-100)" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Param   type query string false "INCOME, OUTCOME, TRANSFER_IN or TRANSFER_OUT"
// @Param   from query string false "RFC3339 lower bound on creation time"
// @Param   to query string false "RFC3339 upper bound on creation time"
// @Success 200 {object} dto.ListTransactionsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list transactions"
// @Security BearerAuth
// @Router /accounts/{accountID}/transactions [get]
func (h *accountHandler) listTransactions(c *gin.Context) {
	accountID, ok := idParam(c, "accountID")
	if !ok {
		return
	}
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	txns, next, err := h.accountService.ListTransactions(c.Request.Context(), accountID, params)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransactionsResponse(txns, next))
}

// listBalanceHistory godoc
// @Summary List an account's balance journal
// @Description Oldest first, paginated with an opaque nextToken.
// @Tags accounts
// @Produce  json
// @Param   accountID path int true "Account ID"
// @Param   limit query int false "Page size (1-100)" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Param   from query string false "RFC3339 lower bound on creation time"
// @Param   to query string false "RFC3339 upper bound on creation time"
// @Success 200 {object} dto.ListBalanceHistoryResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list balance history"
// @Security BearerAuth
// @Router /accounts/{accountID}/balance-history [get]
func (h *accountHandler) listBalanceHistory(c *gin.Context) {
	accountID, ok := idParam(c, "accountID")
	if !ok {
		return
	}
	var params dto.ListBalanceHistoryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err)
		return
	}

	entries, next, err := h.accountService.ListBalanceHistory(c.Request.Context(), accountID, params)
	if err != nil {
		respondError(c, err, "Failed to list balance history")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBalanceHistoryResponse(entries, next))
}

// reconcileAccount godoc
// @Summary Reconcile an account
// @Description Rebuilds the balance from the transaction trail and compares it with the stored balance and the latest journal entry.
// @Tags accounts
// @Produce  json
// @Param   accountID path int true "Account ID"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid account ID"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to reconcile account"
// @Security BearerAuth
// @Router /accounts/{accountID}/reconciliation [get]
func (h *accountHandler) reconcileAccount(c *gin.Context) {
	accountID, ok := idParam(c, "accountID")
	if !ok {
		return
	}
	report, err := h.accountService.ReconcileAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to reconcile account")
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(report))
}
