package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/finex_ledger/internal/core/ports/services"
	"github.com/SscSPs/finex_ledger/internal/dto"
	"github.com/SscSPs/finex_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles postings and transfers.
type ledgerHandler struct {
	posting  portssvc.PostingSvc
	transfer portssvc.TransferSvc
	accounts portssvc.AccountReaderSvc
}

func newLedgerHandler(posting portssvc.PostingSvc, transfer portssvc.TransferSvc, accounts portssvc.AccountReaderSvc) *ledgerHandler {
	return &ledgerHandler{posting: posting, transfer: transfer, accounts: accounts}
}

func registerLedgerRoutes(rg *gin.RouterGroup, posting portssvc.PostingSvc, transfer portssvc.TransferSvc, accounts portssvc.AccountReaderSvc) {
	h := newLedgerHandler(posting, transfer, accounts)

	rg.POST("/transactions", h.postTransaction)
	rg.GET("/transactions/:transactionID", h.getTransaction)
	rg.POST("/transfers", h.createTransfer)
}

// postTransaction godoc
// @Summary Post a transaction
// @Description Applies one INCOME or OUTCOME (or a manual TRANSFER_IN/TRANSFER_OUT) to an account
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   transaction body dto.PostTransactionRequest true "Posting details"
// @Success 201 {object} dto.PostTransactionResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown transaction type"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Currency mismatch, insufficient funds or inactive account"
// @Failure 500 {object} map[string]string "Failed to post transaction"
// @Security BearerAuth
// @Router /transactions [post]
func (h *ledgerHandler) postTransaction(c *gin.Context) {
	var req dto.PostTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to post transaction", slog.Int64("account_id", req.AccountID), slog.String("type", req.Type))

	result, err := h.posting.PostTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to post transaction")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPostTransactionResponse(result))
}

// getTransaction godoc
// @Summary Get a transaction
// @Tags transactions
// @Produce  json
// @Param   transactionID path int true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse
// @Failure 400 {object} map[string]string "Invalid transaction ID"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 500 {object} map[string]string "Failed to retrieve transaction"
// @Security BearerAuth
// @Router /transactions/{transactionID} [get]
func (h *ledgerHandler) getTransaction(c *gin.Context) {
	transactionID, ok := idParam(c, "transactionID")
	if !ok {
		return
	}
	txn, err := h.accounts.GetTransactionByID(c.Request.Context(), transactionID)
	if err != nil {
		respondError(c, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(*txn))
}

// createTransfer godoc
// @Summary Transfer between accounts
// @Description Debits the source and credits the destination atomically. Category links are applied to both legs after commit; a failure to queue them is reported in categoryLinkError.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.TransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 422 {object} map[string]string "Self transfer, currency mismatch or insufficient funds"
// @Failure 500 {object} map[string]string "Failed to transfer"
// @Security BearerAuth
// @Router /transfers [post]
func (h *ledgerHandler) createTransfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to transfer",
		slog.Int64("from_account_id", req.FromAccountID),
		slog.Int64("to_account_id", req.ToAccountID))

	result, err := h.transfer.Transfer(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to transfer")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransferResponse(result))
}
