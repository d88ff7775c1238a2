package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/finex_ledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// ledgerEvents names the analytics event for each successful ledger mutation,
// keyed by method and route template.
var ledgerEvents = map[string]string{
	"POST /api/v1/transactions":                                         "transaction_posted",
	"POST /api/v1/transfers":                                            "transfer_completed",
	"PATCH /api/v1/accounts/:accountID/status":                          "account_status_changed",
	"POST /api/v1/savings":                                              "savings_opened",
	"PATCH /api/v1/savings/:savingsID":                                  "savings_updated",
	"DELETE /api/v1/savings/:savingsID":                                 "savings_closed",
	"POST /api/v1/savings/:savingsID/deposit":                           "savings_deposit",
	"POST /api/v1/savings/:savingsID/withdraw":                          "savings_withdraw",
	"POST /api/v1/categories":                                           "category_created",
	"POST /api/v1/transactions/:transactionID/categories":               "category_linked",
	"DELETE /api/v1/transactions/:transactionID/categories/:categoryID": "category_unlinked",
}

// ledgerEventName returns the event for a route, or "" for reads and unknown routes.
func ledgerEventName(method, fullPath string) string {
	if method == http.MethodGet || fullPath == "" {
		return ""
	}
	if name, ok := ledgerEvents[method+" "+fullPath]; ok {
		return name
	}
	// Fallback for routes added without a name, e.g. "/api/v1/x/:id" -> "api_v1_x_id"
	name := strings.TrimPrefix(fullPath, "/")
	name = strings.NewReplacer("/", "_", ":", "").Replace(name)
	return strings.ToLower(method) + "_" + name
}

// PosthogMiddleware reports successful ledger mutations to PostHog, keyed by
// the authenticated user. Reads are not tracked.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if !posthogClient.IsInitialized() {
			return
		}
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		event := ledgerEventName(c.Request.Method, c.FullPath())
		if event == "" {
			return
		}
		userID, ok := GetUserIDFromContext(c)
		if !ok {
			return
		}

		props := map[string]any{
			"status_code": c.Writer.Status(),
			"request_id":  c.Writer.Header().Get("X-Request-ID"),
		}
		for _, param := range c.Params {
			props[param.Key] = param.Value
		}
		posthogClient.Enqueue(userID, event, props)
	}
}
