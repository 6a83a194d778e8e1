// Admin HTTP handlers.
//
// This file exposes the operator-facing endpoints, mounted behind the admin
// token guard:
//   - POST   /admin/stock           (provision a credential bundle)
//   - GET    /admin/stock           (list per type, newest first)
//   - GET    /admin/stock/summary   (available counts per type)
//   - DELETE /admin/stock/{id}      (guarded deletion)
//   - GET    /admin/bonus           (current recharge bonus percent)
//   - PUT    /admin/bonus           (set recharge bonus percent)
//   - POST   /admin/credits         (manual credit by account code)
//   - GET    /admin/dashboard       (sales and balance metrics)
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docastore/store-backend/internal/domain"
	"github.com/docastore/store-backend/internal/utils"
)

// ProvisionStockRequest is the JSON payload for adding one stock item.
type ProvisionStockRequest struct {
	Type     string   `json:"type" binding:"required"`
	Email    string   `json:"email" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Tutorial string   `json:"tutorial"`
	Images   []string `json:"images"`
}

// SetBonusRequest is the JSON payload for overwriting the bonus percent.
type SetBonusRequest struct {
	Percent *float64 `json:"percent" binding:"required"`
}

// CreditRequest is the JSON payload for a manual admin credit.
type CreditRequest struct {
	DocCode string  `json:"doc_code" binding:"required"`
	Amount  float64 `json:"amount" binding:"required"`
}

// DashboardResponse aggregates the metrics the admin panel shows.
type DashboardResponse struct {
	SalesCount         int64            `json:"sales_count"`
	Revenue            float64          `json:"revenue"`
	TotalClientBalance float64          `json:"total_client_balance"`
	StockAvailable     map[string]int64 `json:"stock_available"`
	RecentOrders       []domain.Order   `json:"recent_orders"`
}

// ProvisionStock inserts a new unused stock item with its media references.
func (h *Handlers) ProvisionStock(c *gin.Context) {
	var req ProvisionStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type, email and password required")
		return
	}

	item, err := h.stock.Provision(c.Request.Context(), strings.TrimSpace(req.Type), req.Email, req.Password, req.Tutorial, req.Images)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, item)
}

// ListStock returns up to `limit` items of one type, newest first, used items
// included so operators can audit sold stock.
func (h *Handlers) ListStock(c *gin.Context) {
	itemType := strings.TrimSpace(c.Query("type"))
	if itemType == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "type query parameter required")
		return
	}
	limit := utils.AtoiDefault(c.Query("limit"), 10)
	if limit < 1 {
		limit = 1
	}
	if limit > 100 {
		limit = 100
	}

	items, err := h.stock.ListByType(c.Request.Context(), itemType, limit)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"items": items})
}

// StockSummary returns available counts per stock type, in catalog order.
func (h *Handlers) StockSummary(c *gin.Context) {
	counts, err := h.stock.Summary(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"available": counts})
}

// DeleteStock removes an unsold stock item and its images. Items already
// delivered by an order are refused with 409 stock_linked.
func (h *Handlers) DeleteStock(c *gin.Context) {
	id := utils.ParseInt64Default(c.Param("id"), 0)
	if id == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "stock id must be a number")
		return
	}
	if err := h.stock.Delete(c.Request.Context(), id); err != nil {
		mapServiceError(c, err)
		return
	}
	noContent(c)
}

// GetBonus returns the recharge bonus percent currently in effect.
func (h *Handlers) GetBonus(c *gin.Context) {
	percent, err := h.bonus.Percent(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, gin.H{"percent": percent})
}

// SetBonus overwrites the recharge bonus percent. Takes effect for recharges
// created after this call; already-created recharges keep their captured
// values.
func (h *Handlers) SetBonus(c *gin.Context) {
	var req SetBonusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Percent == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "percent required")
		return
	}
	if err := h.bonus.SetPercent(c.Request.Context(), *req.Percent); err != nil {
		mapServiceError(c, err)
		return
	}
	noContent(c)
}

// Credit applies a manual admin credit to the user holding the given account
// code and returns the updated user.
func (h *Handlers) Credit(c *gin.Context) {
	var req CreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "doc_code and amount required")
		return
	}
	u, err := h.accounts.CreditByDocCode(c.Request.Context(), strings.TrimSpace(req.DocCode), req.Amount)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// Dashboard aggregates sales count, revenue, total client balance, stock
// availability, and the latest orders.
func (h *Handlers) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()

	count, revenue, err := h.orders.SalesStats(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	total, err := h.accounts.TotalClientBalance(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	counts, err := h.stock.Summary(ctx)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	recent, err := h.orders.RecentOrders(ctx, 10)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	ok(c, http.StatusOK, DashboardResponse{
		SalesCount:         count,
		Revenue:            revenue,
		TotalClientBalance: total,
		StockAvailable:     counts,
		RecentOrders:       recent,
	})
}
