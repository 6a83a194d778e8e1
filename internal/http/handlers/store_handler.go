// Storefront HTTP handlers.
//
// This file exposes the customer-facing endpoints:
//   - POST /users                           (resolve-or-create by external identity)
//   - GET  /accounts/code/{doc_code}        (lookup by account code)
//   - GET  /accounts/external/{external_id} (lookup by external identity)
//   - GET  /catalog                      (products + live availability)
//   - POST /orders                       (purchase)
//   - GET  /users/{id}/orders            (history, paginated)
//   - GET  /users/{id}/orders/{order_id} (order details)
//   - POST /recharges                    (create PIX top-up)
//   - POST /recharges/{id}/message       (record QR message reference)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results (including sentinel errors) into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docastore/store-backend/internal/domain"
	"github.com/docastore/store-backend/internal/repo"
	"github.com/docastore/store-backend/internal/services"
	"github.com/docastore/store-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// AccountService defines the ledger operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type AccountService interface {
	GetOrCreate(ctx context.Context, externalID int64) (*domain.User, error)
	GetByDocCode(ctx context.Context, docCode string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByExternalID(ctx context.Context, externalID int64) (*domain.User, error)
	CreditByDocCode(ctx context.Context, docCode string, amount float64) (*domain.User, error)
	TotalClientBalance(ctx context.Context) (float64, error)
}

// OrderService defines purchase and history operations.
type OrderService interface {
	Purchase(ctx context.Context, userID int64, productCode string) (*services.PurchaseResult, error)
	OrdersPage(ctx context.Context, userID int64, page, pageSize int) ([]domain.Order, int64, error)
	OrderDetails(ctx context.Context, orderID, userID int64) (*repo.OrderDetails, error)
	SalesStats(ctx context.Context) (int64, float64, error)
	RecentOrders(ctx context.Context, limit int) ([]domain.Order, error)
}

// StockService defines admin inventory operations.
type StockService interface {
	Provision(ctx context.Context, itemType, email, password, tutorial string, images []string) (*domain.StockItem, error)
	Get(ctx context.Context, id int64) (*domain.StockItem, error)
	Summary(ctx context.Context) (map[string]int64, error)
	ListByType(ctx context.Context, itemType string, limit int) ([]domain.StockItem, error)
	Delete(ctx context.Context, id int64) error
}

// BonusService defines the recharge bonus policy operations.
type BonusService interface {
	Percent(ctx context.Context) (float64, error)
	SetPercent(ctx context.Context, value float64) error
}

// RechargeService defines top-up operations.
type RechargeService interface {
	Create(ctx context.Context, userID int64, amount float64) (*services.RechargeOffer, error)
	AttachMessage(ctx context.Context, rechargeID, messageID int64) error
}

// ReconcileService defines payment notification processing.
type ReconcileService interface {
	ProcessNotification(ctx context.Context, paymentID string) (services.Outcome, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for the storefront, admin, and webhook
// surfaces. It depends on abstract service interfaces to keep transport
// concerns separate from business logic.
type Handlers struct {
	accounts   AccountService
	orders     OrderService
	stock      StockService
	bonus      BonusService
	recharges  RechargeService
	reconciler ReconcileService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(accounts AccountService, orders OrderService, stock StockService, bonus BonusService, recharges RechargeService, reconciler ReconcileService) *Handlers {
	return &Handlers{
		accounts:   accounts,
		orders:     orders,
		stock:      stock,
		bonus:      bonus,
		recharges:  recharges,
		reconciler: reconciler,
	}
}

//
// DTOs
//

// RegisterUserRequest is the JSON payload for resolving a user by external
// chat identity.
type RegisterUserRequest struct {
	ExternalID int64 `json:"external_id" binding:"required"`
}

// PurchaseRequest is the JSON payload for buying one catalog product.
type PurchaseRequest struct {
	UserID      int64  `json:"user_id" binding:"required"`
	ProductCode string `json:"product_code" binding:"required"`
}

// CredentialPayload is the delivered product: the credential bundle behind a
// completed purchase. This is the only place the password leaves the server.
type CredentialPayload struct {
	StockID  int64    `json:"stock_id"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Tutorial string   `json:"tutorial,omitempty"`
	Images   []string `json:"images,omitempty"`
}

// PurchaseResponse wraps a completed purchase.
type PurchaseResponse struct {
	Order      domain.Order      `json:"order"`
	Credential CredentialPayload `json:"credential"`
	NewBalance float64           `json:"new_balance"`
}

// RechargeRequest is the JSON payload for creating a PIX top-up.
type RechargeRequest struct {
	UserID int64   `json:"user_id" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

// RechargeResponse wraps a created recharge and the PIX payload to display.
type RechargeResponse struct {
	Recharge domain.Recharge `json:"recharge"`
	Payment  PIXPayload      `json:"payment"`
}

// PIXPayload carries everything the transport needs to show a PIX charge.
type PIXPayload struct {
	PaymentID    string `json:"payment_id"`
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64,omitempty"`
	TicketURL    string `json:"ticket_url,omitempty"`
}

// AttachMessageRequest records the transport message that displayed a QR code.
type AttachMessageRequest struct {
	MessageID int64 `json:"message_id" binding:"required"`
}

// CatalogEntry is one product with its live availability.
type CatalogEntry struct {
	domain.Product
	Available int64 `json:"available"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListOrdersResponse wraps a page of orders and pagination information.
type ListOrdersResponse struct {
	Orders     []domain.Order `json:"orders"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// mapServiceError translates service sentinel errors into the error envelope.
// Unrecognized errors become 500s.
func mapServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrStockNotFound),
		errors.Is(err, services.ErrRechargeNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, services.ErrUnknownProduct):
		fail(c, http.StatusBadRequest, ErrCodeUnknownProduct, err.Error())
	case errors.Is(err, services.ErrInvalidAmount),
		errors.Is(err, services.ErrInvalidBonusPercent),
		errors.Is(err, services.ErrInvalidStockPayload):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrOutOfStock):
		fail(c, http.StatusConflict, ErrCodeOutOfStock, err.Error())
	case errors.Is(err, services.ErrInsufficientBalance):
		fail(c, http.StatusConflict, ErrCodeInsufficientBalance, err.Error())
	case errors.Is(err, services.ErrStockLinked):
		fail(c, http.StatusConflict, ErrCodeStockLinked, err.Error())
	case errors.Is(err, services.ErrGatewayUnavailable):
		fail(c, http.StatusBadGateway, ErrCodeGatewayUnavailable, "payment gateway unavailable")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
	}
}

// pageParam parses the "page" query parameter, defaulting to 1.
func pageParam(c *gin.Context) int {
	page := utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	return page
}

//
// Handlers
//

// RegisterUser resolves a user by external chat identity, creating a
// zero-balance account on first contact. Always returns 200: the operation is
// idempotent by design.
func (h *Handlers) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "external_id required")
		return
	}

	u, err := h.accounts.GetOrCreate(c.Request.Context(), req.ExternalID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// GetUserByCode returns the user holding the given account code.
func (h *Handlers) GetUserByCode(c *gin.Context) {
	code := strings.TrimSpace(c.Param("doc_code"))
	if code == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "doc_code required")
		return
	}
	u, err := h.accounts.GetByDocCode(c.Request.Context(), code)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// GetUserByExternal returns the user for an external identity without
// creating one.
func (h *Handlers) GetUserByExternal(c *gin.Context) {
	externalID := utils.ParseInt64Default(c.Param("external_id"), 0)
	if externalID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "external_id must be a number")
		return
	}
	u, err := h.accounts.GetByExternalID(c.Request.Context(), externalID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// Catalog returns every product on sale with its current availability.
func (h *Handlers) Catalog(c *gin.Context) {
	counts, err := h.stock.Summary(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	entries := make([]CatalogEntry, 0, len(domain.Catalog))
	for _, p := range domain.Catalog {
		entries = append(entries, CatalogEntry{Product: p, Available: counts[p.Code]})
	}
	ok(c, http.StatusOK, gin.H{"products": entries})
}

// Purchase sells one item of a catalog product to a user. On success the
// response carries the credential bundle and the buyer's new balance; business
// refusals (no stock, short balance) come back as 409s with a specific code.
func (h *Handlers) Purchase(c *gin.Context) {
	var req PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id and product_code required")
		return
	}

	res, err := h.orders.Purchase(c.Request.Context(), req.UserID, req.ProductCode)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	images := make([]string, 0, len(res.Item.Images))
	for _, img := range res.Item.Images {
		images = append(images, img.FileID)
	}
	ok(c, http.StatusCreated, PurchaseResponse{
		Order: *res.Order,
		Credential: CredentialPayload{
			StockID:  res.Item.ID,
			Email:    res.Item.Email,
			Password: res.Item.Password,
			Tutorial: res.Item.Tutorial,
			Images:   images,
		},
		NewBalance: res.NewBalance,
	})
}

// ListOrders returns one page of a user's order history, most recent first.
func (h *Handlers) ListOrders(c *gin.Context) {
	userID := utils.ParseInt64Default(c.Param("id"), 0)
	if userID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a number")
		return
	}
	page := pageParam(c)

	items, total, err := h.orders.OrdersPage(c.Request.Context(), userID, page, 0)
	if err != nil {
		mapServiceError(c, err)
		return
	}

	pageSize := services.DefaultOrdersPageSize
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListOrdersResponse{
		Orders: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetOrder returns one order with its linked stock id, enforcing ownership
// via the user id in the path.
func (h *Handlers) GetOrder(c *gin.Context) {
	userID := utils.ParseInt64Default(c.Param("id"), 0)
	orderID := utils.ParseInt64Default(c.Param("order_id"), 0)
	if userID == 0 || orderID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "ids must be numbers")
		return
	}
	det, err := h.orders.OrderDetails(c.Request.Context(), orderID, userID)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, det)
}

// CreateRecharge creates a pending top-up and the matching PIX payment.
func (h *Handlers) CreateRecharge(c *gin.Context) {
	var req RechargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user_id and amount required")
		return
	}

	offer, err := h.recharges.Create(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		mapServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, RechargeResponse{
		Recharge: *offer.Recharge,
		Payment: PIXPayload{
			PaymentID:    offer.Payment.ID,
			QRCode:       offer.Payment.QRCode,
			QRCodeBase64: offer.Payment.QRCodeBase64,
			TicketURL:    offer.Payment.TicketURL,
		},
	})
}

// AttachRechargeMessage records the transport message that displayed the PIX
// QR code for a recharge.
func (h *Handlers) AttachRechargeMessage(c *gin.Context) {
	rechargeID := utils.ParseInt64Default(c.Param("id"), 0)
	if rechargeID == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "recharge id must be a number")
		return
	}
	var req AttachMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message_id required")
		return
	}
	if err := h.recharges.AttachMessage(c.Request.Context(), rechargeID, req.MessageID); err != nil {
		mapServiceError(c, err)
		return
	}
	noContent(c)
}
