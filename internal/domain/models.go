// Package domain defines the persistence models for the storefront engine:
// users with prepaid balances, sellable credential stock, orders, recharges,
// and processed payment records. These types are mapped with GORM and are
// shared across the repository and service layers.
package domain

import "time"

// RechargeStatusPending is the advisory status a recharge carries from
// creation onwards. No completed transition is modeled; the ProcessedPayment
// dedup table is the source of truth for settled payments.
const RechargeStatusPending = "pending"

// OrderStatusCompleted is the single terminal status an order is created
// with. There is no refund or cancellation flow.
const OrderStatusCompleted = "completed"

// User represents a storefront customer, created lazily on first contact.
//
// Fields:
//   - ID: internal sequential primary key.
//   - ExternalID: opaque chat-transport identity (unique).
//   - DocCode: human-displayable account code ("DOC-00042"), derived from ID
//     at creation time and used as the payment gateway external reference.
//   - Balance: prepaid balance in BRL; mutated only relatively, never below 0
//     by the purchase path (admin credits are unconditional).
//   - Points: loyalty points.
type User struct {
	ID         int64     `json:"id"          gorm:"primaryKey;autoIncrement"`
	ExternalID int64     `json:"external_id" gorm:"not null;uniqueIndex:ux_users_external_id"`
	DocCode    string    `json:"doc_code"    gorm:"type:varchar(16);uniqueIndex:ux_users_doc_code"`
	Balance    float64   `json:"balance"     gorm:"not null;default:0"`
	Points     float64   `json:"points"      gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// StockItem is one sellable credential bundle. Once Used flips to true the
// item is permanently retired; it is never reused or un-flagged.
type StockItem struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	Type      string    `json:"type"       gorm:"type:varchar(32);not null;index:idx_stock_type_used,priority:1"`
	Email     string    `json:"email"      gorm:"type:text;not null"`
	Password  string    `json:"-"          gorm:"type:text;not null"`
	Tutorial  string    `json:"tutorial"   gorm:"type:text;not null"`
	Used      bool      `json:"used"       gorm:"not null;default:false;index:idx_stock_type_used,priority:2"`
	CreatedAt time.Time `json:"created_at"`

	// Images are media references attached by the provisioning flow and
	// delivered together with the credentials after a purchase.
	Images []StockImage `json:"images,omitempty" gorm:"foreignKey:StockID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for StockItem.
func (StockItem) TableName() string { return "stock" }

// StockImage is a media reference (transport file id) attached to a stock item.
type StockImage struct {
	ID      int64  `json:"id"       gorm:"primaryKey;autoIncrement"`
	StockID int64  `json:"stock_id" gorm:"not null;index"`
	FileID  string `json:"file_id"  gorm:"type:text;not null"`
}

// TableName returns the database table name for StockImage.
func (StockImage) TableName() string { return "stock_images" }

// Order is one completed purchase. Price and labels are captured at purchase
// time and immutable thereafter. The delivered stock item is linked through
// an OrderStock row; an order with no link is a recognized legacy state.
type Order struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id"    gorm:"not null;index"`
	Category  string    `json:"category"   gorm:"type:varchar(32);not null"`
	TypeCode  string    `json:"type_code"  gorm:"type:varchar(32);not null"`
	TypeLabel string    `json:"type_label" gorm:"type:varchar(128);not null"`
	Price     float64   `json:"price"      gorm:"not null"`
	Status    string    `json:"status"     gorm:"type:varchar(16);not null;default:'completed'"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Order.
func (Order) TableName() string { return "orders" }

// OrderStock links an order to the stock item it delivered. The order id is
// the primary key, so each order references at most one item; the link is
// written once per order (idempotent overwrite allowed).
type OrderStock struct {
	OrderID int64 `json:"order_id" gorm:"primaryKey"`
	StockID int64 `json:"stock_id" gorm:"not null;index"`
}

// TableName returns the database table name for OrderStock.
func (OrderStock) TableName() string { return "order_stock" }

// Recharge is one user-initiated top-up request. The bonus percent in effect
// at creation time is captured on the row together with the derived bonus and
// final credit amounts, so the reconciler can honor exactly what was shown to
// the user. MessageID stores the transport message carrying the PIX QR code
// (0 when none was recorded) so the approval notification can edit it.
type Recharge struct {
	ID           int64     `json:"id"            gorm:"primaryKey;autoIncrement"`
	UserID       int64     `json:"user_id"       gorm:"not null;index"`
	Amount       float64   `json:"amount"        gorm:"not null"`
	BonusPercent float64   `json:"bonus_percent" gorm:"not null"`
	BonusAmount  float64   `json:"bonus_amount"  gorm:"not null"`
	FinalCredit  float64   `json:"final_credit"  gorm:"not null"`
	Status       string    `json:"status"        gorm:"type:varchar(16);not null;default:'pending'"`
	MessageID    int64     `json:"message_id"    gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName returns the database table name for Recharge.
func (Recharge) TableName() string { return "recharges" }

// ProcessedPayment is a write-once dedup record keyed by the gateway payment
// id. Its unique index is the sole idempotency guard against duplicate or
// retried payment notifications: a conflicting insert means "already
// handled", not an error.
type ProcessedPayment struct {
	ID                int64     `json:"id"                 gorm:"primaryKey;autoIncrement"`
	PaymentID         string    `json:"payment_id"         gorm:"type:varchar(64);not null;uniqueIndex:ux_payments_payment_id"`
	Status            string    `json:"status"             gorm:"type:varchar(32);not null"`
	StatusDetail      string    `json:"status_detail"      gorm:"type:varchar(64)"`
	Amount            float64   `json:"amount"             gorm:"not null"`
	ExternalReference string    `json:"external_reference" gorm:"type:varchar(32)"`
	CreatedAt         time.Time `json:"created_at"`
}

// TableName returns the database table name for ProcessedPayment.
func (ProcessedPayment) TableName() string { return "mp_payments" }

// ConfigEntry is a single global key/value scalar. The only key in use is
// BonusPercentKey, overwritten in place by administrators.
type ConfigEntry struct {
	Key   string `gorm:"type:varchar(64);primaryKey"`
	Value string `gorm:"type:text;not null"`
}

// TableName returns the database table name for ConfigEntry.
func (ConfigEntry) TableName() string { return "config" }

// BonusPercentKey identifies the recharge bonus percent config row.
const BonusPercentKey = "bonus_recharge_percent"
