// Package services defines the business logic for accounts, stock, orders,
// recharges, and payment reconciliation. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and
// translation into user-facing messages or HTTP status codes should be
// performed at the handler layer.
package services

import "errors"

var (
	// ErrUserNotFound indicates that no user matches the given id, account
	// code, or external identity. Recoverable by the caller, never fatal.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownProduct is returned when a purchase names a product code
	// absent from the catalog.
	ErrUnknownProduct = errors.New("unknown product")

	// ErrOutOfStock indicates no unused stock exists for the requested
	// product. Surfaced to the end user; not retried automatically.
	ErrOutOfStock = errors.New("out of stock")

	// ErrInsufficientBalance indicates the conditional debit precondition
	// failed. Surfaced with the shortfall; not retried automatically.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrOrderNotFound indicates the requested order does not exist or is
	// not owned by the requesting user.
	ErrOrderNotFound = errors.New("order not found")

	// ErrStockNotFound indicates the requested stock item does not exist.
	ErrStockNotFound = errors.New("stock item not found")

	// ErrStockLinked is returned when deleting a stock item that a
	// completed order references.
	ErrStockLinked = errors.New("stock item is linked to an order")

	// ErrRechargeNotFound indicates the requested recharge does not exist.
	ErrRechargeNotFound = errors.New("recharge not found")

	// ErrInvalidStockPayload is returned when a provisioning request is
	// missing the credential fields.
	ErrInvalidStockPayload = errors.New("stock item requires email and password")

	// ErrInvalidAmount is returned when a recharge or credit amount is not
	// strictly positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidBonusPercent is returned when an administrator submits a
	// bonus percent outside [0, 200].
	ErrInvalidBonusPercent = errors.New("bonus percent must be between 0 and 200")

	// ErrDuplicatePayment signals that a payment notification was already
	// handled. A normal no-op outcome, not a failure.
	ErrDuplicatePayment = errors.New("payment already processed")

	// ErrGatewayUnavailable indicates the payment gateway call failed; the
	// operation is aborted with no state mutated.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrUnknownReference indicates an approved payment whose external
	// reference matches no known user. The payment stays marked processed
	// so redelivery cannot double-credit; the case is escalated for manual
	// reconciliation.
	ErrUnknownReference = errors.New("payment reference matches no user")
)
