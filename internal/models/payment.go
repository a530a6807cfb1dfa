package models

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusCaptured PaymentStatus = "captured"
	PaymentStatusFailed   PaymentStatus = "failed"
)

type PaymentCapture struct {
	Amount          decimal.Decimal
	Currency        string
	Description     string
	PaymentMethodID string
	IdempotencyKey  string
}

type PaymentReceipt struct {
	TransactionID string        `json:"transaction_id"`
	Status        PaymentStatus `json:"status"`
}
