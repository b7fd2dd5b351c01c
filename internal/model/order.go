package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusApproved OrderStatus = "approved"
	OrderStatusRejected OrderStatus = "rejected"
)

// Order is a manual top-up claim: the user says they paid PaidAmount by bank
// transfer under the given reference, an admin later confirms against the
// bank statement. ReferenceHash is globally unique so the same transfer can
// never be claimed twice.
type Order struct {
	ID                 uuid.UUID   `json:"id" db:"id"`
	UserID             uuid.UUID   `json:"user_id" db:"user_id"`
	PaidAmount         float64     `json:"paid_amount" db:"paid_amount"`
	CreditsToGrant     float64     `json:"credits_to_grant" db:"credits_to_grant"`
	EncryptedReference string      `json:"-" db:"encrypted_reference"`
	ReferenceHash      string      `json:"-" db:"reference_hash"`
	Status             OrderStatus `json:"status" db:"status"`
	AppliedOfferCode   *string     `json:"applied_offer_code,omitempty" db:"applied_offer_code"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	ResolvedAt         *time.Time  `json:"resolved_at,omitempty" db:"resolved_at"`
}

func (o *Order) Resolved() bool {
	return o.Status != OrderStatusPending
}
