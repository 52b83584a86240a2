// Package payment holds member payments as consumed by reconciliation.
// Payments are soft-deleted with an explicit tombstone; deleted payments never
// count towards a member's balance.
package payment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type is the payment method.
type Type string

const (
	TypeCash Type = "CASH"
	TypePix  Type = "PIX"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeCash, TypePix:
		return true
	}
	return false
}

func (t Type) String() string {
	return string(t)
}

type Payment struct {
	id          uuid.UUID
	memberID    uuid.UUID
	amount      int
	paymentType Type
	visionID    *string
	payedAt     time.Time
	deletedAt   *time.Time
	createdAt   time.Time
}

func NewPayment(memberID uuid.UUID, amount int, paymentType Type, visionID *string, payedAt *time.Time) (*Payment, error) {
	if memberID == uuid.Nil {
		return nil, fmt.Errorf("member ID is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if !paymentType.IsValid() {
		return nil, fmt.Errorf("invalid payment type: %s", paymentType)
	}

	now := time.Now()
	at := now
	if payedAt != nil {
		at = *payedAt
	}
	return &Payment{
		id:          uuid.New(),
		memberID:    memberID,
		amount:      amount,
		paymentType: paymentType,
		visionID:    visionID,
		payedAt:     at,
		createdAt:   now,
	}, nil
}

func ReconstructPayment(
	id uuid.UUID,
	memberID uuid.UUID,
	amount int,
	paymentType Type,
	visionID *string,
	payedAt time.Time,
	deletedAt *time.Time,
	createdAt time.Time,
) (*Payment, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("payment ID cannot be nil")
	}
	if !paymentType.IsValid() {
		return nil, fmt.Errorf("invalid payment type: %s", paymentType)
	}
	return &Payment{
		id:          id,
		memberID:    memberID,
		amount:      amount,
		paymentType: paymentType,
		visionID:    visionID,
		payedAt:     payedAt,
		deletedAt:   deletedAt,
		createdAt:   createdAt,
	}, nil
}

func (p *Payment) ID() uuid.UUID {
	return p.id
}

func (p *Payment) MemberID() uuid.UUID {
	return p.memberID
}

func (p *Payment) Amount() int {
	return p.amount
}

func (p *Payment) Type() Type {
	return p.paymentType
}

func (p *Payment) VisionID() *string {
	return p.visionID
}

func (p *Payment) PayedAt() time.Time {
	return p.payedAt
}

func (p *Payment) DeletedAt() *time.Time {
	return p.deletedAt
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Payment) IsDeleted() bool {
	return p.deletedAt != nil
}
