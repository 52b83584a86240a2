package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"talao/internal/domain/event"
	"talao/internal/domain/member"
	"talao/internal/domain/payment"
	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type DeletePaymentCommand struct {
	EventID   uuid.UUID
	PaymentID uuid.UUID
}

type DeletePaymentResult struct {
	PaymentID uuid.UUID
}

// DeletePaymentUseCase soft-deletes a payment. The row keeps its tombstone so
// history stays auditable; balances stop counting it immediately.
type DeletePaymentUseCase struct {
	eventRepo   event.Repository
	memberRepo  member.Repository
	paymentRepo payment.Repository
	logger      logger.Interface
}

func NewDeletePaymentUseCase(
	eventRepo event.Repository,
	memberRepo member.Repository,
	paymentRepo payment.Repository,
	logger logger.Interface,
) *DeletePaymentUseCase {
	return &DeletePaymentUseCase{
		eventRepo:   eventRepo,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

func (uc *DeletePaymentUseCase) Execute(ctx context.Context, cmd DeletePaymentCommand) (*DeletePaymentResult, error) {
	uc.logger.Infow("deleting payment", "event_id", cmd.EventID, "payment_id", cmd.PaymentID)

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	p, err := uc.paymentRepo.GetByID(ctx, cmd.PaymentID)
	if err != nil {
		uc.logger.Warnw("payment not found", "payment_id", cmd.PaymentID)
		return nil, errors.NewNotFoundError("payment not found")
	}
	if p.IsDeleted() {
		return nil, errors.NewNotFoundError("payment not found")
	}

	m, err := uc.memberRepo.GetByID(ctx, p.MemberID())
	if err != nil || m.EventID() != cmd.EventID {
		uc.logger.Warnw("payment does not belong to event", "payment_id", cmd.PaymentID, "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("payment not found")
	}

	if err := uc.paymentRepo.SoftDelete(ctx, p.ID(), time.Now()); err != nil {
		uc.logger.Errorw("failed to delete payment", "error", err, "payment_id", p.ID())
		return nil, fmt.Errorf("failed to delete payment: %w", err)
	}

	uc.logger.Infow("payment deleted", "payment_id", p.ID())

	return &DeletePaymentResult{PaymentID: p.ID()}, nil
}
