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

type CreatePaymentCommand struct {
	EventID  uuid.UUID
	MemberID uuid.UUID
	Amount   int
	Type     string
	VisionID *string
	PayedAt  *time.Time
}

type CreatePaymentResult struct {
	PaymentID uuid.UUID
}

// CreatePaymentUseCase records a payment against a member of the event.
type CreatePaymentUseCase struct {
	eventRepo   event.Repository
	memberRepo  member.Repository
	paymentRepo payment.Repository
	logger      logger.Interface
}

func NewCreatePaymentUseCase(
	eventRepo event.Repository,
	memberRepo member.Repository,
	paymentRepo payment.Repository,
	logger logger.Interface,
) *CreatePaymentUseCase {
	return &CreatePaymentUseCase{
		eventRepo:   eventRepo,
		memberRepo:  memberRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

func (uc *CreatePaymentUseCase) Execute(ctx context.Context, cmd CreatePaymentCommand) (*CreatePaymentResult, error) {
	uc.logger.Infow("creating payment",
		"event_id", cmd.EventID,
		"member_id", cmd.MemberID,
		"amount", cmd.Amount,
		"type", cmd.Type,
	)

	ev, err := uc.eventRepo.GetByID(ctx, cmd.EventID)
	if err != nil {
		uc.logger.Warnw("event not found", "event_id", cmd.EventID)
		return nil, errors.NewNotFoundError("event not found")
	}
	if ev.ReadOnly() {
		uc.logger.Warnw("event is read-only", "event_id", cmd.EventID)
		return nil, errors.NewForbiddenError("event is read-only")
	}

	m, err := uc.memberRepo.GetByID(ctx, cmd.MemberID)
	if err != nil || m.EventID() != cmd.EventID {
		uc.logger.Warnw("member not found", "member_id", cmd.MemberID, "event_id", cmd.EventID)
		return nil, errors.NewValidationError("member does not belong to this event")
	}

	paymentType := payment.Type(cmd.Type)
	p, err := payment.NewPayment(cmd.MemberID, cmd.Amount, paymentType, cmd.VisionID, cmd.PayedAt)
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	if err := uc.paymentRepo.Save(ctx, p); err != nil {
		uc.logger.Errorw("failed to save payment", "error", err, "member_id", cmd.MemberID)
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	uc.logger.Infow("payment created", "payment_id", p.ID(), "member_id", cmd.MemberID)

	return &CreatePaymentResult{PaymentID: p.ID()}, nil
}
