package usecases

import (
	"context"

	"github.com/google/uuid"

	"talao/internal/shared/errors"
	"talao/internal/shared/logger"
)

type DeleteTicketCommand struct {
	EventID  uuid.UUID
	TicketID uuid.UUID
}

// DeleteTicketUseCase rejects every deletion attempt. Issued numbers are
// permanent; a ticket leaves circulation by being detached or marked returned,
// never by disappearing.
type DeleteTicketUseCase struct {
	logger logger.Interface
}

func NewDeleteTicketUseCase(logger logger.Interface) *DeleteTicketUseCase {
	return &DeleteTicketUseCase{logger: logger}
}

func (uc *DeleteTicketUseCase) Execute(ctx context.Context, cmd DeleteTicketCommand) error {
	uc.logger.Warnw("ticket deletion attempted",
		"event_id", cmd.EventID,
		"ticket_id", cmd.TicketID,
	)
	return errors.NewValidationError("tickets cannot be deleted", "issued numbers are permanent")
}
