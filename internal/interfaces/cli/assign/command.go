// Package assign exposes the bulk assignment engine as a CLI command.
package assign

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	ticketUsecases "talao/internal/application/ticket/usecases"
	"talao/internal/infrastructure/config"
	"talao/internal/infrastructure/database"
	"talao/internal/infrastructure/repository"
	"talao/internal/shared/db"
	"talao/internal/shared/logger"
)

var (
	configPath string
	eventID    string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign",
		Short: "Run the bulk ticket assignment for an event",
		Long:  `Walk the event's outstanding allocations in member priority order and assign unassigned tickets to them, lowest numbers first.`,
		RunE:  runAssign,
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVarP(&eventID, "event", "e", "", "Event ID (required)")
	cmd.MarkFlagRequired("event")

	return cmd
}

func runAssign(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return fmt.Errorf("invalid event ID %q: %w", eventID, err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	gormDB := database.Get()
	useCase := ticketUsecases.NewRunAssignmentUseCase(
		repository.NewEventRepository(gormDB),
		repository.NewTicketRangeRepository(gormDB),
		repository.NewMemberRepository(gormDB),
		repository.NewTicketRepository(gormDB),
		repository.NewAllocationRepository(gormDB),
		repository.NewTicketFlowRepository(gormDB),
		db.NewTransactionManager(gormDB),
		log.Named("assignment"),
	)

	result, err := useCase.Execute(context.Background(), ticketUsecases.RunAssignmentCommand{EventID: id})
	if err != nil {
		log.Errorw("assignment failed", "error", err, "event_id", id)
		return err
	}

	if result.NothingToDo {
		fmt.Println("nothing to assign")
		return nil
	}
	fmt.Printf("assigned %d tickets\n", result.Assigned)
	return nil
}
