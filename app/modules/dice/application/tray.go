package diceservice

import (
	"context"
	"fmt"

	dicedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dice/domain"
)

// Tray returns the tray view of every participant as seen by the local
// participant.
func (s *DiceService) Tray(ctx context.Context) ([]dicedomain.TrayRow, error) {
	viewer, err := s.directory.Self(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve local participant: %w", err)
	}
	participants, err := s.directory.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	types, err := s.registry.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read die types: %w", err)
	}
	ledger, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	return dicedomain.BuildTray(dicedomain.TrayInput{
		Viewer:            viewer,
		Participants:      participants,
		DieTypes:          types,
		Ledger:            ledger,
		OverflowThreshold: s.cfg.OverflowThreshold,
	}), nil
}
