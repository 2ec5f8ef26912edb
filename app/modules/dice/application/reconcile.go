package diceservice

import (
	"context"
	"fmt"
	"sort"

	dicedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dice/domain"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	notificationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/notification/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
)

// CleanInvalidData deletes entries of die types that no longer exist and
// clamps out-of-range quantities. It needs write authority over the
// participant and never delegates.
func (s *DiceService) CleanInvalidData(ctx context.Context, participantID participantdomain.ID) dicedomain.CleanupResult {
	result, err := s.cleanInvalidData(ctx, participantID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to clean dice data",
			attr.ExtractCorrelationID(ctx),
			attr.ParticipantID(string(participantID)),
			attr.Error(err),
		)
		return dicedomain.CleanupFailed
	}
	if result == dicedomain.CleanupCleaned {
		s.logger.InfoContext(ctx, "Cleaned dice data",
			attr.ExtractCorrelationID(ctx),
			attr.ParticipantID(string(participantID)),
		)
	}
	return result
}

func (s *DiceService) cleanInvalidData(ctx context.Context, participantID participantdomain.ID) (dicedomain.CleanupResult, error) {
	ok, err := s.directory.CanWrite(ctx, s.directory.SelfID(), participantID)
	if err != nil {
		return dicedomain.CleanupFailed, fmt.Errorf("failed to check write authority: %w", err)
	}
	if !ok {
		return dicedomain.CleanupFailed, fmt.Errorf("no write authority over %s", participantID)
	}

	held, err := s.ledger.GetAll(ctx, participantID)
	if err != nil {
		return dicedomain.CleanupFailed, fmt.Errorf("failed to read quantities: %w", err)
	}
	all, err := s.registry.GetAll(ctx)
	if err != nil {
		return dicedomain.CleanupFailed, fmt.Errorf("failed to read die types: %w", err)
	}
	types := make(map[string]dicetypedomain.DieType, len(all))
	for _, d := range all {
		types[d.ID] = d
	}

	ids := make([]string, 0, len(held))
	for id := range held {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := dicedomain.CleanupNoChange
	for _, id := range ids {
		qty := held[id]
		d, known := types[id]
		if !known {
			if err := s.ledger.Delete(ctx, participantID, id); err != nil {
				return dicedomain.CleanupFailed, fmt.Errorf("failed to delete entry %s: %w", id, err)
			}
			result = dicedomain.CleanupCleaned
			continue
		}
		if clamped := dicedomain.Clamp(d, qty); clamped != qty {
			if err := s.ledger.Set(ctx, participantID, id, clamped); err != nil {
				return dicedomain.CleanupFailed, fmt.Errorf("failed to clamp entry %s: %w", id, err)
			}
			result = dicedomain.CleanupCleaned
		}
	}
	return result, nil
}

func (s *DiceService) CleanAllInvalidData(ctx context.Context, notify bool) (int, error) {
	participants, err := s.directory.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list participants: %w", err)
	}

	failed := 0
	for _, p := range participants {
		if s.CleanInvalidData(ctx, p.ID) == dicedomain.CleanupFailed {
			failed++
		}
	}

	if notify && failed > 0 {
		s.notifier.Notify(ctx, notificationdomain.Warn(notificationdomain.KeyCleanupFailed, map[string]any{"count": failed}))
	}
	return failed, nil
}
