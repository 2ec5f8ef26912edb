package diceservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	chatservice "github.com/Black-And-White-Club/shared-dice/app/modules/chat/application"
	delegationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/domain"
	delegationservice "github.com/Black-And-White-Club/shared-dice/app/modules/delegation/application"
	dicedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dice/domain"
	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	notificationservice "github.com/Black-And-White-Club/shared-dice/app/modules/notification/application"
	notificationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/notification/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/hooks"
	"github.com/Black-And-White-Club/shared-dice/app/shared/metrics"
	"github.com/Black-And-White-Club/shared-dice/app/shared/operation"
	"github.com/Black-And-White-Club/shared-dice/app/shared/results"
	"go.opentelemetry.io/otel/trace"
)

// Config tunes the action API.
type Config struct {
	DelegationTimeout time.Duration
	OverflowThreshold int
}

// DiceService implements the Service interface.
type DiceService struct {
	directory Directory
	registry  Registry
	ledger    Ledger
	channel   Channel
	notifier  notificationservice.Notifier
	chat      chatservice.Sender
	logger    *slog.Logger
	telemetry operation.Telemetry
	hooks     *hooks.Registry[*dicedomain.ActionEvent]
	cfg       Config
}

// NewDiceService creates a new DiceService and registers the quantity
// mutation on channel.
func NewDiceService(
	directory Directory,
	registry Registry,
	ledger Ledger,
	channel Channel,
	notifier notificationservice.Notifier,
	chat chatservice.Sender,
	logger *slog.Logger,
	metrics metrics.OperationMetrics,
	tracer trace.Tracer,
	cfg Config,
) *DiceService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &DiceService{
		directory: directory,
		registry:  registry,
		ledger:    ledger,
		channel:   channel,
		notifier:  notifier,
		chat:      chat,
		logger:    logger,
		telemetry: operation.Telemetry{
			Logger:  logger,
			Tracer:  tracer,
			Metrics: metrics,
			Service: "DiceService",
		},
		hooks: hooks.NewRegistry[*dicedomain.ActionEvent](logger),
		cfg:   cfg,
	}
	channel.Register(dicedomain.ModifyQuantityFunction, s.ModifyQuantity)
	return s
}

func (s *DiceService) Hooks() *hooks.Registry[*dicedomain.ActionEvent] {
	return s.hooks
}

// ModifyQuantity applies a delta to one ledger entry of target. It is only
// ever executed by a participant holding write authority over target.
// The read and the write are separate store calls.
func (s *DiceService) ModifyQuantity(ctx context.Context, target participantdomain.ID, payload json.RawMessage) (*delegationdomain.Result, error) {
	var p dicedomain.ModifyQuantityPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}

	d, err := s.registry.Get(ctx, p.DieTypeID)
	if err != nil {
		return nil, err
	}

	current, _, err := s.ledger.Get(ctx, target, d.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read quantity: %w", err)
	}

	next, notice := dicedomain.CheckQuantity(d, current, p.Delta)
	if notice != nil {
		return delegationdomain.Failure(*notice), nil
	}

	if err := s.ledger.Set(ctx, target, d.ID, next); err != nil {
		return nil, fmt.Errorf("failed to write quantity: %w", err)
	}
	return delegationdomain.Success(), nil
}

func (s *DiceService) Add(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...ActionOption) (bool, error) {
	return s.editAction(ctx, "Add", dicetypedomain.ActionAdd, dicedomain.HookPreAdd, dicedomain.HookAdd, 1, target, dieTypeID, opts)
}

func (s *DiceService) Remove(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...ActionOption) (bool, error) {
	return s.editAction(ctx, "Remove", dicetypedomain.ActionRemove, dicedomain.HookPreRemove, dicedomain.HookRemove, -1, target, dieTypeID, opts)
}

// editAction implements add and remove, which differ only in sign and hook
// names.
func (s *DiceService) editAction(
	ctx context.Context,
	operationName string,
	action dicetypedomain.Action,
	preHook, hook string,
	sign int,
	target participantdomain.ID,
	dieTypeID string,
	opts []ActionOption,
) (bool, error) {
	o := applyActionOptions(opts)
	return s.run(ctx, operationName, string(target)+"/"+dieTypeID, func(ctx context.Context) (results.OperationResult[bool, string], error) {
		if o.amount <= 0 {
			return rejectedWithError(fmt.Errorf("%w: %d", dicedomain.ErrInvalidAmount, o.amount))
		}
		targetP, err := s.directory.Get(ctx, target)
		if err != nil {
			return rejectedWithError(err)
		}
		d, err := s.registry.Get(ctx, dieTypeID)
		if err != nil {
			return rejectedWithError(err)
		}
		self, err := s.directory.Self(ctx)
		if err != nil {
			return rejectedWithError(fmt.Errorf("failed to resolve local participant: %w", err))
		}

		if !d.EditPermissions.For(self.Role).Allows(self.ID, targetP.ID) {
			s.notifier.Notify(ctx, notificationdomain.Warn(notificationdomain.KeyMissingEditPermission, nil))
			return rejected(notificationdomain.KeyMissingEditPermission)
		}

		event := &dicedomain.ActionEvent{
			Action:      action,
			SourceID:    self.ID,
			TargetID:    targetP.ID,
			DieTypeID:   d.ID,
			Amount:      o.amount,
			MessageData: o.messageData,
		}
		if !s.hooks.CallBefore(ctx, preHook, event) {
			return rejected("vetoed")
		}

		if !s.modify(ctx, targetP.ID, d.ID, sign*o.amount) {
			return rejected("query failed")
		}

		s.hooks.CallAfter(ctx, hook, event)
		if o.chatMessage {
			s.sendChat(ctx, action, d, self, &targetP, o)
		}
		return succeeded()
	})
}

func (s *DiceService) Use(ctx context.Context, dieTypeID string, opts ...ActionOption) (bool, error) {
	o := applyActionOptions(opts)
	return s.run(ctx, "Use", string(s.directory.SelfID())+"/"+dieTypeID, func(ctx context.Context) (results.OperationResult[bool, string], error) {
		if o.amount <= 0 {
			return rejectedWithError(fmt.Errorf("%w: %d", dicedomain.ErrInvalidAmount, o.amount))
		}
		d, err := s.registry.Get(ctx, dieTypeID)
		if err != nil {
			return rejectedWithError(err)
		}
		self, err := s.directory.Self(ctx)
		if err != nil {
			return rejectedWithError(fmt.Errorf("failed to resolve local participant: %w", err))
		}

		event := &dicedomain.ActionEvent{
			Action:      dicetypedomain.ActionUse,
			SourceID:    self.ID,
			TargetID:    self.ID,
			DieTypeID:   d.ID,
			Amount:      o.amount,
			MessageData: o.messageData,
		}
		if !s.hooks.CallBefore(ctx, dicedomain.HookPreUse, event) {
			return rejected("vetoed")
		}

		if !s.modify(ctx, self.ID, d.ID, -o.amount) {
			return rejected("query failed")
		}

		s.hooks.CallAfter(ctx, dicedomain.HookUse, event)
		if o.chatMessage {
			s.sendChat(ctx, dicetypedomain.ActionUse, d, self, nil, o)
		}
		return succeeded()
	})
}

// Gift moves dice from the local participant to target. The two ledger
// writes are not atomic: when crediting the target fails the source is
// credited back, and a failed rollback is only logged.
func (s *DiceService) Gift(ctx context.Context, target participantdomain.ID, dieTypeID string, opts ...ActionOption) (bool, error) {
	o := applyActionOptions(opts)
	return s.run(ctx, "Gift", string(target)+"/"+dieTypeID, func(ctx context.Context) (results.OperationResult[bool, string], error) {
		if o.amount <= 0 {
			return rejectedWithError(fmt.Errorf("%w: %d", dicedomain.ErrInvalidAmount, o.amount))
		}
		d, err := s.registry.Get(ctx, dieTypeID)
		if err != nil {
			return rejectedWithError(err)
		}
		if !d.AllowGift {
			s.notifier.Notify(ctx, notificationdomain.Warn(notificationdomain.KeyDisallowedGift, nil))
			return rejected(notificationdomain.KeyDisallowedGift)
		}
		targetP, err := s.directory.Get(ctx, target)
		if err != nil {
			return rejectedWithError(err)
		}
		self, err := s.directory.Self(ctx)
		if err != nil {
			return rejectedWithError(fmt.Errorf("failed to resolve local participant: %w", err))
		}

		event := &dicedomain.ActionEvent{
			Action:      dicetypedomain.ActionGift,
			SourceID:    self.ID,
			TargetID:    targetP.ID,
			DieTypeID:   d.ID,
			Amount:      o.amount,
			MessageData: o.messageData,
		}
		if !s.hooks.CallBefore(ctx, dicedomain.HookPreGift, event) {
			return rejected("vetoed")
		}

		if !s.modify(ctx, self.ID, d.ID, -o.amount) {
			return rejected("debit failed")
		}
		if !s.modify(ctx, targetP.ID, d.ID, o.amount) {
			s.rollbackGift(ctx, self.ID, targetP.ID, d.ID, o.amount)
			return rejected("credit failed")
		}

		s.hooks.CallAfter(ctx, dicedomain.HookGift, event)
		if o.chatMessage {
			s.sendChat(ctx, dicetypedomain.ActionGift, d, self, &targetP, o)
		}
		return succeeded()
	})
}

func (s *DiceService) rollbackGift(ctx context.Context, source, target participantdomain.ID, dieTypeID string, amount int) {
	result := s.channel.QueryRaw(ctx, dicedomain.ModifyQuantityFunction, source,
		dicedomain.ModifyQuantityPayload{DieTypeID: dieTypeID, Delta: amount},
		delegationservice.WithTimeout(s.cfg.DelegationTimeout),
		delegationservice.WithoutNotices(),
	)
	if result != nil && result.OK {
		return
	}
	s.logger.ErrorContext(ctx, "Failed to roll back gift",
		attr.ExtractCorrelationID(ctx),
		attr.ParticipantID(string(source)),
		attr.String("target_participant_id", string(target)),
		attr.DieTypeID(dieTypeID),
		attr.Int("amount", amount),
		attr.Any("result", result),
	)
}

func (s *DiceService) modify(ctx context.Context, target participantdomain.ID, dieTypeID string, delta int) bool {
	return s.channel.Query(ctx, dicedomain.ModifyQuantityFunction, target,
		dicedomain.ModifyQuantityPayload{DieTypeID: dieTypeID, Delta: delta},
		delegationservice.WithTimeout(s.cfg.DelegationTimeout),
	)
}

// sendChat reports chat errors without failing the action, which has
// already been applied.
func (s *DiceService) sendChat(ctx context.Context, action dicetypedomain.Action, d dicetypedomain.DieType, self participantdomain.Participant, target *participantdomain.Participant, o actionOptions) {
	if s.chat == nil {
		return
	}
	req := chatservice.Request{
		Action:      action,
		DieType:     d,
		SourceName:  self.Name,
		Amount:      o.amount,
		MessageData: o.messageData,
	}
	if target != nil {
		id := target.ID
		req.TargetID = &id
		req.TargetName = target.Name
	}
	if _, err := s.chat.Send(ctx, req); err != nil {
		s.logger.ErrorContext(ctx, "Failed to send chat message",
			attr.ExtractCorrelationID(ctx),
			attr.String("action", string(action)),
			attr.DieTypeID(d.ID),
			attr.Error(err),
		)
	}
}

func (s *DiceService) GetUserDie(ctx context.Context, participantID participantdomain.ID, dieTypeID string) (int, error) {
	if _, err := s.directory.Get(ctx, participantID); err != nil {
		return 0, err
	}
	qty, _, err := s.ledger.Get(ctx, participantID, dieTypeID)
	if err != nil {
		return 0, fmt.Errorf("failed to read quantity: %w", err)
	}
	return qty, nil
}

func (s *DiceService) GetUserDice(ctx context.Context, participantID participantdomain.ID) (map[string]int, error) {
	if _, err := s.directory.Get(ctx, participantID); err != nil {
		return nil, err
	}
	all, err := s.ledger.GetAll(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to read quantities: %w", err)
	}
	return all, nil
}

func (s *DiceService) FindDiceTypesByName(ctx context.Context, name string) ([]dicetypedomain.DieType, error) {
	return s.registry.FindByName(ctx, name)
}

func (s *DiceService) run(ctx context.Context, operationName, identifier string, fn operation.Func[bool, string]) (bool, error) {
	result, err := operation.Run(s.telemetry, ctx, operationName, identifier, fn)
	if err != nil {
		return false, err
	}
	return result.IsSuccess(), nil
}

func succeeded() (results.OperationResult[bool, string], error) {
	return results.SuccessResult[bool, string](true), nil
}

func rejected(reason string) (results.OperationResult[bool, string], error) {
	return results.FailureResult[bool, string](reason), nil
}

func rejectedWithError(err error) (results.OperationResult[bool, string], error) {
	return results.OperationResult[bool, string]{}, err
}

var _ Service = (*DiceService)(nil)
