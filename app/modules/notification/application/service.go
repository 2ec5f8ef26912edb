package notificationservice

import (
	"context"
	"log/slog"

	notificationevents "github.com/Black-And-White-Club/shared-dice/app/events/notification"
	notificationdomain "github.com/Black-And-White-Club/shared-dice/app/modules/notification/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/shared/attr"
	"github.com/Black-And-White-Club/shared-dice/app/shared/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Notifier delivers notices to the local participant.
type Notifier interface {
	Notify(ctx context.Context, notice notificationdomain.Notice, opts ...NotifyOption)
	// Unexpected logs err with full context and tells the participant that
	// something went wrong, without repeating the error on the console.
	Unexpected(ctx context.Context, msg string, err error, fields ...slog.Attr)
}

type notifyOptions struct {
	console bool
}

// NotifyOption customises a single Notify call.
type NotifyOption func(*notifyOptions)

// WithoutConsole suppresses the log line for a notice.
func WithoutConsole() NotifyOption {
	return func(o *notifyOptions) { o.console = false }
}

// NotificationService implements the Notifier interface.
type NotificationService struct {
	self      participantdomain.ID
	localizer *Localizer
	publisher message.Publisher
	logger    *slog.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(
	self participantdomain.ID,
	localizer *Localizer,
	publisher message.Publisher,
	logger *slog.Logger,
) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		self:      self,
		localizer: localizer,
		publisher: publisher,
		logger:    logger,
	}
}

func (s *NotificationService) Notify(ctx context.Context, notice notificationdomain.Notice, opts ...NotifyOption) {
	o := notifyOptions{console: true}
	for _, opt := range opts {
		opt(&o)
	}

	text := s.localizer.Localize(notice.Key, notice.Format)

	if o.console {
		s.logger.Log(ctx, levelFor(notice.Severity), text,
			attr.ExtractCorrelationID(ctx),
			attr.String("notice", notice.Key),
			attr.String("severity", string(notice.Severity)),
		)
	}

	if s.publisher == nil {
		return
	}
	payload := notificationevents.NotificationPayloadV1{
		RecipientID: string(s.self),
		Key:         notice.Key,
		Severity:    string(notice.Severity),
		Text:        text,
		Format:      notice.Format,
	}
	if err := handlerwrapper.Publish(ctx, s.publisher, notificationevents.NotificationV1, payload); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish notification",
			attr.ExtractCorrelationID(ctx),
			attr.String("notice", notice.Key),
			attr.Error(err),
		)
	}
}

func (s *NotificationService) Unexpected(ctx context.Context, msg string, err error, fields ...slog.Attr) {
	args := make([]any, 0, len(fields)+2)
	args = append(args, attr.ExtractCorrelationID(ctx), attr.Error(err))
	for _, f := range fields {
		args = append(args, f)
	}
	s.logger.ErrorContext(ctx, msg, args...)

	s.Notify(ctx, notificationdomain.Err(notificationdomain.KeyUnexpectedError, nil), WithoutConsole())
}

func levelFor(severity notificationdomain.Severity) slog.Level {
	switch severity {
	case notificationdomain.SeverityError:
		return slog.LevelError
	case notificationdomain.SeverityWarn:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

var _ Notifier = (*NotificationService)(nil)
