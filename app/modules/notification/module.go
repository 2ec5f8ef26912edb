package notification

import (
	"context"
	"fmt"

	notificationservice "github.com/Black-And-White-Club/shared-dice/app/modules/notification/application"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/Black-And-White-Club/shared-dice/app/observability"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Module represents the notification sink.
type Module struct {
	NotificationService *notificationservice.NotificationService
}

// NewNotificationModule loads the message catalog for locale and builds the
// notifier of the local participant.
func NewNotificationModule(
	ctx context.Context,
	obs observability.Observability,
	publisher message.Publisher,
	self participantdomain.ID,
	locale string,
) (*Module, error) {
	obs.Logger.InfoContext(ctx, "notification.NewNotificationModule initializing")

	localizer, err := notificationservice.NewLocalizer(locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification catalog: %w", err)
	}

	return &Module{
		NotificationService: notificationservice.NewNotificationService(self, localizer, publisher, obs.Logger),
	}, nil
}
