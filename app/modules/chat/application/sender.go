package chatservice

import (
	"context"
	"fmt"

	chatdomain "github.com/Black-And-White-Club/shared-dice/app/modules/chat/domain"
)

// MessageSender formats and sends one message per call.
type MessageSender struct {
	sink Sink
}

func NewMessageSender(sink Sink) *MessageSender {
	return &MessageSender{sink: sink}
}

// Send returns a suppressed outcome without creating anything when the die
// type's template for the action is empty.
func (s *MessageSender) Send(ctx context.Context, req Request) (Outcome, error) {
	template, err := resolveTemplate(req)
	if err != nil {
		return Outcome{}, err
	}
	if template == "" {
		return Outcome{Suppressed: true}, nil
	}

	content := chatdomain.FormatTemplate(template, chatdomain.TemplateData{
		DieName:    req.DieType.Name,
		SourceUser: req.SourceName,
		TargetUser: req.TargetName,
		Amount:     req.Amount,
	})

	msg, err := s.sink.Create(ctx, &chatdomain.Event{
		Action:    req.Action,
		DieTypeID: req.DieType.ID,
		TargetID:  req.TargetID,
		Data:      chatdomain.MergeData(content, req.MessageData),
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: msg}, nil
}

func resolveTemplate(req Request) (string, error) {
	template, ok := req.DieType.Messages.Template(req.Action)
	if !ok {
		return "", fmt.Errorf("%w: %q", chatdomain.ErrInvalidAction, req.Action)
	}
	return template, nil
}

var _ Sender = (*MessageSender)(nil)
