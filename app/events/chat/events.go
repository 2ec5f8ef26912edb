package chatevents

import "time"

// ChatMessageCreatedV1 is broadcast for every chat message a node creates.
const ChatMessageCreatedV1 = "shareddice.chat.message.created.v1"

type ChatMessageCreatedPayloadV1 struct {
	MessageID string         `json:"message_id"`
	AuthorID  string         `json:"author_id"`
	Action    string         `json:"action"`
	DieTypeID string         `json:"die_type_id"`
	TargetID  *string        `json:"target_id,omitempty"`
	Content   string         `json:"content"`
	Data      map[string]any `json:"data,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
