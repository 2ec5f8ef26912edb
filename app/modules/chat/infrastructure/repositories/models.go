package chatdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Message is a row of the chat_messages table.
type Message struct {
	bun.BaseModel `bun:"table:chat_messages,alias:cm"`

	ID        uuid.UUID      `bun:"id,pk,type:uuid"`
	AuthorID  string         `bun:"author_id,notnull,type:varchar(64)"`
	Action    string         `bun:"action,notnull,type:varchar(16)"`
	DieTypeID string         `bun:"die_type_id,notnull,type:varchar(64)"`
	TargetID  *string        `bun:"target_id,type:varchar(64)"`
	Content   string         `bun:"content,notnull"`
	Data      map[string]any `bun:"data,type:jsonb"`
	CreatedAt time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
