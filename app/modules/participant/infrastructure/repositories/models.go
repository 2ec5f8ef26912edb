package participantdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Participant is a row of the participants table.
type Participant struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID         string    `bun:"id,pk,type:varchar(64)"`
	Name       string    `bun:"name,notnull"`
	Role       int       `bun:"role,notnull,default:1"`
	Active     bool      `bun:"active,notnull,default:false"`
	LastSeenAt time.Time `bun:"last_seen_at,nullzero,notnull,default:current_timestamp"`
	JoinedAt   time.Time `bun:"joined_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt  time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
