package ledgerdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Entry is one participant's holding of one die type.
type Entry struct {
	bun.BaseModel `bun:"table:ledger_entries,alias:le"`

	ParticipantID string    `bun:"participant_id,pk,type:varchar(64)"`
	DieTypeID     string    `bun:"die_type_id,pk,type:varchar(64)"`
	Quantity      int       `bun:"quantity,notnull,default:0"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}
