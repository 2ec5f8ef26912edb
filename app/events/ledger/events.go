package ledgerevents

import "time"

// LedgerChangedV1 is broadcast after a ledger entry was written or deleted.
const LedgerChangedV1 = "shareddice.ledger.changed.v1"

// LedgerChangedPayloadV1 describes one ledger write.
type LedgerChangedPayloadV1 struct {
	ParticipantID string    `json:"participant_id"`
	DieTypeID     string    `json:"die_type_id"`
	Quantity      int       `json:"quantity"`
	Deleted       bool      `json:"deleted"`
	ChangedBy     string    `json:"changed_by"`
	ChangedAt     time.Time `json:"changed_at"`
}
