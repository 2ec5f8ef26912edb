package participantevents

import "time"

// PresenceChangedV1 is broadcast when a node joins or leaves the session.
const PresenceChangedV1 = "shareddice.participant.presence.v1"

type PresenceChangedPayloadV1 struct {
	ParticipantID string    `json:"participant_id"`
	Active        bool      `json:"active"`
	At            time.Time `json:"at"`
}
