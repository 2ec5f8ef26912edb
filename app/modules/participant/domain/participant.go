package participantdomain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID identifies a participant across every node of a session.
type ID string

func (id ID) String() string { return string(id) }

// Role is the participant's permission tier.
type Role int

const (
	RolePlayer     Role = 1
	RoleTrusted    Role = 2
	RoleAssistant  Role = 3
	RoleGamemaster Role = 4
)

func (r Role) IsValid() bool {
	return r >= RolePlayer && r <= RoleGamemaster
}

func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "PLAYER"
	case RoleTrusted:
		return "TRUSTED"
	case RoleAssistant:
		return "ASSISTANT"
	case RoleGamemaster:
		return "GAMEMASTER"
	default:
		return "UNKNOWN"
	}
}

// ParseRole accepts either the tier name (case-insensitive) or its number.
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		r := Role(n)
		if !r.IsValid() {
			return 0, fmt.Errorf("invalid role %d", n)
		}
		return r, nil
	}
	switch strings.ToUpper(s) {
	case "PLAYER":
		return RolePlayer, nil
	case "TRUSTED":
		return RoleTrusted, nil
	case "ASSISTANT":
		return RoleAssistant, nil
	case "GAMEMASTER", "GM":
		return RoleGamemaster, nil
	}
	return 0, fmt.Errorf("invalid role %q", s)
}

// Participant is one member of the shared session.
type Participant struct {
	ID         ID        `json:"id"`
	Name       string    `json:"name"`
	Role       Role      `json:"role"`
	Active     bool      `json:"active"`
	LastSeenAt time.Time `json:"last_seen_at"`
	JoinedAt   time.Time `json:"joined_at"`
}

// IsConnected reports whether p is active and was seen within ttl of now.
func (p Participant) IsConnected(now time.Time, ttl time.Duration) bool {
	if !p.Active {
		return false
	}
	return now.Sub(p.LastSeenAt) <= ttl
}

// HasAuthority reports whether actor may write target's ledger records.
// Everyone owns their own record; assistants and gamemasters own all of them.
func HasAuthority(actor, target Participant) bool {
	if actor.ID == target.ID {
		return true
	}
	return actor.Role >= RoleAssistant
}
