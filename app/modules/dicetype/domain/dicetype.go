package dicetypedomain

import (
	"errors"
	"fmt"
	"math"
	"strings"

	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/google/uuid"
)

// EditPermission controls which ledgers a role tier may change directly.
type EditPermission string

const (
	EditNone EditPermission = "NONE"
	EditSelf EditPermission = "SELF"
	EditAll  EditPermission = "ALL"
)

func (p EditPermission) IsValid() bool {
	switch p {
	case EditNone, EditSelf, EditAll:
		return true
	}
	return false
}

// Allows reports whether the permission covers a change by actor to target.
func (p EditPermission) Allows(actor, target participantdomain.ID) bool {
	switch p {
	case EditAll:
		return true
	case EditSelf:
		return actor == target
	default:
		return false
	}
}

// EditPermissions maps each role tier to its permission.
type EditPermissions struct {
	Player     EditPermission `json:"player"`
	Trusted    EditPermission `json:"trusted"`
	Assistant  EditPermission `json:"assistant"`
	Gamemaster EditPermission `json:"gamemaster"`
}

// For returns the permission of role. Unknown roles get EditNone.
func (e EditPermissions) For(role participantdomain.Role) EditPermission {
	var p EditPermission
	switch role {
	case participantdomain.RolePlayer:
		p = e.Player
	case participantdomain.RoleTrusted:
		p = e.Trusted
	case participantdomain.RoleAssistant:
		p = e.Assistant
	case participantdomain.RoleGamemaster:
		p = e.Gamemaster
	}
	if !p.IsValid() {
		return EditNone
	}
	return p
}

func DefaultEditPermissions() EditPermissions {
	return EditPermissions{
		Player:     EditNone,
		Trusted:    EditNone,
		Assistant:  EditAll,
		Gamemaster: EditAll,
	}
}

// Action is a ledger operation that can produce a chat message.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionUse    Action = "use"
	ActionGift   Action = "gift"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionAdd, ActionRemove, ActionUse, ActionGift:
		return true
	}
	return false
}

// Messages holds one chat template per action. An empty template suppresses
// the message for that action.
type Messages struct {
	Add    string `json:"add"`
	Remove string `json:"remove"`
	Use    string `json:"use"`
	Gift   string `json:"gift"`
}

// Template returns the template of action. ok is false for unknown actions.
func (m Messages) Template(action Action) (template string, ok bool) {
	switch action {
	case ActionAdd:
		return m.Add, true
	case ActionRemove:
		return m.Remove, true
	case ActionUse:
		return m.Use, true
	case ActionGift:
		return m.Gift, true
	}
	return "", false
}

func DefaultMessages() Messages {
	return Messages{
		Add:    "[$sourceUser] gave [$targetUser] [$amount] [$dieName].",
		Remove: "[$sourceUser] removed [$amount] [$dieName] from [$targetUser].",
		Use:    "[$sourceUser] has used [$amount] [$dieName].",
		Gift:   "[$sourceUser] has gifted [$amount] [$dieName] to [$targetUser].",
	}
}

const (
	DefaultName = "d20"
	DefaultImg  = "icons/svg/d20-grey.svg"
)

// ErrInvalidDieType is returned by Validate.
var ErrInvalidDieType = errors.New("invalid die type")

// MaxQuantity is the largest quantity a ledger entry can store.
const MaxQuantity = math.MaxInt32

// DieType is a configured kind of shared die.
type DieType struct {
	ID              string          `json:"id"`
	Enabled         bool            `json:"enabled"`
	Name            string          `json:"name"`
	Img             string          `json:"img"`
	MaxPerUser      int             `json:"max_per_user"`
	EditPermissions EditPermissions `json:"edit_permissions"`
	AllowGift       bool            `json:"allow_gift"`
	SortPriority    int             `json:"sort_priority"`
	Messages        Messages        `json:"messages"`
}

// New returns an enabled die type with default settings and a fresh id.
func New() DieType {
	return DieType{
		ID:              uuid.NewString(),
		Enabled:         true,
		Name:            DefaultName,
		Img:             DefaultImg,
		MaxPerUser:      0,
		EditPermissions: DefaultEditPermissions(),
		AllowGift:       true,
		SortPriority:    0,
		Messages:        DefaultMessages(),
	}
}

// IsUnlimited reports whether holders may own any number of this die.
func (d DieType) IsUnlimited() bool {
	return d.MaxPerUser == 0
}

// Limit returns the maximum quantity per participant. Unlimited types
// report MaxQuantity.
func (d DieType) Limit() int {
	if d.IsUnlimited() || d.MaxPerUser > MaxQuantity {
		return MaxQuantity
	}
	return d.MaxPerUser
}

func (d DieType) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidDieType)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name must not be blank", ErrInvalidDieType)
	}
	if d.MaxPerUser < 0 {
		return fmt.Errorf("%w: max_per_user must be >= 0, got %d", ErrInvalidDieType, d.MaxPerUser)
	}
	if d.MaxPerUser > MaxQuantity {
		return fmt.Errorf("%w: max_per_user must be <= %d, got %d", ErrInvalidDieType, MaxQuantity, d.MaxPerUser)
	}
	for _, p := range []EditPermission{d.EditPermissions.Player, d.EditPermissions.Trusted, d.EditPermissions.Assistant, d.EditPermissions.Gamemaster} {
		if !p.IsValid() {
			return fmt.Errorf("%w: unknown edit permission %q", ErrInvalidDieType, p)
		}
	}
	return nil
}

// Changes is a partial update. Nil fields are left untouched; the id can
// never change.
type Changes struct {
	Enabled         *bool            `json:"enabled,omitempty"`
	Name            *string          `json:"name,omitempty"`
	Img             *string          `json:"img,omitempty"`
	MaxPerUser      *int             `json:"max_per_user,omitempty"`
	EditPermissions *EditPermissions `json:"edit_permissions,omitempty"`
	AllowGift       *bool            `json:"allow_gift,omitempty"`
	SortPriority    *int             `json:"sort_priority,omitempty"`
	Messages        *Messages        `json:"messages,omitempty"`
}

// Apply returns a copy of d with the changes applied.
func (c Changes) Apply(d DieType) DieType {
	if c.Enabled != nil {
		d.Enabled = *c.Enabled
	}
	if c.Name != nil {
		d.Name = *c.Name
	}
	if c.Img != nil {
		d.Img = *c.Img
	}
	if c.MaxPerUser != nil {
		d.MaxPerUser = *c.MaxPerUser
	}
	if c.EditPermissions != nil {
		d.EditPermissions = *c.EditPermissions
	}
	if c.AllowGift != nil {
		d.AllowGift = *c.AllowGift
	}
	if c.SortPriority != nil {
		d.SortPriority = *c.SortPriority
	}
	if c.Messages != nil {
		d.Messages = *c.Messages
	}
	return d
}
