package chatdomain

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
	"github.com/google/uuid"
)

// Hook names.
const (
	HookPreCreateChatMessage = "preCreateChatMessage"
	HookCreateChatMessage    = "createChatMessage"
)

// ErrInvalidAction is returned for actions that have no message template.
var ErrInvalidAction = errors.New("invalid action")

// Message is a persisted chat message about a ledger action.
type Message struct {
	ID        uuid.UUID
	AuthorID  participantdomain.ID
	Action    dicetypedomain.Action
	DieTypeID string
	TargetID  *participantdomain.ID
	Content   string
	Data      map[string]any
	CreatedAt time.Time
}

// Event is passed to the chat hooks. Before hooks may mutate Data; Message
// is set once the message exists.
type Event struct {
	Action    dicetypedomain.Action
	DieTypeID string
	TargetID  *participantdomain.ID
	Data      map[string]any
	Message   *Message
}

// Content returns the "content" entry of Data.
func (e *Event) Content() string {
	if v, ok := e.Data["content"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// TemplateData holds the values available to [$name] placeholders.
type TemplateData struct {
	DieName    string
	SourceUser string
	TargetUser string
	Amount     int
}

func (d TemplateData) lookup(name string) string {
	switch name {
	case "dieName":
		return d.DieName
	case "sourceUser":
		return d.SourceUser
	case "targetUser":
		return d.TargetUser
	case "amount":
		if d.Amount == 0 {
			return ""
		}
		return strconv.Itoa(d.Amount)
	}
	return ""
}

var placeholder = regexp.MustCompile(`\[\$(.+?)\]`)

// FormatTemplate replaces [$name] placeholders. Names are trimmed; empty or
// unknown values leave the placeholder as written.
func FormatTemplate(template string, data TemplateData) string {
	return placeholder.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSpace(placeholder.FindStringSubmatch(match)[1])
		if v := data.lookup(name); v != "" {
			return v
		}
		return match
	})
}

// MergeData returns {content} overlaid with custom. Entries of custom win.
func MergeData(content string, custom map[string]any) map[string]any {
	out := make(map[string]any, len(custom)+1)
	out["content"] = content
	for k, v := range custom {
		out[k] = v
	}
	return out
}
