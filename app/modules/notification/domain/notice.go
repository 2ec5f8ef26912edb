package notificationdomain

// Severity of a notice as shown to the participant.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarn    Severity = "warn"
	SeverityError   Severity = "error"
)

// Notice keys.
const (
	KeyOnNegative            = "onNegative"
	KeyOnOverLimit           = "onOverLimit"
	KeyNoActiveOwner         = "noActiveOwner"
	KeyUnexpectedError       = "unexpectedError"
	KeyMissingEditPermission = "missingEditPermission"
	KeyDisallowedGift        = "disallowedGift"
	KeyCleanupFailed         = "cleanupFailed"
)

// Notice is a user-facing outcome. It travels across the delegation channel
// as a structured failure, so its JSON shape is part of the wire format.
type Notice struct {
	Key      string         `json:"reason_code"`
	Severity Severity       `json:"severity"`
	Format   map[string]any `json:"format_args,omitempty"`
}

func (n Notice) Error() string {
	return "notice " + n.Key
}

func Warn(key string, format map[string]any) Notice {
	return Notice{Key: key, Severity: SeverityWarn, Format: format}
}

func Err(key string, format map[string]any) Notice {
	return Notice{Key: key, Severity: SeverityError, Format: format}
}
