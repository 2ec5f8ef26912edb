package notificationevents

// NotificationV1 carries a localized notice to the participant it was raised for.
const NotificationV1 = "shareddice.notification.v1"

type NotificationPayloadV1 struct {
	RecipientID string         `json:"recipient_id"`
	Key         string         `json:"key"`
	Severity    string         `json:"severity"`
	Text        string         `json:"text"`
	Format      map[string]any `json:"format,omitempty"`
}
