package dicetypeevents

// DieTypeChangedV1 is broadcast after any write to the die type registry.
const DieTypeChangedV1 = "shareddice.dicetype.changed.v1"

// Registry write operations.
const (
	OperationCreated  = "created"
	OperationUpdated  = "updated"
	OperationDeleted  = "deleted"
	OperationReplaced = "replaced"
)

type DieTypeChangedPayloadV1 struct {
	// DieTypeID is empty for OperationReplaced.
	DieTypeID string `json:"die_type_id,omitempty"`
	Operation string `json:"operation"`
	ChangedBy string `json:"changed_by"`
}
