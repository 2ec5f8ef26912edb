package dicedomain

import (
	"sort"
	"strings"

	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	participantdomain "github.com/Black-And-White-Club/shared-dice/app/modules/participant/domain"
)

// TrayEntry is one die type as shown in one participant's row.
type TrayEntry struct {
	DieTypeID   string `json:"die_type_id"`
	Name        string `json:"name"`
	Img         string `json:"img"`
	Quantity    int    `json:"quantity"`
	Use         bool   `json:"use"`
	Gift        bool   `json:"gift"`
	Edit        bool   `json:"edit"`
	ClickAction string `json:"click_action"`
	Overflow    bool   `json:"overflow"`
}

// TrayRow is the tray of one participant.
type TrayRow struct {
	ParticipantID participantdomain.ID `json:"participant_id"`
	Name          string               `json:"name"`
	Active        bool                 `json:"active"`
	Entries       []TrayEntry          `json:"entries"`
}

// TrayInput is everything a tray view is computed from.
type TrayInput struct {
	Viewer            participantdomain.Participant
	Participants      []participantdomain.Participant
	DieTypes          []dicetypedomain.DieType
	Ledger            map[participantdomain.ID]map[string]int
	OverflowThreshold int
}

// BuildTray computes the tray of every participant as seen by the viewer.
// Disabled die types are left out; the rest are ordered by sort priority,
// highest first.
func BuildTray(in TrayInput) []TrayRow {
	types := make([]dicetypedomain.DieType, 0, len(in.DieTypes))
	for _, d := range in.DieTypes {
		if d.Enabled {
			types = append(types, d)
		}
	}
	sort.SliceStable(types, func(i, j int) bool {
		return types[i].SortPriority > types[j].SortPriority
	})

	own := in.Ledger[in.Viewer.ID]
	rows := make([]TrayRow, 0, len(in.Participants))
	for _, p := range in.Participants {
		held := in.Ledger[p.ID]
		row := TrayRow{ParticipantID: p.ID, Name: p.Name, Active: p.Active, Entries: make([]TrayEntry, 0, len(types))}
		for i, d := range types {
			qty := held[d.ID]
			isSelf := p.ID == in.Viewer.ID
			perm := d.EditPermissions.For(in.Viewer.Role)

			e := TrayEntry{
				DieTypeID: d.ID,
				Name:      d.Name,
				Img:       d.Img,
				Quantity:  qty,
				Use:       isSelf && qty > 0,
				Overflow:  i >= in.OverflowThreshold,
			}
			e.Gift = !e.Use && d.AllowGift && own[d.ID] > 0 && qty < d.Limit()
			e.Edit = perm == dicetypedomain.EditAll || (perm == dicetypedomain.EditSelf && isSelf)
			e.ClickAction = clickAction(e)
			row.Entries = append(row.Entries, e)
		}
		rows = append(rows, row)
	}
	return rows
}

func clickAction(e TrayEntry) string {
	parts := make([]string, 0, 3)
	if e.Use {
		parts = append(parts, "use")
	}
	if e.Gift {
		parts = append(parts, "gift")
	}
	if e.Edit {
		parts = append(parts, "edit")
	}
	return strings.Join(parts, "_")
}
