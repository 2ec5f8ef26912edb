package dicetypedb

import (
	"time"

	dicetypedomain "github.com/Black-And-White-Club/shared-dice/app/modules/dicetype/domain"
	"github.com/uptrace/bun"
)

// DieType is a row of the die_types table. Permission and message maps are
// stored as JSONB.
type DieType struct {
	bun.BaseModel `bun:"table:die_types,alias:dt"`

	ID              string                         `bun:"id,pk,type:varchar(64)"`
	Enabled         bool                           `bun:"enabled,notnull,default:true"`
	Name            string                         `bun:"name,notnull"`
	Img             string                         `bun:"img,notnull"`
	MaxPerUser      int                            `bun:"max_per_user,notnull,default:0"`
	EditPermissions dicetypedomain.EditPermissions `bun:"edit_permissions,type:jsonb,notnull"`
	AllowGift       bool                           `bun:"allow_gift,notnull,default:true"`
	SortPriority    int                            `bun:"sort_priority,notnull,default:0"`
	Messages        dicetypedomain.Messages        `bun:"messages,type:jsonb,notnull"`
	CreatedAt       time.Time                      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt       time.Time                      `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// FromDomain converts a domain die type into a row.
func FromDomain(d dicetypedomain.DieType) *DieType {
	return &DieType{
		ID:              d.ID,
		Enabled:         d.Enabled,
		Name:            d.Name,
		Img:             d.Img,
		MaxPerUser:      d.MaxPerUser,
		EditPermissions: d.EditPermissions,
		AllowGift:       d.AllowGift,
		SortPriority:    d.SortPriority,
		Messages:        d.Messages,
	}
}

// ToDomain converts a row into the domain die type.
func (r DieType) ToDomain() dicetypedomain.DieType {
	return dicetypedomain.DieType{
		ID:              r.ID,
		Enabled:         r.Enabled,
		Name:            r.Name,
		Img:             r.Img,
		MaxPerUser:      r.MaxPerUser,
		EditPermissions: r.EditPermissions,
		AllowGift:       r.AllowGift,
		SortPriority:    r.SortPriority,
		Messages:        r.Messages,
	}
}
