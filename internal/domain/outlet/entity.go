// internal/domain/outlet/entity.go
package outlet

import (
	"time"

	xerrors "crm-service/internal/pkg/errors"
)

type Status string

const (
	StatusActive      Status = "active"
	StatusInactive    Status = "inactive"
	StatusMaintenance Status = "maintenance"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive || s == StatusMaintenance
}

type Type string

const (
	TypeStore     Type = "store"
	TypeWarehouse Type = "warehouse"
	TypeOffice    Type = "office"
	TypeOnline    Type = "online"
)

func (t Type) Valid() bool {
	switch t {
	case TypeStore, TypeWarehouse, TypeOffice, TypeOnline:
		return true
	}
	return false
}

var ErrDuplicateCode = xerrors.Tag(xerrors.ErrConflict, "outlet code already exists")

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type Outlet struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description,omitempty"`
	Address     Address   `json:"address"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Manager     string    `json:"manager,omitempty"`
	Status      Status    `json:"status"`
	Type        Type      `json:"type"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DisplayName renders "Name (CODE)" for pickers.
func (o *Outlet) DisplayName() string {
	return o.Name + " (" + o.Code + ")"
}

type Stats struct {
	Total       int64            `json:"total"`
	Active      int64            `json:"active"`
	Inactive    int64            `json:"inactive"`
	Maintenance int64            `json:"maintenance"`
	ByType      map[string]int64 `json:"byType"`
}
