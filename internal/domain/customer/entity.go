// internal/domain/customer/entity.go
package customer

import (
	"encoding/json"
	"time"

	xerrors "crm-service/internal/pkg/errors"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusLead     Status = "lead"
	StatusProspect Status = "prospect"
	StatusCustomer Status = "customer"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusLead, StatusProspect, StatusCustomer, StatusInactive:
		return true
	}
	return false
}

type Source string

const (
	SourceWebsite       Source = "website"
	SourceReferral      Source = "referral"
	SourceSocialMedia   Source = "social_media"
	SourceEmailCampaign Source = "email_campaign"
	SourceColdCall      Source = "cold_call"
	SourceEvent         Source = "event"
	SourceOther         Source = "other"
)

func (s Source) Valid() bool {
	switch s {
	case SourceWebsite, SourceReferral, SourceSocialMedia, SourceEmailCampaign,
		SourceColdCall, SourceEvent, SourceOther:
		return true
	}
	return false
}

type Type string

const (
	TypeIndividual Type = "individual"
	TypeBusiness   Type = "business"
)

func (t Type) Valid() bool {
	return t == TypeIndividual || t == TypeBusiness
}

// SyncStatus tracks whether the customer was registered with the POS platform.
type SyncStatus string

const (
	SyncPending  SyncStatus = "pending"
	SyncSynced   SyncStatus = "synced"
	SyncFailed   SyncStatus = "failed"
	SyncDisabled SyncStatus = "disabled"
)

func (s SyncStatus) Valid() bool {
	switch s {
	case SyncPending, SyncSynced, SyncFailed, SyncDisabled:
		return true
	}
	return false
}

var (
	ErrDuplicateEmail      = xerrors.Tag(xerrors.ErrConflict, "customer with this email already exists")
	ErrDuplicateExternalID = xerrors.Tag(xerrors.ErrConflict, "external client id already linked to another customer")
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type Customer struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Position  string `json:"position,omitempty"`

	Status       Status          `json:"status"`
	Source       Source          `json:"source"`
	Outlet       string          `json:"outlet"`
	Address      Address         `json:"address"`
	Notes        string          `json:"notes,omitempty"`
	Tags         pq.StringArray  `json:"tags"`
	DealValue    decimal.Decimal `json:"dealValue"`
	CustomerType Type            `json:"customerType"`

	RegistrationDate time.Time  `json:"registrationDate"`
	LastContactDate  *time.Time `json:"lastContactDate,omitempty"`

	// Sync metadata, written only by the creation workflow and batch resync.
	ExternalClientID *string    `json:"externalClientId"`
	SyncStatus       SyncStatus `json:"syncStatus"`
	SyncDate         *time.Time `json:"syncDate"`
	SyncError        *string    `json:"syncError"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName is derived and never stored.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// MarshalJSON adds the derived fullName to the wire representation.
func (c Customer) MarshalJSON() ([]byte, error) {
	type alias Customer
	return json.Marshal(struct {
		alias
		FullName string `json:"fullName"`
	}{
		alias:    alias(c),
		FullName: c.FullName(),
	})
}

// MarkSynced records a successful registration upstream.
func (c *Customer) MarkSynced(externalID string, at time.Time) {
	c.ExternalClientID = &externalID
	c.SyncStatus = SyncSynced
	c.SyncDate = &at
	c.SyncError = nil
}

// MarkSyncFailed records a failed registration attempt.
func (c *Customer) MarkSyncFailed(reason string) {
	c.SyncStatus = SyncFailed
	c.SyncError = &reason
}

type Stats struct {
	Total        int64            `json:"total"`
	ByStatus     map[string]int64 `json:"byStatus"`
	BySyncStatus map[string]int64 `json:"bySyncStatus"`
}
