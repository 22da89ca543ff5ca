// internal/domain/customer/dto.go
package customer

import "github.com/shopspring/decimal"

// CreateCustomerRequest is validated by the customer service so every field
// error is reported together.
type CreateCustomerRequest struct {
	FirstName    string           `json:"firstName"`
	LastName     string           `json:"lastName"`
	Email        string           `json:"email"`
	Outlet       string           `json:"outlet"`
	Phone        string           `json:"phone"`
	Company      string           `json:"company"`
	Position     string           `json:"position"`
	Status       Status           `json:"status"`
	Source       Source           `json:"source"`
	Address      Address          `json:"address"`
	Notes        string           `json:"notes"`
	Tags         []string         `json:"tags"`
	DealValue    *decimal.Decimal `json:"dealValue"`
	CustomerType Type             `json:"customerType"`
}

// UpdateCustomerRequest carries direct field edits. Sync metadata is not part of it.
type UpdateCustomerRequest struct {
	FirstName    *string          `json:"firstName"`
	LastName     *string          `json:"lastName"`
	Email        *string          `json:"email"`
	Outlet       *string          `json:"outlet"`
	Phone        *string          `json:"phone"`
	Company      *string          `json:"company"`
	Position     *string          `json:"position"`
	Status       *Status          `json:"status"`
	Source       *Source          `json:"source"`
	Address      *Address         `json:"address"`
	Notes        *string          `json:"notes"`
	Tags         []string         `json:"tags"`
	DealValue    *decimal.Decimal `json:"dealValue"`
	CustomerType *Type            `json:"customerType"`
}

type ListFilters struct {
	Status     string `form:"status"`
	Outlet     string `form:"outlet"`
	SyncStatus string `form:"syncStatus"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

type ListResponse struct {
	Customers []Customer `json:"customers"`
	Total     int64      `json:"total"`
	Page      int        `json:"page"`
	Limit     int        `json:"limit"`
	Pages     int        `json:"pages"`
}
