// internal/service/customer/validate.go
package customer

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"crm-service/internal/domain/customer"
)

const (
	maxTags   = 20
	maxTagLen = 50
)

var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

type fieldErrors map[string]string

func (f fieldErrors) required(field, value string) {
	if value == "" {
		f[field] = "is required"
	}
}

func (f fieldErrors) maxLen(field, value string, n int) {
	if utf8.RuneCountInString(value) > n {
		f[field] = "must be at most " + strconv.Itoa(n) + " characters"
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeOutlet(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeCreate trims and canonicalizes the request in place.
func normalizeCreate(req *customer.CreateCustomerRequest) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = normalizeEmail(req.Email)
	req.Outlet = normalizeOutlet(req.Outlet)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Company = strings.TrimSpace(req.Company)
	req.Position = strings.TrimSpace(req.Position)
	req.Notes = strings.TrimSpace(req.Notes)
	req.Address = trimAddress(req.Address)
	req.Tags = cleanTags(req.Tags)
}

func trimAddress(a customer.Address) customer.Address {
	return customer.Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: strings.TrimSpace(a.Country),
	}
}

func validateCreate(req *customer.CreateCustomerRequest) error {
	errs := fieldErrors{}

	errs.required("firstName", req.FirstName)
	errs.maxLen("firstName", req.FirstName, 50)
	errs.required("lastName", req.LastName)
	errs.maxLen("lastName", req.LastName, 50)
	errs.required("outlet", req.Outlet)
	errs.maxLen("outlet", req.Outlet, 20)

	switch {
	case req.Email == "":
		errs["email"] = "is required"
	case utf8.RuneCountInString(req.Email) > 255:
		errs["email"] = "must be at most 255 characters"
	case !emailPattern.MatchString(req.Email):
		errs["email"] = "must be a valid email"
	}

	errs.maxLen("phone", req.Phone, 20)
	errs.maxLen("company", req.Company, 100)
	errs.maxLen("position", req.Position, 100)
	errs.maxLen("notes", req.Notes, 1000)

	errs.maxLen("address.street", req.Address.Street, 255)
	errs.maxLen("address.city", req.Address.City, 100)
	errs.maxLen("address.state", req.Address.State, 100)
	errs.maxLen("address.zipCode", req.Address.ZipCode, 20)
	errs.maxLen("address.country", req.Address.Country, 100)

	if len(req.Tags) > maxTags {
		errs["tags"] = "must have at most " + strconv.Itoa(maxTags) + " entries"
	}
	for _, t := range req.Tags {
		if utf8.RuneCountInString(t) > maxTagLen {
			errs["tags"] = "each tag must be at most " + strconv.Itoa(maxTagLen) + " characters"
			break
		}
	}

	if req.Status != "" && !req.Status.Valid() {
		errs["status"] = "must be one of lead, prospect, customer, inactive"
	}
	if req.Source != "" && !req.Source.Valid() {
		errs["source"] = "is not a recognised source"
	}
	if req.CustomerType != "" && !req.CustomerType.Valid() {
		errs["customerType"] = "must be individual or business"
	}
	if req.DealValue != nil && req.DealValue.IsNegative() {
		errs["dealValue"] = "cannot be negative"
	}

	return errs.err()
}

// validateRecord checks an edited customer before it is written back.
func validateRecord(c *customer.Customer) error {
	req := customer.CreateCustomerRequest{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		Email:        c.Email,
		Outlet:       c.Outlet,
		Phone:        c.Phone,
		Company:      c.Company,
		Position:     c.Position,
		Status:       c.Status,
		Source:       c.Source,
		Address:      c.Address,
		Notes:        c.Notes,
		Tags:         c.Tags,
		CustomerType: c.CustomerType,
		DealValue:    &c.DealValue,
	}
	return validateCreate(&req)
}
