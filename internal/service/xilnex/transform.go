// internal/service/xilnex/transform.go
package xilnex

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"crm-service/internal/domain/customer"
)

// FallbackClientCode is used when the local id carries no usable digits.
const FallbackClientCode = 9001

// OutletNamer resolves an outlet code to the name shown on the POS.
type OutletNamer interface {
	OutletName(ctx context.Context, code string) string
}

type ClientRecord struct {
	BuddyReferenceID                   int     `json:"buddyReferenceID"`
	BuddyPoints                        float64 `json:"buddyPoints"`
	LifetimePointValueToUpgrade        float64 `json:"lifetimePointValueToUpgrade"`
	LifetimePointValueToMaintain       float64 `json:"lifetimePointValueToMaintain"`
	TargetLifetimePointValueToUpgrade  float64 `json:"targetLifetimePointValueToUpgrade"`
	TargetLifetimePointValueToMaintain float64 `json:"targetLifetimePointValueToMaintain"`
	ID                                 int     `json:"id"`
	Name                               string  `json:"name"`
	AlternateLookup                    string  `json:"alternateLookup"`
	CreditLimit                        float64 `json:"creditLimit"`
	Code                               string  `json:"code"`
	Email                              string  `json:"email"`
	Type                               string  `json:"type"`
	RegistrationCode                   string  `json:"registrationCode"`
	FirstName                          string  `json:"firstName"`
	LastName                           string  `json:"lastName"`
	Mobile                             string  `json:"mobile"`
	Active                             bool    `json:"active"`
	AllowAllOutlets                    bool    `json:"allowAllOutlets"`
	GSTInclusive                       bool    `json:"gstInclusive"`
	PointValue                         float64 `json:"pointValue"`
	LifetimePointValue                 float64 `json:"lifetimePointValue"`
	LastLifetimePointValue             float64 `json:"lastLifetimePointValue"`
	CreatedOutlet                      string  `json:"createdOutlet"`
	PointFactor                        float64 `json:"pointFactor"`
	PaymentTerms                       int     `json:"paymentTerms"`
	EnableDOB                          bool    `json:"enableDOB"`
	AllowToReceiveMarketing            bool    `json:"allowToReceiveMarketing"`
	IndividualDiscount                 float64 `json:"individualDiscount"`
	Verified                           bool    `json:"verified"`
	PurchaseLimit                      float64 `json:"purchaseLimit"`
	IsActivatedBuddyReward             bool    `json:"isActivatedBuddyReward"`
	IsActivatedBuddyReferenceReward    bool    `json:"isActivatedBuddyReferenceReward"`
	IsActivatedStoreReferenceReward    bool    `json:"isActivatedStoreReferenceReward"`
	FloatingPointValue                 float64 `json:"floatingPointValue"`
	IsAutoEmailReceipt                 bool    `json:"isAutoEmailReceipt"`
	ELHDNIsForeign                     bool    `json:"eLHDNIsForeign"`
	PriceMarkupPercentage              float64 `json:"priceMarkupPercentage"`
	ControlledDiscountLimit            float64 `json:"controlledDiscountLimit"`
}

type ClientRequest struct {
	Client                 ClientRecord `json:"client"`
	IsRequireGenerateXCard bool         `json:"isRequireGenerateXCard"`
	IsCreditTransferable   bool         `json:"isCreditTransferable"`
}

// Transform maps a customer into the Xilnex client schema. Apart from the
// outlet lookup it depends only on its input.
func (c *Client) Transform(ctx context.Context, contact *customer.Customer) ClientRequest {
	outletName := contact.Outlet
	if c.outlets != nil {
		outletName = c.outlets.OutletName(ctx, contact.Outlet)
	}

	code := ClientCode(contact.ID)

	return ClientRequest{
		Client: ClientRecord{
			ID:              code,
			Code:            strconv.Itoa(code),
			Name:            contact.FullName(),
			Email:           contact.Email,
			FirstName:       contact.FirstName,
			LastName:        contact.LastName,
			Mobile:          contact.Phone,
			Active:          true,
			AllowAllOutlets: true,
			CreatedOutlet:   outletName,
		},
	}
}

// ClientCode derives the numeric client code from the last four digits of the
// local id.
func ClientCode(localID string) int {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, localID)

	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n == 0 {
		return FallbackClientCode
	}
	return n
}

// ExternalStatus maps a CRM lifecycle status onto the POS client status. The
// client payload has no status field, so the value only appears in sync logs.
func ExternalStatus(s customer.Status) string {
	switch s {
	case customer.StatusLead, customer.StatusProspect:
		return "prospect"
	case customer.StatusCustomer:
		return "active"
	case customer.StatusInactive:
		return "inactive"
	default:
		return "prospect"
	}
}
