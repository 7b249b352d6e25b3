package entity

import "strings"

// Buyer is the customer attached to a storefront or in-store order.
type Buyer struct {
	Name     string   `json:"name" valid:"required"`
	Email    string   `json:"email" valid:"email,optional"`
	Phone    string   `json:"phone" valid:"-"`
	Address  string   `json:"address" valid:"-"`
	Agencies []string `json:"agencies,omitempty" valid:"-"`
}

// Identity returns the key used to count distinct buyers: the lowercased
// email when present, the phone otherwise.
func (b Buyer) Identity() string {
	if e := strings.TrimSpace(b.Email); e != "" {
		return strings.ToLower(e)
	}
	return strings.TrimSpace(b.Phone)
}
