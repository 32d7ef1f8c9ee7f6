package lexicon

import (
	"maps"
	"slices"
)

// Overrides maps a target field name to the source field it must match.
// The zero value is an empty table.
type Overrides struct {
	m map[string]string
}

// NewOverrides copies m into a read-only table.
func NewOverrides(m map[string]string) Overrides {
	return Overrides{m: maps.Clone(m)}
}

// DefaultOverrides returns the built-in forced mappings.
func DefaultOverrides() Overrides {
	return NewOverrides(map[string]string{
		"cust_id":          "customer_id",
		"full_name":        "name",
		"contact_email":    "email",
		"signup_date":      "registration_date",
		"mobile_number":    "phone",
		"shipping_address": "billing_address",
		"rewards_earned":   "loyalty_points",
	})
}

// Lookup returns the source field forced for target.
func (o Overrides) Lookup(target string) (string, bool) {
	source, ok := o.m[target]
	return source, ok
}

// Len returns the number of entries.
func (o Overrides) Len() int {
	return len(o.m)
}

// Targets returns the overridden target names, sorted.
func (o Overrides) Targets() []string {
	return slices.Sorted(maps.Keys(o.m))
}

// Map returns a copy of the table.
func (o Overrides) Map() map[string]string {
	return maps.Clone(o.m)
}

// Merge returns a table holding o's entries replaced by other's.
func (o Overrides) Merge(other Overrides) Overrides {
	m := make(map[string]string, o.Len()+other.Len())
	maps.Copy(m, o.m)
	maps.Copy(m, other.m)
	return Overrides{m: m}
}
