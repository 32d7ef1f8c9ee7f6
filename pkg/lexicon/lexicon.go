// Package lexicon normalizes field names and resolves synonyms between them.
//
// A Lexicon is built once and never mutated, so a single instance can be
// shared by concurrent match runs.
package lexicon

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameReplacer = strings.NewReplacer("_", " ", "-", " ")

// Normalize lower-cases name and turns underscores and hyphens into spaces.
func Normalize(name string) string {
	// cases.Caser is stateful, so each call gets its own.
	return nameReplacer.Replace(cases.Lower(language.Und).String(name))
}

// Lexicon indexes every normalized term to the synonym groups containing it.
type Lexicon struct {
	groups [][]string
	index  map[string][]int
}

// New builds a lexicon from synonym groups. Terms are normalized and
// de-duplicated; a term may belong to several groups.
func New(groups ...[]string) *Lexicon {
	l := &Lexicon{index: make(map[string][]int)}
	for _, group := range groups {
		var terms []string
		for _, term := range group {
			n := Normalize(term)
			if n == "" || slices.Contains(terms, n) {
				continue
			}
			terms = append(terms, n)
		}
		if len(terms) < 2 || l.hasGroup(terms) {
			continue
		}
		id := len(l.groups)
		l.groups = append(l.groups, terms)
		for _, term := range terms {
			l.index[term] = append(l.index[term], id)
		}
	}
	return l
}

func (l *Lexicon) hasGroup(terms []string) bool {
	sorted := slices.Sorted(slices.Values(terms))
	for _, g := range l.groups {
		if len(g) == len(terms) && slices.Equal(slices.Sorted(slices.Values(g)), sorted) {
			return true
		}
	}
	return false
}

// AreSynonyms reports whether a single group contains both names after
// normalization. It is symmetric. A nil lexicon knows no synonyms.
func (l *Lexicon) AreSynonyms(a, b string) bool {
	if l == nil {
		return false
	}
	na, nb := Normalize(a), Normalize(b)
	for _, id := range l.index[na] {
		if slices.Contains(l.groups[id], nb) {
			return true
		}
	}
	return false
}

// Groups returns a copy of the normalized synonym groups in construction order.
func (l *Lexicon) Groups() [][]string {
	if l == nil {
		return nil
	}
	out := make([][]string, len(l.groups))
	for i, g := range l.groups {
		out[i] = slices.Clone(g)
	}
	return out
}

// Terms returns every indexed term, sorted.
func (l *Lexicon) Terms() []string {
	if l == nil {
		return nil
	}
	terms := make([]string, 0, len(l.index))
	for t := range l.index {
		terms = append(terms, t)
	}
	slices.Sort(terms)
	return terms
}

// Len returns the number of groups.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.groups)
}

// Default returns the built-in customer-record lexicon.
func Default() *Lexicon {
	return New(
		[]string{"customer_id", "cust_id", "customerid", "customer id", "client_id", "clientid"},
		[]string{"name", "full_name", "fullname", "full name", "contact_name", "person_name"},
		[]string{"email", "contact_email", "email_address", "mail", "emailid"},
		[]string{"registration_date", "signup_date", "registrationdate", "registration date", "join_date", "created_at"},
		[]string{"phone", "mobile_number", "telephone", "mobile", "cell", "contact_number"},
		[]string{"billing_address", "shipping_address", "address", "location", "addr", "home_address"},
		[]string{"loyalty_points", "rewards_earned", "points", "reward points"},
		[]string{"subscription_type", "membership_status", "subscription", "membership"},
		[]string{"preferred_language", "preferred_contact_method", "language", "contact_method"},
	)
}
