// Package typeclass infers a coarse data type from a single sample value.
package typeclass

import "regexp"

// TypeClass is the inferred kind of a sample value.
type TypeClass string

// Type classes, in the order Classify tests them.
const (
	Email  TypeClass = "email"
	Phone  TypeClass = "phone"
	Date   TypeClass = "date"
	ID     TypeClass = "id"
	Amount TypeClass = "amount"
	Number TypeClass = "number"
	Text   TypeClass = "text"
)

var patterns = []struct {
	class TypeClass
	re    *regexp.Regexp
}{
	{Email, regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)},
	{Phone, regexp.MustCompile(`^\+?1?\d{9,15}$`)},
	{Date, regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{2,4}$`)},
	{ID, regexp.MustCompile(`^[A-Z0-9]{3,}$`)},
	{Amount, regexp.MustCompile(`^\$?\d+(\.\d{2})?$`)},
	{Number, regexp.MustCompile(`^[0-9]+$`)},
}

// Classify returns the first class whose pattern matches the whole sample,
// or Text. It never fails.
func Classify(sample string) TypeClass {
	for _, p := range patterns {
		if p.re.MatchString(sample) {
			return p.class
		}
	}
	return Text
}

// IsStrict reports whether values of class t must only match the same class.
func IsStrict(t TypeClass) bool {
	switch t {
	case Date, Phone, ID, Email, Amount, Number:
		return true
	}
	return false
}

// NumericLike reports membership in the numeric bucket.
func NumericLike(t TypeClass) bool {
	return t == ID || t == Number
}

// TextLike reports membership in the text bucket.
func TextLike(t TypeClass) bool {
	return t == Text || t == Email || t == Phone
}

// SameBucket reports whether two different classes share a bucket.
func SameBucket(a, b TypeClass) bool {
	return (NumericLike(a) && NumericLike(b)) || (TextLike(a) && TextLike(b))
}

// String implements fmt.Stringer.
func (t TypeClass) String() string {
	return string(t)
}
