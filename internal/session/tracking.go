package session

import (
	"fmt"

	"github.com/david/opportunity-finder/internal/models"
)

// Field names a user-editable tracking flag.
type Field string

const (
	FieldEmailSent        Field = "emailSent"
	FieldResponseReceived Field = "responseReceived"
	FieldInProduction     Field = "inProduction"
)

// ParseField validates a field name coming from outside the process.
func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldEmailSent, FieldResponseReceived, FieldInProduction:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Action sets one tracking flag on the opportunity at Index.
type Action struct {
	Index int
	Field Field
	Value bool
}

// Reduce applies a to opps and returns a new slice in which only the touched element
// is replaced. today is the date stamped on flags that become true.
//
// Rules:
//   - emailSent stamps or clears emailSentDate; unsetting it also clears the response.
//   - responseReceived stamps or clears responseReceivedDate.
//   - inProduction has no side effects.
//
// An out-of-range index or unknown field is a programming error and panics.
func Reduce(opps []models.TrackedOpportunity, a Action, today string) []models.TrackedOpportunity {
	if a.Index < 0 || a.Index >= len(opps) {
		panic(fmt.Sprintf("session: tracking index %d out of range [0,%d)", a.Index, len(opps)))
	}

	out := make([]models.TrackedOpportunity, len(opps))
	copy(out, opps)

	opp := out[a.Index].Clone()
	t := &opp.Tracking

	switch a.Field {
	case FieldEmailSent:
		t.EmailSent = a.Value
		t.EmailSentDate = stamp(a.Value, today)
		if !a.Value {
			t.ResponseReceived = false
			t.ResponseReceivedDate = nil
		}
	case FieldResponseReceived:
		t.ResponseReceived = a.Value
		t.ResponseReceivedDate = stamp(a.Value, today)
	case FieldInProduction:
		t.InProduction = a.Value
	default:
		panic(fmt.Sprintf("session: unknown tracking field %q", a.Field))
	}

	out[a.Index] = opp
	return out
}

func stamp(set bool, today string) *string {
	if !set {
		return nil
	}
	d := today
	return &d
}
