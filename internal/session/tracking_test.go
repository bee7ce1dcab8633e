package session

import (
	"reflect"
	"testing"

	"github.com/david/opportunity-finder/internal/models"
)

const today = "18/10/2026"

func trackedList(n int) []models.TrackedOpportunity {
	out := make([]models.TrackedOpportunity, n)
	for i := range out {
		out[i] = models.NewTracked(record(i))
	}
	return out
}

func TestReduce_EmailSentStampsDate(t *testing.T) {
	opps := Reduce(trackedList(1), Action{Field: FieldEmailSent, Value: true}, today)
	tr := opps[0].Tracking
	if !tr.EmailSent || tr.EmailSentDate == nil || *tr.EmailSentDate != today {
		t.Fatalf("expected emailSent stamped, got %+v", tr)
	}

	opps = Reduce(opps, Action{Field: FieldEmailSent, Value: false}, today)
	tr = opps[0].Tracking
	if tr.EmailSent || tr.EmailSentDate != nil {
		t.Fatalf("expected emailSent cleared, got %+v", tr)
	}
}

func TestReduce_UnsetEmailClearsResponse(t *testing.T) {
	starts := []models.Tracking{
		{},
		{ResponseReceived: true, ResponseReceivedDate: ptr("1/1/2026")},
		{EmailSent: true, EmailSentDate: ptr("1/1/2026"), ResponseReceived: true, ResponseReceivedDate: ptr("2/1/2026"), InProduction: true},
	}
	for i, start := range starts {
		opps := trackedList(1)
		opps[0].Tracking = start

		opps = Reduce(opps, Action{Field: FieldEmailSent, Value: false}, today)
		tr := opps[0].Tracking
		if tr.ResponseReceived || tr.ResponseReceivedDate != nil {
			t.Fatalf("case %d: expected response cleared, got %+v", i, tr)
		}
		if tr.InProduction != start.InProduction {
			t.Fatalf("case %d: inProduction must be untouched", i)
		}
	}
}

func TestReduce_ResponseReceivedToggleClearsDate(t *testing.T) {
	opps := trackedList(1)
	opps = Reduce(opps, Action{Field: FieldEmailSent, Value: true}, "17/10/2026")
	opps = Reduce(opps, Action{Field: FieldResponseReceived, Value: true}, today)
	tr := opps[0].Tracking
	if !tr.ResponseReceived || tr.ResponseReceivedDate == nil || *tr.ResponseReceivedDate != today {
		t.Fatalf("expected response stamped, got %+v", tr)
	}

	opps = Reduce(opps, Action{Field: FieldResponseReceived, Value: false}, today)
	tr = opps[0].Tracking
	if tr.ResponseReceived || tr.ResponseReceivedDate != nil {
		t.Fatalf("expected response cleared, got %+v", tr)
	}
	if !tr.EmailSent || tr.EmailSentDate == nil || *tr.EmailSentDate != "17/10/2026" {
		t.Fatalf("email tracking must be untouched, got %+v", tr)
	}
}

func TestReduce_Idempotent(t *testing.T) {
	for _, field := range []Field{FieldEmailSent, FieldResponseReceived, FieldInProduction} {
		for _, value := range []bool{true, false} {
			base := trackedList(1)
			base[0].Tracking = models.Tracking{EmailSent: true, EmailSentDate: ptr(today)}

			once := Reduce(base, Action{Field: field, Value: value}, today)
			twice := Reduce(once, Action{Field: field, Value: value}, today)
			if !reflect.DeepEqual(once[0].Tracking, twice[0].Tracking) {
				t.Fatalf("%s=%v not idempotent: %+v vs %+v", field, value, once[0].Tracking, twice[0].Tracking)
			}
		}
	}
}

func TestReduce_InProductionHasNoSideEffects(t *testing.T) {
	opps := Reduce(trackedList(1), Action{Field: FieldInProduction, Value: true}, today)
	want := models.Tracking{InProduction: true}
	if opps[0].Tracking != want {
		t.Fatalf("expected only inProduction set, got %+v", opps[0].Tracking)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	in := trackedList(3)
	out := Reduce(in, Action{Index: 1, Field: FieldEmailSent, Value: true}, today)

	if in[1].Tracking.EmailSent {
		t.Fatal("input slice was mutated")
	}
	if !out[1].Tracking.EmailSent {
		t.Fatal("output missing update")
	}
	if out[0].ID != in[0].ID || out[2].ID != in[2].ID {
		t.Fatal("untouched elements must be carried over")
	}
}

func TestReduce_PanicsOnBadIndex(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range index")
		}
	}()
	Reduce(trackedList(1), Action{Index: 5, Field: FieldEmailSent, Value: true}, today)
}

func ptr(s string) *string { return &s }
