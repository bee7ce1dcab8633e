package models

import (
	"github.com/google/uuid"
)

// Rating is the model's acceptance-probability label.
type Rating string

const (
	RatingHigh   Rating = "Alta"
	RatingMedium Rating = "Media"
	RatingLow    Rating = "Baja"
)

// Ratings lists the accepted literals in descending order.
var Ratings = []Rating{RatingHigh, RatingMedium, RatingLow}

type ProposalEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type AcceptanceProbability struct {
	Rating        Rating  `json:"rating"`
	Justification string  `json:"justification"`
	Score         float64 `json:"score"`
}

// OpportunityRecord is one item exactly as the generative model returns it.
type OpportunityRecord struct {
	Sector                string                `json:"sector"`
	BusinessType          string                `json:"businessType"`
	ManagerEmail          string                `json:"managerEmail"`
	UrgentNeed            string                `json:"urgentNeed"`
	AISolutionName        string                `json:"aiSolutionName"`
	AISolutionDescription string                `json:"aiSolutionDescription"`
	AppCreationPrompt     string                `json:"appCreationPrompt"`
	ProposalEmail         ProposalEmail         `json:"proposalEmail"`
	AcceptanceProbability AcceptanceProbability `json:"acceptanceProbability"`
	EaseOfCreation        float64               `json:"easeOfCreation"`
	OpportunityForGain    float64               `json:"opportunityForGain"`
}

// Tracking is the manual outreach state kept per opportunity.
// Dates are nil unless the matching flag is set.
type Tracking struct {
	EmailSent            bool    `json:"emailSent"`
	EmailSentDate        *string `json:"emailSentDate"`
	ResponseReceived     bool    `json:"responseReceived"`
	ResponseReceivedDate *string `json:"responseReceivedDate"`
	InProduction         bool    `json:"inProduction"`
}

type TrackedOpportunity struct {
	ID uuid.UUID `json:"id"`
	OpportunityRecord
	Tracking Tracking `json:"tracking"`
}

// NewTracked wraps a generated record with a fresh ID and zeroed tracking.
func NewTracked(rec OpportunityRecord) TrackedOpportunity {
	return TrackedOpportunity{
		ID:                uuid.New(),
		OpportunityRecord: rec,
	}
}

// Clone returns a copy that shares no pointers with t.
func (t TrackedOpportunity) Clone() TrackedOpportunity {
	out := t
	out.Tracking.EmailSentDate = cloneString(t.Tracking.EmailSentDate)
	out.Tracking.ResponseReceivedDate = cloneString(t.Tracking.ResponseReceivedDate)
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
