package outreach

import (
	"net/url"
	"strings"

	"github.com/david/opportunity-finder/internal/models"
)

// MailtoURL builds the compose link for an opportunity's proposal email. Subject and
// body are percent-encoded with spaces as %20 so every mail client reads them the same.
func MailtoURL(opp models.OpportunityRecord) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(opp.ManagerEmail)
	b.WriteString("?subject=")
	b.WriteString(encodeComponent(opp.ProposalEmail.Subject))
	b.WriteString("&body=")
	b.WriteString(encodeComponent(opp.ProposalEmail.Body))
	return b.String()
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// ProposalText is the clipboard payload for a proposal: the email body as generated.
func ProposalText(opp models.OpportunityRecord) string {
	return opp.ProposalEmail.Body
}
