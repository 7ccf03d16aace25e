package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/responsewatch/backend/internal/models"
)

type Renderer struct {
	Brand           string
	LinkBase        string
	Location        *time.Location
	WarningMinutes  int
	CriticalMinutes int
}

func (r Renderer) Subject(a Alert) string {
	if a.Tier == models.TierCritical {
		return fmt.Sprintf("URGENT: %s Support - No response for %d+ minutes - %s", r.Brand, r.CriticalMinutes, a.Conversation.ContactName)
	}
	return fmt.Sprintf("WARNING: %s Support - No response for %d+ minutes - %s", r.Brand, r.WarningMinutes, a.Conversation.ContactName)
}

// ConversationLink points at the conversation in the CRM, or is empty when
// the location is unknown.
func (r Renderer) ConversationLink(c models.Conversation) string {
	if c.LocationID == "" || r.LinkBase == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/conversations/%s",
		strings.TrimRight(r.LinkBase, "/"), url.PathEscape(c.LocationID), url.PathEscape(c.ConversationID))
}

type emailView struct {
	Brand      string
	Critical   bool
	Heading    string
	Minutes    int
	Contact    string
	LastBody   string
	Channel    string
	AssignedTo string
	Link       string
	LocalTime  string
	Zone       string
}

func (r Renderer) view(a Alert) emailView {
	v := emailView{
		Brand:      r.Brand,
		Critical:   a.Tier == models.TierCritical,
		Heading:    "WARNING ALERT",
		Minutes:    a.Minutes(),
		Contact:    a.Conversation.ContactName,
		LastBody:   "N/A",
		Channel:    "Unknown",
		AssignedTo: a.Conversation.AssignedTo,
		Link:       r.ConversationLink(a.Conversation),
	}
	if v.Critical {
		v.Heading = "URGENT ALERT"
	}
	if last, ok := a.Conversation.LastInboundMessage(); ok {
		v.LastBody = last.Body
		v.Channel = last.Channel
	}
	loc := r.Location
	if loc == nil {
		loc = time.UTC
	}
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}
	local := at.In(loc)
	v.LocalTime = local.Format("Jan 2, 2006 3:04 PM")
	v.Zone = local.Format("MST")
	return v
}

var emailTemplate = template.Must(template.New("alert").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; border: 2px solid #1a3a52;">
  <div style="background: #1a3a52; color: white; padding: 20px; text-align: center;">
    <h1 style="margin: 0; font-size: 24px;">{{.Brand}}</h1>
    <p style="margin: 5px 0 0 0; opacity: 0.9;">Message Response Monitor</p>
  </div>
  <div style="background: {{if .Critical}}#f44336{{else}}#ff9800{{end}}; color: white; padding: 20px;">
    <h2 style="margin: 0; font-size: 22px;">{{.Heading}}</h2>
    <p style="margin: 10px 0 0 0; font-size: 18px; font-weight: bold;">{{.AssignedTo}}: Customer waiting {{.Minutes}} minutes</p>
  </div>
  <div style="background: #f5f5f5; padding: 25px;">
    <h3 style="margin-top: 0; color: #1a3a52;">Contact: {{.Contact}}</h3>
    <div style="background: white; padding: 15px; border-radius: 5px; margin: 15px 0; border-left: 4px solid #1a3a52;">
      <strong style="color: #666;">Last Message:</strong>
      <p style="margin: 8px 0 0 0; color: #333; line-height: 1.5;">{{.LastBody}}</p>
    </div>
    <table style="width: 100%; border-collapse: collapse; margin: 15px 0;">
      <tr><td style="padding: 8px 0; color: #666; font-weight: bold;">Channel:</td><td style="padding: 8px 0; color: #333;">{{.Channel}}</td></tr>
      <tr><td style="padding: 8px 0; color: #666; font-weight: bold;">Time Elapsed:</td><td style="padding: 8px 0; color: #333; font-weight: bold;">{{.Minutes}} minutes</td></tr>
      <tr><td style="padding: 8px 0; color: #666; font-weight: bold;">Assigned To:</td><td style="padding: 8px 0; color: #333;">{{.AssignedTo}}</td></tr>
    </table>
    {{- if .Link}}
    <a href="{{.Link}}" style="display: inline-block; background: #1a3a52; color: white; padding: 14px 28px; text-decoration: none; border-radius: 5px; margin-top: 15px; font-weight: bold;">Open Conversation &rarr;</a>
    {{- end}}
  </div>
  <div style="background: #e0e0e0; padding: 15px; text-align: center;">
    <p style="margin: 0; font-size: 12px; color: #666;">{{.Brand}} Support Team Monitor<br>{{.LocalTime}} {{.Zone}}</p>
  </div>
</div>
`))

func (r Renderer) HTML(a Alert) (string, error) {
	var buf bytes.Buffer
	if err := emailTemplate.Execute(&buf, r.view(a)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Text is the plain-text alternative part.
func (r Renderer) Text(a Alert) string {
	v := r.view(a)
	var b strings.Builder
	fmt.Fprintf(&b, "%s - %s\n\n", v.Brand, v.Heading)
	fmt.Fprintf(&b, "Contact: %s\n", v.Contact)
	fmt.Fprintf(&b, "Waiting: %d minutes\n", v.Minutes)
	fmt.Fprintf(&b, "Channel: %s\n", v.Channel)
	fmt.Fprintf(&b, "Assigned To: %s\n", v.AssignedTo)
	fmt.Fprintf(&b, "Last Message: %s\n", v.LastBody)
	if v.Link != "" {
		fmt.Fprintf(&b, "Open: %s\n", v.Link)
	}
	fmt.Fprintf(&b, "\n%s %s\n", v.LocalTime, v.Zone)
	return b.String()
}
