package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yoockh/recruitportal/internal/pipeline"
)

// Branding is shared by every template.
type Branding struct {
	Organization string // e.g. "Convergent Business Technologies"
	Program      string // e.g. "CGAP"
	SenderName   string // display name in From
}

type templateData struct {
	Branding
	Name string
	Data map[string]string
}

type emailTemplate struct {
	subject string
	body    *template.Template
}

const layoutOpen = `<div style="font-family: sans-serif; max-width: 600px; margin: auto; padding: 20px; border: 1px solid #eee; border-radius: 10px;">`
const layoutClose = `<hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
<p style="font-size: 12px; color: #666;">{{.Organization}} - Recruitment Team</p>
</div>`

var templates = map[pipeline.EmailKind]emailTemplate{
	pipeline.EmailAssessmentInvite: {
		subject: "Action Required: Schedule Your Assessment",
		body: template.Must(template.New("invite").Parse(layoutOpen + `
<h2 style="color: #2563eb;">Congratulations, {{.Name}}!</h2>
<p>Your application for the {{.Program}} program has been approved. The next step is a technical assessment.</p>
<p>Please use the link below to select a convenient time slot for your assessment:</p>
<div style="text-align: center; margin: 30px 0;">
<a href="{{index .Data "booking_link"}}" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 5px; font-weight: bold;">Schedule Assessment</a>
</div>
<p>If you have any questions, feel free to reply to this email.</p>
` + layoutClose)),
	},
	pipeline.EmailRecommended: {
		subject: "Great News About Your Application",
		body: template.Must(template.New("recommended").Parse(layoutOpen + `
<h2 style="color: #059669;">Good News, {{.Name}}!</h2>
<p>We are pleased to inform you that the interview panel has recommended you for the next phase of the {{.Program}} program.</p>
<p>Our team will reach out to you shortly with more details regarding the final onboarding process.</p>
<p>Congratulations once again!</p>
` + layoutClose)),
	},
	pipeline.EmailNotRecommended: {
		subject: "Update Regarding Your Application",
		body: template.Must(template.New("not_recommended").Parse(layoutOpen + `
<h2>Update on your application, {{.Name}}</h2>
<p>Thank you for giving us the opportunity to consider you for the {{.Program}} program.</p>
<p>After careful consideration, we regret to inform you that we will not be moving forward with your application at this time.</p>
<p>We appreciate your interest and wish you all the best in your future endeavors.</p>
` + layoutClose)),
	},
}

// Render returns the subject and HTML body for kind.
func Render(b Branding, kind pipeline.EmailKind, recipientName string, data map[string]string) (string, string, error) {
	tpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", kind)
	}
	if kind == pipeline.EmailAssessmentInvite && data["booking_link"] == "" {
		return "", "", fmt.Errorf("template %q requires booking_link", kind)
	}

	var buf bytes.Buffer
	if err := tpl.body.Execute(&buf, templateData{Branding: b, Name: recipientName, Data: data}); err != nil {
		return "", "", err
	}
	subject := tpl.subject
	if b.Organization != "" {
		subject += " - " + b.Organization
	}
	return subject, buf.String(), nil
}
