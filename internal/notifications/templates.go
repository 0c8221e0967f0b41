package notifications

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"bookspace/pkg/events"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

var funcs = template.FuncMap{
	"when": func(t time.Time) string { return t.UTC().Format("Mon 02 Jan 2006 15:04 MST") },
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(body))
}

const bookingLines = `Event: {{.Booking.EventTitle}}
{{if .Booking.PlaceName}}Place: {{.Booking.PlaceName}}
{{end}}From: {{when .Booking.EventStartTime}}
To: {{when .Booking.EventEndTime}}`

var templates = map[events.Type]emailTemplate{
	events.OTPRequested: {
		subject: "Your OTP for Signup",
		body:    mustTemplate("otp", `Your OTP is: {{.Code}}{{if .ExpiresAt}} (valid until {{when .ExpiresAt.UTC}}){{end}}`),
	},
	events.PasswordResetRequested: {
		subject: "Your OTP for Password Reset",
		body:    mustTemplate("reset", `Your OTP for password reset is: {{.Code}}{{if .ExpiresAt}} (valid until {{when .ExpiresAt.UTC}}){{end}}`),
	},
	events.UserApproved: {
		subject: "Account Approved",
		body:    mustTemplate("user-approved", `Your account has been approved. You can now log in.`),
	},
	events.UserRejected: {
		subject: "Account Rejected",
		body:    mustTemplate("user-rejected", `Your account has been rejected. Please contact an administrator for more information.`),
	},
	events.UserRemoved: {
		subject: "Account Removed",
		body:    mustTemplate("user-removed", `Your account has been removed from the platform.`),
	},
	events.BookingCreated: {
		subject: "Booking Request Received",
		body:    mustTemplate("booking-created", "Your booking request is pending approval.\n\n"+bookingLines),
	},
	events.BookingApproved: {
		subject: "Booking Approved",
		body:    mustTemplate("booking-approved", "Your booking has been approved.\n\n"+bookingLines+"{{if .Note}}\n\nNote: {{.Note}}{{end}}"),
	},
	events.BookingRejected: {
		subject: "Booking Rejected",
		body:    mustTemplate("booking-rejected", "Your booking has been rejected.\n\n"+bookingLines+"{{if .Note}}\n\nNote: {{.Note}}{{end}}"),
	},
	events.BookingCancelled: {
		subject: "Booking Cancelled",
		body:    mustTemplate("booking-cancelled", "Your booking has been cancelled.\n\n"+bookingLines+"{{if .Note}}\n\nNote: {{.Note}}{{end}}"),
	},
}

// Render builds the email for n. Booking events without booking details are
// rejected since their body would be empty.
func Render(n events.Notification) (Email, error) {
	tmpl, ok := templates[n.Type]
	if !ok {
		return Email{}, fmt.Errorf("no template for event type %q", n.Type)
	}
	if n.Booking == nil && isBookingEvent(n.Type) {
		return Email{}, fmt.Errorf("event %q carries no booking", n.Type)
	}

	var body bytes.Buffer
	if err := tmpl.body.Execute(&body, n); err != nil {
		return Email{}, fmt.Errorf("failed to render %q: %w", n.Type, err)
	}

	text := body.String()
	if n.Name != "" {
		text = "Hello " + n.Name + ",\n\n" + text
	}

	return Email{
		To:      n.Recipient,
		ToName:  n.Name,
		Subject: tmpl.subject,
		Text:    text,
	}, nil
}

func isBookingEvent(t events.Type) bool {
	switch t {
	case events.BookingCreated, events.BookingApproved, events.BookingRejected, events.BookingCancelled:
		return true
	}
	return false
}
