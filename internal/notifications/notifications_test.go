package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"bookspace/pkg/events"
	"bookspace/pkg/kafka"
	"bookspace/pkg/logger"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMailer struct {
	sent []Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, email Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

type fakeSender struct {
	status int
	err    error
	got    *mail.SGMailV3
}

func (f *fakeSender) SendWithContext(_ context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	f.got = email
	if f.err != nil {
		return nil, f.err
	}
	return &rest.Response{StatusCode: f.status, Body: "body"}, nil
}

func message(t *testing.T, n events.Notification) kafka.Message {
	t.Helper()
	value, err := json.Marshal(n)
	require.NoError(t, err)
	return kafka.Message{Key: n.Recipient, Value: value, Topic: "bookspace.notifications"}
}

func bookingInfo() *events.BookingInfo {
	return &events.BookingInfo{
		ID:             "65a0000000000000000000d1",
		PlaceName:      "Main Hall",
		EventTitle:     "Team offsite",
		EventStartTime: time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
		EventEndTime:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Status:         "approved",
	}
}

func TestRender_OTP(t *testing.T) {
	expires := time.Date(2024, 1, 1, 10, 10, 0, 0, time.UTC)
	email, err := Render(events.Notification{Type: events.OTPRequested, Recipient: "new@example.com", Code: "123456", ExpiresAt: &expires})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", email.To)
	assert.Equal(t, "Your OTP for Signup", email.Subject)
	assert.Contains(t, email.Text, "Your OTP is: 123456")
	assert.Contains(t, email.Text, "10:10")
}

func TestRender_Booking(t *testing.T) {
	email, err := Render(events.Notification{
		Type:      events.BookingApproved,
		Recipient: "alice@example.com",
		Name:      "Alice",
		Booking:   bookingInfo(),
		Note:      "Keys at reception",
	})
	require.NoError(t, err)

	assert.Equal(t, "Booking Approved", email.Subject)
	assert.True(t, len(email.Text) > 0 && email.Text[:len("Hello Alice")] == "Hello Alice")
	assert.Contains(t, email.Text, "Place: Main Hall")
	assert.Contains(t, email.Text, "Mon 01 Jan 2024 10:00 UTC")
	assert.Contains(t, email.Text, "Note: Keys at reception")
}

func TestRender_Rejections(t *testing.T) {
	_, err := Render(events.Notification{Type: "booking.lost", Recipient: "a@example.com"})
	assert.Error(t, err)

	_, err = Render(events.Notification{Type: events.BookingCreated, Recipient: "a@example.com"})
	assert.Error(t, err)
}

func TestRender_EveryTypeHasTemplate(t *testing.T) {
	for _, typ := range []events.Type{
		events.OTPRequested, events.PasswordResetRequested,
		events.UserApproved, events.UserRejected, events.UserRemoved,
		events.BookingCreated, events.BookingApproved, events.BookingRejected, events.BookingCancelled,
	} {
		_, err := Render(events.Notification{Type: typ, Recipient: "a@example.com", Code: "123456", Booking: bookingInfo()})
		assert.NoError(t, err, typ)
	}
}

func TestDispatcher_Delivers(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, logger.Discard())

	err := d.Handle(context.Background(), message(t, events.Notification{Type: events.UserApproved, Recipient: "bob@example.com", Name: "Bob"}))
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "Account Approved", mailer.sent[0].Subject)
	assert.Equal(t, "Bob", mailer.sent[0].ToName)
}

func TestDispatcher_PermanentFailures(t *testing.T) {
	d := NewDispatcher(&recordingMailer{}, logger.Discard())

	tests := []struct {
		name string
		msg  kafka.Message
	}{
		{name: "garbage payload", msg: kafka.Message{Value: []byte("{not json")}},
		{name: "unknown type", msg: message(t, events.Notification{Type: "user.promoted", Recipient: "a@example.com"})},
		{name: "no recipient", msg: message(t, events.Notification{Type: events.UserApproved})},
		{name: "booking event without booking", msg: message(t, events.Notification{Type: events.BookingRejected, Recipient: "a@example.com"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Handle(context.Background(), tt.msg)
			require.Error(t, err)
			assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
		})
	}
}

func TestDispatcher_MailerErrorPropagates(t *testing.T) {
	mailer := &recordingMailer{err: kafka.NewTransientError("sendgrid unavailable", errors.New("503"))}
	d := NewDispatcher(mailer, logger.Discard())

	err := d.Handle(context.Background(), message(t, events.Notification{Type: events.UserRemoved, Recipient: "a@example.com"}))
	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypeTransient, kafka.ClassifyError(err))
}

func TestSendGridMailer(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		err      error
		wantType kafka.ErrorType
	}{
		{name: "accepted", status: http.StatusAccepted},
		{name: "throttled", status: http.StatusTooManyRequests, wantType: kafka.ErrorTypeTransient},
		{name: "provider outage", status: http.StatusBadGateway, wantType: kafka.ErrorTypeTransient},
		{name: "bad request", status: http.StatusBadRequest, wantType: kafka.ErrorTypePermanent},
		{name: "network failure", err: errors.New("dial tcp: i/o timeout"), wantType: kafka.ErrorTypeTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{status: tt.status, err: tt.err}
			m := NewSendGridMailerWithSender(sender, "no-reply@bookspace.local", "BookSpace", logger.Discard())

			err := m.Send(context.Background(), Email{To: "alice@example.com", ToName: "Alice", Subject: "Hi", Text: "Hello"})
			if tt.wantType == kafka.ErrorTypeUnknown {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, tt.wantType, kafka.ClassifyError(err))
			}

			require.NotNil(t, sender.got)
			assert.Equal(t, "no-reply@bookspace.local", sender.got.From.Address)
			assert.Equal(t, "Hi", sender.got.Subject)
		})
	}
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(logger.Discard()).Send(context.Background(), Email{To: "a@example.com"}))
}
