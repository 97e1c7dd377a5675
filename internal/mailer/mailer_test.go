package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/campus-helpdesk/internal/config"
)

func TestNewFallsBackToLogMailer(t *testing.T) {
	m := New(config.MailConfig{}, zap.NewNop())
	_, ok := m.(*LogMailer)
	assert.True(t, ok)

	m = New(config.MailConfig{Host: "smtp.example.edu", Port: 587, From: "helpdesk@example.edu"}, zap.NewNop())
	_, ok = m.(*SMTPMailer)
	assert.True(t, ok)
}

func TestLogMailerRecordsDelivery(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))

	require.NoError(t, m.Send(context.Background(), "student@example.edu", "Ticket 0001 Status Update", "hello"))
	entries := logs.FilterField(zap.String("to", "student@example.edu")).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "mail delivery skipped; smtp not configured", entries[0].Message)
}

func TestSMTPMailerRejectsEmptyRecipient(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "127.0.0.1", Port: 1, From: "helpdesk@example.edu"})
	err := m.Send(context.Background(), "  ", "subject", "body")
	require.Error(t, err)
}

func TestSMTPMailerHonoursCancelledContext(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "127.0.0.1", Port: 1, From: "helpdesk@example.edu"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Send(ctx, "student@example.edu", "subject", "body")
	assert.ErrorIs(t, err, context.Canceled)
}
