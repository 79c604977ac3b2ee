package delivery

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/favorite-board/internal/config"
)

func TestRecordingChannel(t *testing.T) {
	ch := &RecordingChannel{FailFor: map[string]bool{"bad@example.com": true}}

	require.NoError(t, ch.Send(context.Background(), "ok@example.com", "s", "b"))
	err := ch.Send(context.Background(), "bad@example.com", "s", "b")
	assert.ErrorIs(t, err, ErrDeliveryFailed)

	assert.Len(t, ch.Messages(), 2)
}

func TestLogChannelNeverFails(t *testing.T) {
	assert.NoError(t, NewLogChannel(zap.NewNop()).Send(context.Background(), "a@example.com", "s", "b"))
}

func TestBuildMessage(t *testing.T) {
	msg := string(BuildMessage("board@example.com", "a@example.com", "New\r\nFavorite", "line one\nline two"))

	assert.True(t, strings.HasPrefix(msg, "From: board@example.com\r\nTo: a@example.com\r\n"))
	assert.Contains(t, msg, "Subject: New  Favorite\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline one\r\nline two"))
}

func TestNewSMTPChannelDefaults(t *testing.T) {
	ch := NewSMTPChannel(config.NotificationConfig{SMTPHost: "smtp.example.com", SMTPUsername: "me@example.com", SMTPEncryption: "bogus"})
	assert.Equal(t, EncryptionStartTLS, ch.enc)
	assert.Equal(t, "me@example.com", ch.from)

	ch = NewSMTPChannel(config.NotificationConfig{SMTPEncryption: "ssl/tls"})
	assert.Equal(t, EncryptionSSLTLS, ch.enc)
}

func TestSMTPChannelDialFailureIsDeliveryFailed(t *testing.T) {
	ch := NewSMTPChannel(config.NotificationConfig{SMTPHost: "127.0.0.1", SMTPPort: 1, SMTPEncryption: "NONE"})

	err := ch.Send(context.Background(), "a@example.com", "s", "b")
	assert.ErrorIs(t, err, ErrDeliveryFailed)
}
