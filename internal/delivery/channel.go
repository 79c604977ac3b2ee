// Package delivery sends plain-text messages to a single address.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrDeliveryFailed wraps every transport error returned by a Channel.
var ErrDeliveryFailed = errors.New("delivery failed")

// Channel delivers one message to one address.
type Channel interface {
	Send(ctx context.Context, address, subject, body string) error
}

func failed(address string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrDeliveryFailed, address, err)
}

// LogChannel only logs what would have been sent. Used when SMTP credentials are absent.
type LogChannel struct {
	logger *zap.Logger
}

// NewLogChannel builds a LogChannel.
func NewLogChannel(logger *zap.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (l *LogChannel) Send(_ context.Context, address, subject, _ string) error {
	l.logger.Info("email not sent; SMTP credentials missing",
		zap.String("to", address),
		zap.String("subject", subject))
	return nil
}

// Message is one send recorded by a RecordingChannel.
type Message struct {
	Address string
	Subject string
	Body    string
}

// RecordingChannel keeps every message in memory. FailFor makes sends to
// the listed addresses fail.
type RecordingChannel struct {
	mu       sync.Mutex
	messages []Message
	FailFor  map[string]bool
}

func (r *RecordingChannel) Send(_ context.Context, address, subject, body string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Address: address, Subject: subject, Body: body})
	if r.FailFor[address] {
		return failed(address, errors.New("mailbox unavailable"))
	}
	return nil
}

// Messages returns a copy of everything sent so far.
func (r *RecordingChannel) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}
