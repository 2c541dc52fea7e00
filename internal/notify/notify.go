// Package notify formats job alerts and delivers them to subscriber
// channels. Delivery is best-effort: adapters report success or failure
// and never retry.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alshabili/first-backend/internal/jobs"
)

// Message is an opaque, platform-specific message blob produced by a
// Formatter and consumed by the matching channel adapter.
type Message []byte

// Formatter renders a job record into a platform-specific Message.
type Formatter interface {
	Format(platform jobs.Platform, category string, record jobs.JobRecord) (Message, error)
}

// Channel delivers one message to one target address. The bool is the
// only outcome surfaced; errors are logged inside the adapter.
type Channel interface {
	Send(ctx context.Context, target string, msg Message) bool
}

// Clock abstracts time.Now for deterministic formatting in tests.
type Clock interface {
	Now() time.Time
}

// Dispatcher routes a send to the adapter for its platform. The switch
// is exhaustive over the Platform enum; an unknown platform is a logged
// delivery failure, never a panic.
type Dispatcher struct {
	telegram Channel
	discord  Channel
	logger   *zap.Logger
}

// NewDispatcher constructs a Dispatcher from per-platform adapters.
func NewDispatcher(telegram, discord Channel, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{telegram: telegram, discord: discord, logger: logger}
}

// Send delivers msg to target over the given platform.
func (d *Dispatcher) Send(ctx context.Context, platform jobs.Platform, target string, msg Message) bool {
	switch platform {
	case jobs.PlatformTelegram:
		return d.telegram.Send(ctx, target, msg)
	case jobs.PlatformDiscord:
		return d.discord.Send(ctx, target, msg)
	case jobs.PlatformUnknown:
		fallthrough
	default:
		d.logger.Warn("dispatch to unknown platform dropped", zap.String("platform", platform.String()))
		return false
	}
}
