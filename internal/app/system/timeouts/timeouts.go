// internal/app/system/timeouts/timeouts.go

// Package timeouts provides the deadlines handlers put on store and
// collaborator calls. Each call site picks a class:
//
//   - Ping: health checks
//   - Short: single-document reads and writes
//   - Medium: list queries and multi-step reads
//   - Long: cascades, AI generation, report rendering and upload
package timeouts

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 60 * time.Second
)

type class int

const (
	classPing class = iota
	classShort
	classMedium
	classLong
	numClasses
)

var defaults = [numClasses]time.Duration{DefaultPing, DefaultShort, DefaultMedium, DefaultLong}

// current holds nanoseconds per class; handlers read it on every request.
var current [numClasses]atomic.Int64

func init() { Reset() }

func get(c class) time.Duration { return time.Duration(current[c].Load()) }

func Ping() time.Duration   { return get(classPing) }
func Short() time.Duration  { return get(classShort) }
func Medium() time.Duration { return get(classMedium) }
func Long() time.Duration   { return get(classLong) }

// Config holds deadline overrides. Zero or negative values keep the current
// setting.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func (c Config) values() [numClasses]time.Duration {
	return [numClasses]time.Duration{c.Ping, c.Short, c.Medium, c.Long}
}

// Configure applies cfg. Bootstrap calls it once from the application config.
func Configure(cfg Config) {
	for i, d := range cfg.values() {
		if d > 0 {
			current[i].Store(int64(d))
		}
	}
}

// Reset restores the defaults.
func Reset() {
	for i, d := range defaults {
		current[i].Store(int64(d))
	}
}

// Current returns the active deadlines.
func Current() Config {
	return Config{Ping: Ping(), Short: Short(), Medium: Medium(), Long: Long()}
}

// WithTimeout is context.WithTimeout whose cancel logs a warning when the
// deadline was hit.
//
//	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), h.Log, "recommendations.generateCareer")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && ctx.Err() == context.DeadlineExceeded {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
