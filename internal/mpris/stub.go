//go:build !linux

package mpris

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/cadencefm/cadence/internal/playback"
)

// Adapter is a no-op on non-Linux platforms.
type Adapter struct{}

// New returns a no-op adapter on non-Linux platforms.
func New(_ Controller, _ logrus.FieldLogger) (*Adapter, error) {
	return &Adapter{}, nil
}

// Follow is a no-op on non-Linux platforms.
func (a *Adapter) Follow(_ context.Context, _ *playback.Subscription) {}

// Close is a no-op on non-Linux platforms.
func (a *Adapter) Close() error {
	return nil
}
