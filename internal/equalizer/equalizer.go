// Package equalizer keeps the five band equalizer settings and pushes
// them to a playback engine.
package equalizer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/settings"
)

const (
	// MaxLevel is the highest band gain in millibels; MinLevel is its negation.
	MaxLevel = 1500
	MinLevel = -MaxLevel

	keyEnabled    = "eq.enabled"
	keyBandPrefix = "eq.band."
)

// ErrInvalidBand is returned for a band index outside Bands.
var ErrInvalidBand = errors.New("invalid equalizer band")

// Band is one equalizer band.
type Band struct {
	CenterHz float64
}

// Label returns a short frequency label such as "910Hz" or "3.6kHz".
func (b Band) Label() string {
	if b.CenterHz >= 1000 {
		return strconv.FormatFloat(b.CenterHz/1000, 'f', -1, 64) + "kHz"
	}
	return strconv.FormatFloat(b.CenterHz, 'f', -1, 64) + "Hz"
}

// Bands lists the bands in index order.
var Bands = []Band{
	{CenterHz: 60},
	{CenterHz: 230},
	{CenterHz: 910},
	{CenterHz: 3600},
	{CenterHz: 14000},
}

// Equalizer holds the current settings and persists every change.
type Equalizer struct {
	store settings.Store

	mu      sync.Mutex
	enabled bool
	levels  []int
	target  engine.EqualizerTarget
}

// New creates a disabled, flat equalizer backed by store.
func New(store settings.Store) *Equalizer {
	return &Equalizer{
		store:  store,
		levels: make([]int, len(Bands)),
	}
}

// Load reads the persisted settings and applies them to the attached target.
func (e *Equalizer) Load(ctx context.Context) error {
	enabled, err := settings.GetBool(ctx, e.store, keyEnabled, false)
	if err != nil {
		return fmt.Errorf("load equalizer: %w", err)
	}
	levels := make([]int, len(Bands))
	for i := range levels {
		level, err := settings.GetInt(ctx, e.store, bandKey(i), 0)
		if err != nil {
			return fmt.Errorf("load equalizer band %d: %w", i, err)
		}
		levels[i] = clamp(int(level))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
	e.levels = levels
	e.applyLocked()
	return nil
}

// Enabled reports whether the equalizer is on.
func (e *Equalizer) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// Levels returns a copy of the band levels in millibels.
func (e *Equalizer) Levels() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.levels...)
}

// SetEnabled switches the equalizer on or off.
func (e *Equalizer) SetEnabled(ctx context.Context, enabled bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Set(ctx, keyEnabled, settings.Bool(enabled)); err != nil {
		return fmt.Errorf("save equalizer state: %w", err)
	}
	e.enabled = enabled
	e.applyLocked()
	return nil
}

// SetBandLevel sets one band's gain and returns the stored, clamped level.
func (e *Equalizer) SetBandLevel(ctx context.Context, band, level int) (int, error) {
	if band < 0 || band >= len(Bands) {
		return 0, fmt.Errorf("band %d: %w", band, ErrInvalidBand)
	}
	level = clamp(level)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Set(ctx, bandKey(band), settings.Int(int32(level))); err != nil {
		return 0, fmt.Errorf("save equalizer band %d: %w", band, err)
	}
	e.levels[band] = level
	e.applyLocked()
	return level, nil
}

// Reset flattens every band.
func (e *Equalizer) Reset(ctx context.Context) error {
	entries := make([]settings.Entry, len(Bands))
	for i := range entries {
		entries[i] = settings.Entry{Key: bandKey(i), Value: settings.Int(0)}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.SetMany(ctx, entries); err != nil {
		return fmt.Errorf("reset equalizer: %w", err)
	}
	e.levels = make([]int, len(Bands))
	e.applyLocked()
	return nil
}

// Attach makes target receive the current and all future settings.
// A nil target detaches.
func (e *Equalizer) Attach(target engine.EqualizerTarget) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = target
	e.applyLocked()
}

// Apply pushes the current settings to target once.
func (e *Equalizer) Apply(target engine.EqualizerTarget) {
	e.mu.Lock()
	defer e.mu.Unlock()
	target.SetEqualizer(e.enabled, append([]int(nil), e.levels...))
}

func (e *Equalizer) applyLocked() {
	if e.target == nil {
		return
	}
	e.target.SetEqualizer(e.enabled, append([]int(nil), e.levels...))
}

func bandKey(band int) string {
	return keyBandPrefix + strconv.Itoa(band)
}

func clamp(level int) int {
	return max(MinLevel, min(MaxLevel, level))
}
