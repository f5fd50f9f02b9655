package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/equalizer"
)

// track is one decoded file wired into the speaker:
// decoder -> resampler -> ctrl -> filter.
type track struct {
	item     engine.Item
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	filter   *filterSlot
}

func openTrack(item engine.Item) (*track, error) {
	f, err := os.Open(item.Path)
	if err != nil {
		return nil, err
	}
	streamer, format, err := decode(f, item.Path)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(item.Path), err)
	}

	var s beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		s = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}
	ctrl := &beep.Ctrl{Streamer: s}
	return &track{
		item:     item,
		file:     f,
		streamer: streamer,
		format:   format,
		ctrl:     ctrl,
		filter:   &filterSlot{s: ctrl},
	}, nil
}

func decode(f *os.File, path string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		if err := skipID3v2(f); err != nil {
			return nil, beep.Format{}, err
		}
		return flac.Decode(f)
	case ".wav":
		return wav.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	default:
		return nil, beep.Format{}, fmt.Errorf("unsupported format: %s", filepath.Ext(path))
	}
}

// The methods below touch the streamer and must run under speaker.Lock.

func (t *track) position() time.Duration {
	return t.format.SampleRate.D(t.streamer.Position())
}

func (t *track) duration() time.Duration {
	return t.format.SampleRate.D(t.streamer.Len())
}

func (t *track) seek(pos time.Duration) error {
	n := t.format.SampleRate.N(pos)
	n = max(0, min(n, t.streamer.Len()-1))
	return t.streamer.Seek(n)
}

func (t *track) err() error {
	return t.streamer.Err()
}

func (t *track) setFilter(enabled bool, levels []int) {
	sections := eqSections(enabled, levels)
	if len(sections) == 0 {
		t.filter.s = t.ctrl
		return
	}
	t.filter.s = effects.NewEqualizer(t.ctrl, sampleRate, sections)
}

func (t *track) close() error {
	err := t.streamer.Close()
	if cerr := t.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// filterSlot lets the filter chain be swapped while the speaker streams it.
type filterSlot struct {
	s beep.Streamer
}

func (f *filterSlot) Stream(samples [][2]float64) (int, bool) { return f.s.Stream(samples) }
func (f *filterSlot) Err() error                              { return f.s.Err() }

// eqSections builds one peaking section per band with a non-zero gain.
// Levels are in millibels.
func eqSections(enabled bool, levels []int) effects.MonoEqualizerSections {
	if !enabled {
		return nil
	}
	var sections effects.MonoEqualizerSections
	for i, level := range levels {
		if level == 0 || i >= len(equalizer.Bands) {
			continue
		}
		gain := float64(level) / 100
		f0 := equalizer.Bands[i].CenterHz
		sections = append(sections, effects.MonoEqualizerSection{
			F0: f0,
			Bf: f0 * 0.7,
			GB: gain / 2,
			G0: 0,
			G:  gain,
		})
	}
	return sections
}

// skipID3v2 moves past an ID3v2 tag some taggers prepend to FLAC files.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return err
	}
	if n < len(header) || string(header[:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}
	// Tag size is a 28-bit syncsafe integer.
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
