package nowplaying

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/cadencefm/cadence/internal/engine"
	"github.com/cadencefm/cadence/internal/equalizer"
	"github.com/cadencefm/cadence/internal/library"
	"github.com/cadencefm/cadence/internal/playback"
)

const (
	playSymbol  = "▶"
	pauseSymbol = "⏸"
	stopSymbol  = "■"

	// headerRows counts every line above the queue list, borders included.
	headerRows = 14
)

// View renders the now playing panel followed by the queue.
func (m Model) View() string {
	innerWidth := max(m.width-4, 20)

	var b strings.Builder
	b.WriteString(m.renderStatus(innerWidth))
	b.WriteString("\n\n")
	b.WriteString(m.renderSong(innerWidth))
	b.WriteString("\n\n")
	b.WriteString(m.renderProgress(innerWidth))
	b.WriteString("\n\n")
	b.WriteString(m.renderEqualizer(innerWidth))
	top := panelStyle.Width(m.width - 2).Render(b.String())

	queue := m.renderQueue(innerWidth, max(m.height-headerRows, 3))

	footer := help.New().ShortHelpView([]key.Binding{
		keys.Toggle, keys.Next, keys.Prev, keys.Shuffle, keys.Repeat,
		keys.Back, keys.Forward, keys.PlayNxt, keys.Enqueue,
		keys.EQ, keys.Band, keys.BandUp, keys.BandDn, keys.EQReset, keys.Quit,
	})
	if m.lastErr != "" {
		footer = errorStyle.Render(truncate(m.lastErr, innerWidth)) + "\n" + footer
	}

	return lipgloss.JoinVertical(lipgloss.Left, top, queue, footer)
}

func (m Model) renderStatus(width int) string {
	status := stopSymbol + " " + m.state.String()
	switch m.state {
	case playback.StatePlaying:
		status = playingStyle.Render(playSymbol + " " + m.state.String())
	case playback.StatePaused:
		status = pauseSymbol + " " + m.state.String()
	}

	modes := strings.Join([]string{
		modeLabel("shuffle", m.shuffled),
		modeLabel("repeat "+m.repeat.String(), m.repeat != engine.RepeatOff),
		modeLabel("eq", m.eqOn),
	}, "  ")

	gap := max(width-lipgloss.Width(status)-lipgloss.Width(modes), 1)
	return status + strings.Repeat(" ", gap) + modes
}

func modeLabel(label string, on bool) string {
	if on {
		return modeOnStyle.Render(label)
	}
	return mutedStyle.Render(label)
}

func (m Model) renderSong(width int) string {
	if m.current == nil {
		return mutedStyle.Render("Nothing queued") + "\n"
	}
	title := m.current.Title
	if title == "" {
		title = "Unknown Track"
	}
	var info []string
	if m.current.Artist != "" {
		info = append(info, m.current.Artist)
	}
	if m.current.Album != "" {
		info = append(info, m.current.Album)
	}
	return titleStyle.Render(truncate(title, width)) + "\n" +
		artistStyle.Render(truncate(strings.Join(info, " · "), width))
}

func (m Model) renderProgress(width int) string {
	times := formatDuration(m.position) + " / " + formatDuration(m.duration)
	if m.scrubbing {
		times += " (enter to seek)"
	}
	bar := m.bar
	bar.Width = max(width-lipgloss.Width(times)-2, 5)
	return bar.ViewAs(m.progress) + "  " + times
}

// renderEqualizer lists every band with its gain in dB, the selected
// band highlighted.
func (m Model) renderEqualizer(width int) string {
	style := mutedStyle
	if m.eqOn {
		style = artistStyle
	}
	parts := make([]string, 0, len(equalizer.Bands))
	for i, band := range equalizer.Bands {
		level := 0
		if i < len(m.eqLevels) {
			level = m.eqLevels[i]
		}
		text := fmt.Sprintf("%s %+.1fdB", band.Label(), float64(level)/100)
		if i == m.eqBand {
			parts = append(parts, modeOnStyle.Render(text))
			continue
		}
		parts = append(parts, style.Render(text))
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(strings.Join(parts, "  "))
}

func (m Model) renderQueue(width, rows int) string {
	header := fmt.Sprintf("Queue (%d/%d)", m.index+1, len(m.queue))
	if len(m.queue) == 0 {
		header = "Queue (empty)"
	}

	start := visibleStart(m.cursor, len(m.queue), rows)
	end := min(start+rows, len(m.queue))

	lines := []string{titleStyle.Render(header)}
	for i := start; i < end; i++ {
		lines = append(lines, m.renderQueueRow(i, m.queue[i], width))
	}
	return panelStyle.Width(m.width - 2).Render(strings.Join(lines, "\n"))
}

func (m Model) renderQueueRow(i int, s library.Song, width int) string {
	prefix := "  "
	switch {
	case i == m.index:
		prefix = playSymbol + " "
	case i == m.cursor:
		prefix = "› "
	}
	text := fmt.Sprintf("%s%3d. %s", prefix, i+1, s.Title)
	if s.Artist != "" {
		text += " · " + s.Artist
	}
	dur := formatDuration(s.Duration)
	text = runewidth.FillRight(truncate(text, width-len(dur)-1), width-len(dur)-1) + " " + dur
	switch {
	case i == m.index:
		return playingStyle.Render(text)
	case i == m.cursor:
		return titleStyle.Render(text)
	}
	return text
}

// visibleStart scrolls the list so the selected row stays in view.
func visibleStart(current, total, rows int) int {
	if total <= rows || current < 0 {
		return 0
	}
	start := current - rows/2
	return min(max(start, 0), total-rows)
}

func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	return runewidth.Truncate(s, maxWidth, "…")
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
