package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/cadencefm/cadence/internal/library"
)

var songHeader = table.Row{"#", "ID", "Title", "Artist", "Album", "Length"}

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func songRow(n int, s library.Song) table.Row {
	return table.Row{n, s.ID, s.Title, s.Artist, s.Album, formatDuration(s.Duration)}
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}
