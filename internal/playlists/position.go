package playlists

// move describes relocating one row inside a dense ordering of count rows.
// It separates the pure position arithmetic from the SQL that applies it.
type move struct {
	from int
	to   int
}

// newMove clamps the requested target into [0, count-1].
func newMove(from, to, count int) move {
	if to < 0 {
		to = 0
	}
	if to > count-1 {
		to = count - 1
	}
	return move{from: from, to: to}
}

// noop returns true when the row already sits at its target.
func (m move) noop() bool {
	return m.from == m.to
}
