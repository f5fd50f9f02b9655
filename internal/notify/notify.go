// Package notify shows desktop notifications for playback events.
package notify

const (
	appName      = "Cadence"
	desktopEntry = "cadence"
)

// Urgency is the freedesktop notification urgency hint.
type Urgency byte

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notification is one desktop notification.
type Notification struct {
	Title string
	Body  string
	// Icon is an image path or icon name.
	Icon string
	// Timeout in ms; -1 lets the server decide, 0 never expires.
	Timeout int32
	// ReplacesID updates an existing notification in place when non-zero.
	ReplacesID uint32
	Urgency    Urgency
}

// Notifier sends desktop notifications.
type Notifier interface {
	// Notify shows n and returns its server id. A disabled notifier
	// returns 0 and no error.
	Notify(n Notification) (uint32, error)
	Close(id uint32) error
}

// discard is used when no notification server is reachable.
type discard struct{}

func (discard) Notify(Notification) (uint32, error) { return 0, nil }
func (discard) Close(uint32) error                  { return nil }
