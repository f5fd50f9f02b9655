//go:build linux

package notify

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBusNotifier_ReplacesNotification(t *testing.T) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		t.Skip("no D-Bus session available")
	}

	n := New(quietLogger())
	first, err := n.Notify(Notification{Title: "Song 1", Body: "Artist - Album", Timeout: 1000})
	require.NoError(t, err)
	require.NotZero(t, first)

	second, err := n.Notify(Notification{Title: "Song 2", Timeout: 1000, ReplacesID: first})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NoError(t, n.Close(second))
}

func TestNew_WithoutSessionBus(t *testing.T) {
	t.Setenv("DBUS_SESSION_BUS_ADDRESS", "unix:path=/nonexistent/cadence-test-bus")

	n := New(quietLogger())
	id, err := n.Notify(Notification{Title: "dropped"})
	require.NoError(t, err)
	assert.Zero(t, id)
}
