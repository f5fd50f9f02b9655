//go:build !windows

package stderr

import (
	"fmt"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartForwardsToLog(t *testing.T) {
	log, hook := test.NewNullLogger()
	require.NoError(t, Start(log))
	require.NoError(t, Start(log), "second start is a no-op")

	fmt.Fprintln(os.Stderr, "ALSA lib pcm.c: underrun occurred")
	fmt.Fprintln(os.Stderr, "   ")
	Stop()

	var found *logrus.Entry
	for _, e := range hook.AllEntries() {
		assert.NotEmpty(t, e.Message, "blank lines are dropped")
		if e.Message == "ALSA lib pcm.c: underrun occurred" {
			found = e
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, logrus.WarnLevel, found.Level)
	assert.Equal(t, "stderr", found.Data["source"])
}

func TestStopWithoutStart(t *testing.T) {
	assert.NotPanics(t, Stop)
}
