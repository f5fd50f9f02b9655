package library

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello world"},
		{"AC/DC", "ac dc"},
		{"  Don't   Stop  ", "don t stop"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, normalize(tt.input))
		})
	}
}

func TestLibrary_Search(t *testing.T) {
	ctx := context.Background()
	lib := New(setupTestDB(t))

	for _, s := range []Song{
		{Path: "/m/1.mp3", Title: "Highway to Hell", Artist: "AC/DC", Album: "Highway to Hell"},
		{Path: "/m/2.mp3", Title: "Back in Black", Artist: "AC/DC", Album: "Back in Black"},
		{Path: "/m/3.mp3", Title: "Black Dog", Artist: "Led Zeppelin", Album: "IV"},
	} {
		_, err := lib.Upsert(ctx, s, 1)
		require.NoError(t, err)
	}

	titles := func(songs []Song) []string {
		var out []string
		for _, s := range songs {
			out = append(out, s.Title)
		}
		return out
	}

	got, err := lib.Search(ctx, "black")
	require.NoError(t, err)
	assert.Equal(t, []string{"Back in Black", "Black Dog"}, titles(got))

	got, err = lib.Search(ctx, "ac dc black")
	require.NoError(t, err)
	assert.Equal(t, []string{"Back in Black"}, titles(got))

	got, err = lib.Search(ctx, "  ")
	require.NoError(t, err)
	assert.Empty(t, got)
}
