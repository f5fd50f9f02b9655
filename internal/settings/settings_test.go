package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cadencefm/cadence/internal/db"
)

func newSQLiteStore(t *testing.T) *SQLite {
	t.Helper()
	conn, err := db.Open(context.Background(), db.Memory)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSQLite(conn)
}

// stores runs a test against every backend.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLiteStore(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

func TestStore_RoundTripEveryKind(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.SetMany(ctx, []Entry{
			{Key: "b", Value: Bool(true)},
			{Key: "i", Value: Int(-7)},
			{Key: "l", Value: Long(1 << 40)},
			{Key: "s", Value: String("1 2 3")},
			{Key: "f", Value: Float(0.25)},
		}))

		b, err := GetBool(ctx, s, "b", false)
		require.NoError(t, err)
		assert.True(t, b)

		i, err := GetInt(ctx, s, "i", 0)
		require.NoError(t, err)
		assert.Equal(t, int32(-7), i)

		l, err := GetLong(ctx, s, "l", 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1<<40), l)

		str, err := GetString(ctx, s, "s", "")
		require.NoError(t, err)
		assert.Equal(t, "1 2 3", str)

		f, err := GetFloat(ctx, s, "f", 0)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, f, 1e-6)
	})
}

func TestStore_MissingKeyReturnsDefault(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, ok, err := s.Get(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := GetString(ctx, s, "nope", "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", got)
	})
}

func TestStore_KindMismatchReturnsDefault(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "mode", String("all")))

		got, err := GetInt(ctx, s, "mode", 2)
		require.NoError(t, err)
		assert.Equal(t, int32(2), got)
	})
}

func TestStore_OverwriteChangesKind(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "k", Int(1)))
		require.NoError(t, s.Set(ctx, "k", Bool(true)))

		v, ok, err := s.Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, KindBool, v.Kind())
	})
}

func TestStore_SetManyIsAtomic(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		err := s.SetMany(ctx, []Entry{
			{Key: "good", Value: Int(1)},
			{Key: "bad", Value: Value{}},
		})
		require.Error(t, err)

		_, ok, err := s.Get(ctx, "good")
		require.NoError(t, err)
		assert.False(t, ok, "partial batch must not be visible")
	})
}

func TestValue_Accessors(t *testing.T) {
	v := Long(5)

	_, ok := v.AsInt()
	assert.False(t, ok, "long is not int")

	l, ok := v.AsLong()
	assert.True(t, ok)
	assert.Equal(t, int64(5), l)

	assert.Equal(t, "long:5", v.String())
	assert.Equal(t, "<unset>", Value{}.String())
	assert.True(t, Value{}.IsZero())
}

func TestDecode_UnknownKind(t *testing.T) {
	_, err := decode(Kind(99), "x")
	assert.Error(t, err)
}

func TestMemory_Writes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", Int(1)))
	require.NoError(t, m.SetMany(ctx, []Entry{{Key: "b", Value: Int(2)}, {Key: "c", Value: Int(3)}}))

	assert.Equal(t, 2, m.Writes())
}
