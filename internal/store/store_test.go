// Public domain.

package store_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/obs80/internal/store"
	"github.com/soniakeys/obs80/mpc"
)

var lines = []string{
	"     K03A01B  C2003 01 05.5     00 40 00.00 +05 00 00.0          18.5 V      568",
	"00433         C2003 01 06.12345 12 40 00.00 -05 00 00.0                r     704",
	"00433J98S01A*KC1998 09 27.23456 23 59 59.99 +89 59 59.9          15.52Ra     G96",
}

func open(t *testing.T) *store.Store {
	s, err := store.Open(filepath.Join(t.TempDir(), "obs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveEach(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	in := lines[0] + "\nbad line\n" + lines[1] + "\n" + lines[2] + "\n"
	n, err := s.Save(ctx, mpc.NewReader(strings.NewReader(in)))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	c, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, c)

	var got []string
	require.NoError(t, s.Each(ctx, func(r *mpc.Record) error {
		got = append(got, mpc.Encode(r))
		return nil
	}))
	assert.Equal(t, lines, got)

	d, err := s.Designations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"(433)", "2003 AB1"}, d)
}

func TestSaveEdited(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	r, err := mpc.Decode(lines[0])
	require.NoError(t, err)
	r, err = r.WithObscode("G96")
	require.NoError(t, err)
	b, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, b.Add(r))
	assert.Equal(t, 1, b.Len())
	require.NoError(t, b.Commit())

	require.NoError(t, s.Each(ctx, func(o *mpc.Record) error {
		assert.Equal(t, "G96", o.Obscode())
		assert.Equal(t, mpc.Encode(r), o.Raw())
		return nil
	}))
}

func TestSaveReadError(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	broken := errors.New("broken")
	src := mpc.NewReader(io.MultiReader(strings.NewReader(lines[0]+"\n"), iotest.ErrReader(broken)))
	_, err := s.Save(ctx, src)
	assert.ErrorIs(t, err, broken)
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "nothing stored after a failed save")
}

func TestEachStops(t *testing.T) {
	ctx := context.Background()
	s := open(t)
	_, err := s.Save(ctx, mpc.NewReader(strings.NewReader(strings.Join(lines, "\n"))))
	require.NoError(t, err)
	stop := errors.New("stop")
	n := 0
	err = s.Each(ctx, func(*mpc.Record) error {
		n++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, n)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	fn := filepath.Join(t.TempDir(), "obs.db")
	s, err := store.Open(fn)
	require.NoError(t, err)
	_, err = s.Save(ctx, mpc.NewReader(strings.NewReader(lines[0])))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = store.Open(fn)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
