// Public domain.

package prog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/soniakeys/observation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/obs80/internal/config"
	"github.com/soniakeys/obs80/internal/store"
	"github.com/soniakeys/obs80/mpc"
)

const (
	line1 = "     K03A01B  C2003 01 05.5     00 40 00.00 +05 00 00.0          18.5 V      568"
	line2 = "00433         C2003 01 06.12345 12 40 00.00 -05 00 00.0                r     704"
	line3 = "00433J98S01A*KC1998 09 27.23456 23 59"
)

const input = line1 + "\n" + line2 + "\n" + line3 + "\n"

func testApp(t *testing.T) (*app, *bytes.Buffer) {
	var logBuf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&logBuf)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	cfg := &config.Config{
		Logger:   config.LoggerConfig{Level: "info", Format: "text"},
		Obscodes: filepath.Join(t.TempDir(), "none.dat"),
	}
	return &app{cfg: cfg, log: log}, &logBuf
}

// run executes the command with args, reading in on stdin.
func run(t *testing.T, in string, args ...string) (stdout, logs string, err error) {
	a, logBuf := testApp(t)
	root := newRootCmd(a.cfg, a.log)
	var out bytes.Buffer
	root.SetIn(strings.NewReader(in))
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return out.String(), logBuf.String(), err
}

func TestFilterCone(t *testing.T) {
	out, logs, err := run(t, input, "filter", "--center", "10,5", "--radius", "1", "-")
	require.NoError(t, err)
	assert.Equal(t, line1+"\n", out)
	assert.Contains(t, logs, "skipping line")
	assert.Contains(t, logs, "line=3")
	assert.Contains(t, logs, "kind=truncated")
	assert.Contains(t, logs, "selected=1")
}

func TestFilterIdentity(t *testing.T) {
	for _, c := range []struct {
		args []string
		want string
	}{
		{[]string{"--site", "704"}, line2 + "\n"},
		{[]string{"--site", "704,568"}, line1 + "\n" + line2 + "\n"},
		{[]string{"--desig", "433"}, line2 + "\n"},
		{[]string{"--desig", "K03A01B", "--desig", "(433)"}, line1 + "\n" + line2 + "\n"},
		{[]string{"--pattern", "2003 *"}, line1 + "\n"},
		{[]string{"--from", "2003-01-06"}, line2 + "\n"},
		{[]string{"--to", "mjd:52645"}, line1 + "\n"},
		{[]string{"--mag-max", "20"}, line1 + "\n"},
		{[]string{"--workers", "1"}, line1 + "\n" + line2 + "\n"},
		{[]string{"--box", "350,20,0,10"}, line1 + "\n"},
		{[]string{"--box", "180,200,-10,0"}, line2 + "\n"},
	} {
		args := append(append([]string{"filter"}, c.args...), "-")
		out, _, err := run(t, input, args...)
		require.NoError(t, err, "%v", c.args)
		assert.Equal(t, c.want, out, "%v", c.args)
	}
}

func TestFilterCriteriaFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("obscodes: [\"568\", \"704\"]\nmag_max: 30\n"), 0o644))

	out, _, err := run(t, input, "filter", "--criteria", fn, "-")
	require.NoError(t, err)
	assert.Equal(t, line1+"\n", out)

	// flags override the file
	out, _, err = run(t, input, "filter", "--criteria", fn, "--site", "704", "-")
	require.NoError(t, err)
	assert.Empty(t, out, "704 has no magnitude")
}

func TestFilterErrors(t *testing.T) {
	for _, args := range [][]string{
		{"filter", "--from", "soon", "-"},
		{"filter", "--center", "10", "-"},
		{"filter", "--site", "xx", "-"},
		{"filter", "--box", "1,2,3", "-"},
		{"filter", "--box", "0,10,20,-20", "-"},
		{"filter", "--radius", "1", "-"},
		{"filter", "--criteria", "/nonexistent/c.yaml", "-"},
		{"filter", "/nonexistent/obs.txt"},
		{"filter"},
	} {
		_, _, err := run(t, input, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestFilterFailFast(t *testing.T) {
	out, _, err := run(t, input, "filter", "--fail-fast", "-")
	var le *mpc.LineError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 3, le.Line)
	assert.Empty(t, out, "nothing flushed after a failure")
}

func TestFilterOutputs(t *testing.T) {
	dir := t.TempDir()
	of := filepath.Join(dir, "subset.txt")
	db := filepath.Join(dir, "subset.db")

	out, _, err := run(t, input, "filter", "-o", of, "--sqlite", db, "-")
	require.NoError(t, err)
	assert.Empty(t, out)
	b, err := os.ReadFile(of)
	require.NoError(t, err)
	assert.Equal(t, line1+"\n"+line2+"\n", string(b))

	s, err := store.Open(db)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// sqlite alone writes nothing to stdout
	out, _, err = run(t, input, "filter", "--sqlite", filepath.Join(dir, "b.db"), "-")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFilterFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "obs.txt")
	require.NoError(t, os.WriteFile(fn, []byte(input), 0o644))
	out, _, err := run(t, "", "filter", "--site", "568", fn)
	require.NoError(t, err)
	assert.Equal(t, line1+"\n", out)
}

func TestList(t *testing.T) {
	out, logs, err := run(t, input, "list", "-")
	require.NoError(t, err)
	ls := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, ls, 2)
	assert.True(t, strings.HasPrefix(ls[0], "2003 AB1     2003 01 05.5"), ls[0])
	assert.True(t, strings.HasSuffix(ls[0], " 18.5V  568"), ls[0])
	assert.True(t, strings.HasPrefix(ls[1], "(433)        2003 01 06.12345"), ls[1])
	assert.True(t, strings.HasSuffix(ls[1], "      704"), ls[1])
	assert.Contains(t, logs, "line=3")
}

func TestCheck(t *testing.T) {
	out, logs, err := run(t, input+"\n", "check", "-")
	require.NoError(t, err)
	assert.Equal(t, "records     2\n"+
		"line errors 2, empty 1, truncated 1\n"+
		"site 568       1\n"+
		"site 704       1\n", out)
	assert.Contains(t, logs, "observatory codes not checked")

	a, _ := testApp(t)
	sites := mpc.NewSites(observation.ParallaxMap{"568": &observation.ParallaxConst{}})
	var buf bytes.Buffer
	require.NoError(t, a.check(&buf, mpc.NewReader(strings.NewReader(input)), &sites))
	assert.Contains(t, buf.String(), "site 568       1\n")
	assert.Contains(t, buf.String(), "site 704       1  unknown\n")
}

// wrapSource wraps line errors from src, as a decorating Source might.
type wrapSource struct{ src mpc.Source }

func (w wrapSource) Read() (*mpc.Record, error) {
	r, err := w.src.Read()
	if mpc.IsLineError(err) {
		err = fmt.Errorf("decorated: %w", err)
	}
	return r, err
}

func TestListWrappedLineError(t *testing.T) {
	a, logBuf := testApp(t)
	var out bytes.Buffer
	src := wrapSource{mpc.NewReader(strings.NewReader(line3 + "\n" + line1 + "\n"))}
	require.NoError(t, a.list(&out, src, "-"))
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
	assert.Contains(t, logBuf.String(), "line=1")
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCheckWriteError(t *testing.T) {
	a, _ := testApp(t)
	err := a.check(failWriter{}, mpc.NewReader(strings.NewReader(input)), nil)
	assert.EqualError(t, err, "disk full")
}

func TestIsBrokenPipe(t *testing.T) {
	assert.True(t, isBrokenPipe(fmt.Errorf("write: %w", syscall.EPIPE)))
	assert.True(t, isBrokenPipe(&mpc.WriteError{Err: io.ErrClosedPipe}))
	assert.False(t, isBrokenPipe(errors.New("disk full")))
	assert.False(t, isBrokenPipe(nil))
}
