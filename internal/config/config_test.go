// Public domain.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soniakeys/obs80/internal/config"
	"github.com/soniakeys/obs80/sky"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "text", cfg.Logger.Format)
	assert.Equal(t, 0, cfg.Workers)
	assert.Equal(t, "obscode.dat", filepath.Base(cfg.Obscodes))
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("OBS80_LOG_LEVEL", "debug")
	t.Setenv("OBS80_LOG_FORMAT", "json")
	t.Setenv("OBS80_WORKERS", "3")
	t.Setenv("OBS80_OBSCODES", "/tmp/oc.dat")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "/tmp/oc.dat", cfg.Obscodes)
}

func TestLoadInvalid(t *testing.T) {
	t.Setenv("OBS80_LOG_FORMAT", "xml")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	for _, c := range []struct {
		in   string
		want float64
	}{
		{"mjd:52644.5", 52644.5},
		{"2003-01-05", 52644},
		{"2000-01-01", 51544},
		{"2003-01-05T12:00:00Z", 52644.5},
		{"2003-01-05T14:00:00+02:00", 52644.5},
	} {
		got, err := config.ParseTime(c.in)
		require.NoError(t, err, c.in)
		assert.InDelta(t, c.want, got.MJD(), 1e-8, c.in)
	}
	for _, s := range []string{"", "mjd:", "mjd:x", "2003/01/05", "yesterday"} {
		_, err := config.ParseTime(s)
		assert.Error(t, err, s)
	}
}

func TestParseCenter(t *testing.T) {
	c, err := config.ParseCenter("10.5, -5")
	require.NoError(t, err)
	assert.Equal(t, []float64{10.5, -5}, c)
	for _, s := range []string{"10", "a,5", "10,b"} {
		_, err := config.ParseCenter(s)
		assert.Error(t, err, s)
	}
}

func TestParseBox(t *testing.T) {
	b, err := config.ParseBox("350, 10,-5,5")
	require.NoError(t, err)
	assert.Equal(t, &config.BoxFile{RAMin: 350, RAMax: 10, DecMin: -5, DecMax: 5}, b)
	for _, s := range []string{"", "1,2,3", "1,2,3,4,5", "1,2,x,4"} {
		_, err := config.ParseBox(s)
		assert.Error(t, err, s)
	}
}

func writeFile(t *testing.T, text string) string {
	fn := filepath.Join(t.TempDir(), "criteria.yaml")
	require.NoError(t, os.WriteFile(fn, []byte(text), 0o644))
	return fn
}

func TestLoadCriteria(t *testing.T) {
	fn := writeFile(t, `
center: [10, 5]
radius: 1
from: "2003-01-01"
to: "mjd:52700"
designations: ["433", "2003 AB1"]
obscodes: ["568", "704"]
mag_max: 20
box: {ra_min: 350, ra_max: 10, dec_min: -5, dec_max: 5}
`)
	cf, err := config.LoadCriteria(fn)
	require.NoError(t, err)
	c, err := cf.Criteria()
	require.NoError(t, err)
	require.NotNil(t, c.Center)
	ra, dec := c.Center.Deg()
	assert.InDelta(t, 10, ra, 1e-9)
	assert.InDelta(t, 5, dec, 1e-9)
	assert.InDelta(t, 1, c.Radius.Deg(), 1e-12)
	assert.Equal(t, sky.TimeFromCalendar(2003, 1, 1), *c.From)
	assert.Equal(t, sky.Time(52700), *c.To)
	assert.Equal(t, []string{"433", "2003 AB1"}, c.Designations)
	assert.Equal(t, []string{"568", "704"}, c.Obscodes)
	assert.Nil(t, c.MagMin)
	assert.Equal(t, 20.0, *c.MagMax)
	assert.Equal(t, 350.0, c.Box.RAMin)

	f, err := c.Compile(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"observatory", "designation", "magnitude", "time", "box", "cone"}, f.Names())
}

func TestLoadCriteriaErrors(t *testing.T) {
	_, err := config.LoadCriteria(writeFile(t, "centre: [1, 2]\n"))
	assert.Error(t, err, "unknown key")

	_, err = config.LoadCriteria(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	for _, text := range []string{
		"center: [1]\n",
		"radius: 2\n",
		"from: soon\n",
		"to: \"mjd:x\"\n",
	} {
		cf, err := config.LoadCriteria(writeFile(t, text))
		require.NoError(t, err, text)
		_, err = cf.Criteria()
		assert.Error(t, err, text)
	}
}

func TestEmptyCriteriaFile(t *testing.T) {
	cf, err := config.LoadCriteria(writeFile(t, ""))
	require.NoError(t, err)
	c, err := cf.Criteria()
	require.NoError(t, err)
	f, err := c.Compile(nil)
	require.NoError(t, err)
	assert.Empty(t, f.Names())
}
