// Public domain.

package prog

import (
	"bufio"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/soniakeys/obs80/internal/config"
	"github.com/soniakeys/obs80/internal/pipeline"
	"github.com/soniakeys/obs80/internal/store"
	"github.com/soniakeys/obs80/mpc"
)

type filterOptions struct {
	criteria string
	center   string
	radius   float64
	box      string
	from, to string
	desig    []string
	pattern  string
	sites    []string
	magMin   float64
	magMax   float64
	temp     bool
	workers  int
	failFast bool
	output   string
	sqlite   string
}

func (a *app) filterCmd() *cobra.Command {
	var o filterOptions
	cmd := &cobra.Command{
		Use:   "filter [flags] <obsfile|->",
		Short: "Write the observations that match all given criteria",
		Long: `Filter reads observations and writes those matching every criterion given.
Lines are written exactly as read, in input order.  Lines that do not decode
are logged and skipped.

Times are RFC 3339, YYYY-MM-DD, or mjd:N.  Angles are degrees.  Flags
override the same settings in a --criteria file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFilter(cmd, args[0], &o)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&o.criteria, "criteria", "", "YAML criteria file")
	fl.StringVar(&o.center, "center", "", "cone center `ra,dec`")
	fl.Float64Var(&o.radius, "radius", 0, "cone radius")
	fl.StringVar(&o.box, "box", "", "RA/Dec box `ra_min,ra_max,dec_min,dec_max`, RA wraps when ra_min > ra_max")
	fl.StringVar(&o.from, "from", "", "earliest time, inclusive")
	fl.StringVar(&o.to, "to", "", "latest time, exclusive")
	fl.StringSliceVar(&o.desig, "desig", nil, "designation, packed or unpacked (repeatable)")
	fl.StringVar(&o.pattern, "pattern", "", "designation glob, as \"2003 A*\"")
	fl.StringSliceVar(&o.sites, "site", nil, "observatory code (repeatable)")
	fl.Float64Var(&o.magMin, "mag-min", 0, "brightest magnitude, inclusive")
	fl.Float64Var(&o.magMax, "mag-max", 0, "faintest magnitude, inclusive")
	fl.BoolVar(&o.temp, "temp", false, "accept observer assigned temporary designations")
	fl.IntVar(&o.workers, "workers", a.cfg.Workers, "decode goroutines, 0 for one per CPU")
	fl.BoolVar(&o.failFast, "fail-fast", false, "stop at the first line that does not decode")
	fl.StringVarP(&o.output, "output", "o", "", "output file, default stdout")
	fl.StringVar(&o.sqlite, "sqlite", "", "also store the subset in this SQLite database")
	return cmd
}

// criteriaFile merges the criteria file with the flags that were set.
func (o *filterOptions) criteriaFile(cmd *cobra.Command) (*config.CriteriaFile, error) {
	cf := &config.CriteriaFile{}
	if o.criteria != "" {
		var err error
		if cf, err = config.LoadCriteria(o.criteria); err != nil {
			return nil, err
		}
	}
	fl := cmd.Flags()
	if fl.Changed("center") {
		c, err := config.ParseCenter(o.center)
		if err != nil {
			return nil, err
		}
		cf.Center = c
	}
	if fl.Changed("radius") {
		cf.Radius = o.radius
	}
	if fl.Changed("box") {
		b, err := config.ParseBox(o.box)
		if err != nil {
			return nil, err
		}
		cf.Box = b
	}
	if fl.Changed("from") {
		cf.From = o.from
	}
	if fl.Changed("to") {
		cf.To = o.to
	}
	if fl.Changed("desig") {
		cf.Designations = o.desig
	}
	if fl.Changed("pattern") {
		cf.Pattern = o.pattern
	}
	if fl.Changed("site") {
		cf.Obscodes = o.sites
	}
	if fl.Changed("mag-min") {
		cf.MagMin = &o.magMin
	}
	if fl.Changed("mag-max") {
		cf.MagMax = &o.magMax
	}
	return cf, nil
}

func (a *app) runFilter(cmd *cobra.Command, fn string, o *filterOptions) error {
	cf, err := o.criteriaFile(cmd)
	if err != nil {
		return err
	}
	crit, err := cf.Criteria()
	if err != nil {
		return err
	}
	f, err := crit.Compile(nil)
	if err != nil {
		return err
	}
	a.log.WithField("predicates", f.Names()).Debug("criteria compiled")

	in, err := openInput(cmd, fn)
	if err != nil {
		return err
	}
	defer in.Close()

	// text output goes to -o, or to stdout unless only --sqlite is given
	var bw *bufio.Writer
	var w *mpc.Writer
	if o.output != "" || o.sqlite == "" {
		var out io.Writer = cmd.OutOrStdout()
		if o.output != "" {
			of, err := os.Create(o.output)
			if err != nil {
				return err
			}
			defer of.Close()
			out = of
		}
		bw = bufio.NewWriter(out)
		w = mpc.NewWriter(bw)
	}

	var batch *store.Batch
	if o.sqlite != "" {
		db, err := store.Open(o.sqlite)
		if err != nil {
			return err
		}
		defer db.Close()
		if batch, err = db.Begin(cmd.Context()); err != nil {
			return err
		}
	}

	var selected, bad int
	err = pipeline.Run(cmd.Context(), in, pipeline.Config{
		Workers: o.workers,
		Decoder: mpc.Decoder{Temporary: o.temp},
		Filter:  f,
	}, func(r *mpc.Record, lerr *mpc.LineError) error {
		if lerr != nil {
			bad++
			a.logLineError(lerr, fn)
			if o.failFast {
				return lerr
			}
			return nil
		}
		selected++
		if w != nil {
			if err := w.Write(r); err != nil {
				return err
			}
		}
		if batch != nil {
			return batch.Add(r)
		}
		return nil
	})
	if err == nil && bw != nil {
		if err = bw.Flush(); err != nil {
			err = &mpc.WriteError{N: w.Count(), Err: err}
		}
	}
	if batch != nil {
		if err != nil {
			batch.Rollback()
		} else {
			err = batch.Commit()
		}
	}
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"file":     fn,
		"selected": selected,
		"bad":      bad,
	}).Info("filter done")
	return nil
}

func (a *app) logLineError(lerr *mpc.LineError, fn string) {
	e := a.log.WithFields(logrus.Fields{
		"file": fn,
		"line": lerr.Line,
		"kind": lerr.Kind.String(),
	})
	if lerr.Err != nil {
		e = e.WithError(lerr.Err)
	}
	e.Warn("skipping line")
}
