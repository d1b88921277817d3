// Public domain.

package prog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/soniakeys/obs80/mpc"
)

func (a *app) checkCmd() *cobra.Command {
	var temp bool
	cmd := &cobra.Command{
		Use:   "check <obsfile|->",
		Short: "Count observations by site and report lines that do not decode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			var sites *mpc.Sites
			if s, err := mpc.ReadSites(a.cfg.Obscodes); err != nil {
				a.log.WithError(err).Warn("observatory codes not checked")
			} else {
				sites = &s
			}
			return a.check(cmd.OutOrStdout(), mpc.Decoder{Temporary: temp}.NewReader(in), sites)
		},
	}
	cmd.Flags().BoolVar(&temp, "temp", false, "accept observer assigned temporary designations")
	return cmd
}

// check writes a summary of src.  Sites may be nil.
func (a *app) check(w io.Writer, src mpc.Source, sites *mpc.Sites) error {
	c, lerrs, err := mpc.ReadAll(src)
	if err != nil {
		return err
	}
	perSite := map[string]int{}
	for _, r := range c {
		perSite[r.Obscode()]++
	}
	perKind := map[mpc.LineErrorKind]int{}
	for _, le := range lerrs {
		perKind[le.Kind]++
		a.log.WithFields(logrus.Fields{"line": le.Line, "kind": le.Kind.String()}).Debug(le.Err)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "records     %d\n", len(c))
	fmt.Fprintf(bw, "line errors %d", len(lerrs))
	for _, k := range []mpc.LineErrorKind{mpc.Empty, mpc.Truncated, mpc.Malformed} {
		if n := perKind[k]; n > 0 {
			fmt.Fprintf(bw, ", %s %d", k, n)
		}
	}
	fmt.Fprintln(bw)

	codes := make([]string, 0, len(perSite))
	for code := range perSite {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		note := ""
		if sites != nil && !sites.Known(code) {
			note = "  unknown"
		}
		fmt.Fprintf(bw, "site %s %7d%s\n", code, perSite[code], note)
	}
	// Flush reports the first write error.
	return bw.Flush()
}

func (a *app) obscodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "obscodes [file]",
		Short: "Fetch a fresh obscode.dat from the MPC",
		Long: `Obscodes downloads the MPC list of observatory codes.  The default file is
OBS80_OBSCODES, which check reads to flag unknown codes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fn := a.cfg.Obscodes
			if len(args) == 1 {
				fn = args[0]
			}
			if err := os.MkdirAll(filepath.Dir(fn), 0o755); err != nil {
				return err
			}
			if err := mpc.FetchSites(fn); err != nil {
				return err
			}
			s, err := mpc.ReadSites(fn)
			if err != nil {
				return err
			}
			a.log.WithFields(logrus.Fields{"file": fn, "codes": s.Len()}).Info("observatory codes fetched")
			return nil
		},
	}
}
