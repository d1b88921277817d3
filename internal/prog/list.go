// Public domain.

package prog

import (
	"errors"
	"fmt"
	"io"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/spf13/cobra"

	"github.com/soniakeys/obs80/mpc"
)

func (a *app) listCmd() *cobra.Command {
	var temp bool
	cmd := &cobra.Command{
		Use:   "list <obsfile|->",
		Short: "List decoded observations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer in.Close()
			return a.list(cmd.OutOrStdout(), mpc.Decoder{Temporary: temp}.NewReader(in), args[0])
		},
	}
	cmd.Flags().BoolVar(&temp, "temp", false, "accept observer assigned temporary designations")
	return cmd
}

func (a *app) list(w io.Writer, src mpc.Source, fn string) error {
	for {
		r, err := src.Read()
		if err == io.EOF {
			return nil
		}
		var lerr *mpc.LineError
		if errors.As(err, &lerr) {
			a.logLineError(lerr, fn)
			continue
		}
		if err != nil {
			return err
		}
		c := r.Coord()
		if _, err := fmt.Fprintf(w, "%-12s %s  %.2s  %.1s  %5s%c  %s\n",
			r.Designation().Key(),
			r.Date(),
			sexa.FmtRA(c.RA),
			sexa.FmtAngle(c.Dec),
			r.Mag(), r.Band(),
			r.Obscode()); err != nil {
			return err
		}
	}
}
