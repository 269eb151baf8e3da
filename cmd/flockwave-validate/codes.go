package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/scott-cotton/cli"

	"github.com/collmot/flockwave-spec/pkg/errorcode"
)

func listCodes(cfg *CodesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Cmd.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", cli.ErrUsage, args)
	}

	filter := -1
	if cfg.Severity != "" {
		sev, err := errorcode.ParseSeverity(cfg.Severity)
		if err != nil {
			return fmt.Errorf("%w: %w", cli.ErrUsage, err)
		}
		filter = int(sev)
	}
	return writeCodes(cc.Out, filter)
}

// writeCodes prints the table of known error codes. A negative filter
// lists every severity.
func writeCodes(w io.Writer, filter int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tNAME\tSEVERITY\tDESCRIPTION")
	for _, c := range errorcode.Known() {
		if filter >= 0 && int(c.Severity()) != filter {
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", uint8(c), c.Abbreviation(), c.Severity(), c.Description())
	}
	return tw.Flush()
}
