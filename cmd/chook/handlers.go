package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/chook-lab/chook/internal/handler"
	"github.com/spf13/cobra"
)

var handlersJSON bool

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "Load the handler directory and list what was found",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := a.handlers.Reload(cmd.Context())
		if err != nil {
			return err
		}
		return printHandlers(cmd.OutOrStdout(), snap, handlersJSON)
	},
}

func init() {
	handlersCmd.Flags().BoolVar(&handlersJSON, "json", false, "Print the listing as JSON")
	rootCmd.AddCommand(handlersCmd)
}

func printHandlers(w io.Writer, snap *handler.Snapshot, asJSON bool) error {
	rows := snap.Listing()
	problems := snap.ProblemMessages()

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"dir":      snap.Dir(),
			"handlers": rows,
			"problems": problems,
		})
	}

	fmt.Fprintf(w, "Handlers in %s\n", snap.Dir())
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BINDING\tKEY\tORIGIN\tFORMAT\tPATH")
	for _, r := range rows {
		format := r.Format
		if format == "" {
			format = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Binding, r.Key, r.Origin, format, r.Identity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(problems) > 0 {
		fmt.Fprintf(w, "\nSkipped %d file(s):\n", len(problems))
		for _, p := range problems {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
	return nil
}
