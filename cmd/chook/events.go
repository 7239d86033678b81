package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/chook-lab/chook/internal/event"
	"github.com/spf13/cobra"
)

var eventsFields bool

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List known event types and the subject each carries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()
		return printEvents(cmd.OutOrStdout(), a.types, eventsFields)
	},
}

func init() {
	eventsCmd.Flags().BoolVar(&eventsFields, "fields", false, "Include subject field names")
	rootCmd.AddCommand(eventsCmd)
}

func printEvents(w io.Writer, types *event.Registry, fields bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if fields {
		fmt.Fprintln(tw, "EVENT\tSUBJECT\tFIELDS")
	} else {
		fmt.Fprintln(tw, "EVENT\tSUBJECT")
	}
	for _, name := range types.Names() {
		spec, err := types.Lookup(name)
		if err != nil {
			return err
		}
		if fields {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, spec.SubjectKind, strings.Join(spec.Schema.FieldNames(), ","))
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", name, spec.SubjectKind)
	}
	return tw.Flush()
}
