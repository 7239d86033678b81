package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/chook-lab/chook/internal/event"
	"github.com/chook-lab/chook/internal/schema"
	"github.com/spf13/cobra"
)

var decodeValidate bool

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode a webhook payload and print the typed event",
	Long:  "Decodes a webhook payload from a file, or stdin when no file is given, the same way the server does.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.Close()

		raw, err := readInput(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		return decodePayload(cmd.OutOrStdout(), a.decoder, raw, decodeValidate)
	},
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeValidate, "validate", false, "Also check subject field values against the schema rules")
	rootCmd.AddCommand(decodeCmd)
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return raw, nil
}

func decodePayload(w io.Writer, dec *event.Decoder, raw []byte, validate bool) error {
	ev, err := dec.Decode(raw)
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"id":           ev.ID(),
		"type":         ev.Type(),
		"subject_kind": ev.SubjectKind(),
		"webhook": map[string]interface{}{
			"id":   ev.WebhookID(),
			"name": ev.WebhookName(),
		},
		"subject": ev.Subject(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if !validate {
		return nil
	}
	spec, err := dec.Types().Lookup(ev.Type())
	if err != nil {
		return err
	}
	if err := spec.Schema.Validate(ev.Subject()); err != nil {
		var detailer schema.ValidationDetailer
		if errors.As(err, &detailer) {
			if encErr := enc.Encode(map[string]interface{}{"validation": detailer.Details()}); encErr != nil {
				return encErr
			}
		}
		return fmt.Errorf("subject failed validation: %w", err)
	}
	fmt.Fprintln(w, "subject is valid")
	return nil
}
