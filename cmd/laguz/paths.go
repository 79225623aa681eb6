package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/laguz"
)

func pathsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "paths FILE",
		Short: "Print every leaf path of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			store, err := load(args[0], format, data)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			laguz.Walk(store.State(), func(path string, leaf any) {
				fmt.Fprintf(out, "%s = %s\n", path, render(leaf))
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "document format: json, yaml, toml or cue (default: from extension)")
	return cmd
}

// load decodes data and builds a store holding it.
func load(file, format string, data []byte) (*laguz.Store, error) {
	var doc map[string]any
	if err := codecFor(file, format).Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", file, err)
	}
	return laguz.Build(func(*laguz.Object) any { return doc },
		laguz.WithName(file),
		laguz.WithSyncMode(),
	)
}

func codecFor(file, format string) laguz.Codec {
	if format != "" {
		return laguz.CodecFor(format)
	}
	return laguz.CodecFor(file)
}

// render formats a value as compact JSON, falling back to fmt.
func render(v any) string {
	b, err := json.Marshal(laguz.Plain(v))
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
