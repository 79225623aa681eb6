package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/laguz"
)

// docKey is the namespace key the watched document is composed under.
const docKey = "doc"

func watchCmd() *cobra.Command {
	var (
		format   string
		selects  []string
		debounce time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Print change broadcasts as a document is edited",
		Long: `Watch loads FILE into a store and re-applies it on every save.

Each broadcast prints the coalesced changed paths. Each --select PATH
prints the value at PATH initially and whenever a change touches it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, cmd, args[0], format, selects, debounce, verbose)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "document format: json, yaml, toml or cue (default: from extension)")
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "path to print when it changes (repeatable)")
	cmd.Flags().DurationVar(&debounce, "debounce", laguz.DefaultDebounce, "delay before re-applying a changed file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print feed lifecycle events")
	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, file, format string, selects []string, debounce time.Duration, verbose bool) error {
	out := cmd.OutOrStdout()

	if verbose {
		capitan.Hook(laguz.FeedStateChanged, func(_ context.Context, e *capitan.Event) {
			from, _ := laguz.KeyOldState.From(e)
			to, _ := laguz.KeyNewState.From(e)
			fmt.Fprintf(out, "[state] %s -> %s\n", from, to)
		})
		capitan.Hook(laguz.FeedDecodeFailed, func(_ context.Context, e *capitan.Event) {
			msg, _ := laguz.KeyError.From(e)
			fmt.Fprintf(out, "[rejected] %s\n", msg)
		})
		defer capitan.Shutdown()
	}

	store, err := laguz.Build(nil, laguz.WithName(file))
	if err != nil {
		return err
	}
	defer store.Close()

	g := laguz.Compose(map[string]*laguz.Store{docKey: store})
	defer g.Close()

	feed := laguz.NewFeed[map[string]any](store, laguz.NewFileWatcher(file), laguz.ReplaceValues).
		Codec(codecFor(file, format)).
		Debounce(debounce)
	if err := feed.Start(ctx); err != nil {
		return err
	}

	store.Watch(func(c laguz.Change) {
		fmt.Fprintf(out, "%s changed: %s\n", c.At.Format(time.TimeOnly), strings.Join(c.Paths, ", "))
	})

	for _, path := range selects {
		sel := laguz.Select(g, func(r laguz.Reader) any {
			return laguz.Plain(r.Get(docKey).At(path).Value())
		})
		defer sel.Close()

		show := func() { fmt.Fprintf(out, "  %s = %s\n", path, render(sel.Snapshot())) }
		show()
		sel.Subscribe(show)
	}

	<-ctx.Done()
	if err := feed.LastError(); err != nil {
		fmt.Fprintf(out, "last error: %v\n", err)
	}
	return nil
}
