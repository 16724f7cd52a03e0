// Command roadnet builds, inspects and serves road network snapshots.
//
//	roadnet build --input network.json --profiles profiles.yaml lux.rnet
//	roadnet inspect lux.rnet
//	roadnet route --from 49.61,6.13 --to 49.60,6.12 lux.rnet
//	roadnet snapshot push --to s3://bucket/networks lux.rnet
//	roadnet serve --addr :8080 lux.rnet
//
// Snapshots live in the store selected with --store: a local directory
// (the default, "."), s3://bucket/prefix or minio://bucket/prefix.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/roadnet"
)

type app struct {
	store     string
	profiles  string
	logLevel  string
	logFormat string

	logger *roadnet.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "roadnet",
		Short:         "Build, inspect and serve road network snapshots",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := newLogger(a.logLevel, a.logFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.store, "store", ".", "snapshot store: directory, s3://bucket/prefix or minio://bucket/prefix")
	flags.StringVar(&a.profiles, "profiles", "profiles.yaml", "profile table (YAML)")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newBuildCmd(a),
		newInspectCmd(a),
		newRouteCmd(a),
		newScoresCmd(a),
		newSnapshotCmd(a),
		newServeCmd(a),
	)
	return root
}

func newLogger(level, format string, w io.Writer) (*roadnet.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: l}

	switch strings.ToLower(format) {
	case "text":
		return roadnet.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return roadnet.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
}
