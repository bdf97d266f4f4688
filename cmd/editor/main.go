package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"scene-editor/internal/editorconfig"
)

type options struct {
	configPath  string
	scenePath   string
	metricsAddr string
	logLevel    string
	fullscreen  bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "scene-editor",
		Short:        "Interactive 3D scene editor",
		Long:         "Opens a window for picking, grouping and transforming primitives in a scene kept in a YAML file.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", editorconfig.DefaultPath, "editor preferences file")
	f.StringVar(&opts.scenePath, "scene", "", "scene file (overrides scene_file in the config)")
	f.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	f.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	f.BoolVar(&opts.fullscreen, "fullscreen", false, "start fullscreen")
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
