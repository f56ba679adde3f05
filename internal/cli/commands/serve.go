package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldrill/internal/ui"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Host      string
	Port      int
	NoBrowser bool
	Watch     bool
	Dev       bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"ui"},
		Short:   "Start the web practice UI",
		Long: `Start a local web server with an interactive practice UI.

The UI provides:
- Exercise list with completion marks
- SQL editor with automatic draft saving
- Run and submit with result tables
- Progressive hints and reference solutions
- Dataset preview
- JSON API under /api

Each browser gets its own learner, kept in a session cookie.`,
		Example: `  # Start UI on the default port
  sqldrill serve

  # Start on a custom port, reachable from the network
  sqldrill serve --host 0.0.0.0 --port 3000

  # Start without auto-opening the browser
  sqldrill serve --no-browser`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Host, "host", "127.0.0.1", "Interface to listen on")
	cmd.Flags().IntVar(&opts.Port, "port", 0, "Port to serve on (default: 8787)")
	cmd.Flags().BoolVar(&opts.NoBrowser, "no-browser", false, "Don't auto-open browser")
	cmd.Flags().BoolVar(&opts.Watch, "watch", true, "Reload exercises when the catalog file changes")
	cmd.Flags().BoolVar(&opts.Dev, "dev", false, "Serve assets from disk and reload pages on restart")
	_ = cmd.Flags().MarkHidden("dev")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// CLI flags override config file
	uiCfg := cc.Cfg.GetUIConfig()
	port := uiCfg.Port
	if opts.Port != 0 {
		port = opts.Port
	}

	autoOpen := uiCfg.AutoOpen
	if opts.NoBrowser {
		autoOpen = false
	}

	watch := uiCfg.Watch
	if cmd.Flags().Changed("watch") {
		watch = opts.Watch
	}

	server := ui.NewServer(ui.Config{
		Engine:        cc.Engine,
		Host:          opts.Host,
		Port:          port,
		Watch:         watch,
		SessionSecret: sessionSecret(),
		Logger:        cc.Logger,
		ExercisesDir:  cc.Cfg.ExercisesDir,
		PreviewLimit:  uiCfg.PreviewLimit,
		Dev:           opts.Dev,
	})

	url := "http://" + browserAddr(opts.Host, port)
	if autoOpen {
		go openBrowser(url)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Starting UI server on %s\n", url)
	if watch && cc.Cfg.ExercisesDir != "" {
		_, _ = fmt.Fprintf(out, "Watching %s for changes\n", cc.Cfg.ExercisesDir)
	}
	_, _ = fmt.Fprintln(out, "Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	return server.Serve(ctx)
}

// browserAddr returns the address to open in a browser for the listen host.
func browserAddr(host string, port int) string {
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// sessionSecret returns the cookie signing key from SQLDRILL_SESSION_SECRET.
func sessionSecret() string {
	secret := os.Getenv("SQLDRILL_SESSION_SECRET")
	if secret == "" {
		// Default secret for local use
		secret = "sqldrill-dev-secret-change-in-production" //nolint:gosec
	}
	return secret
}

// openBrowser opens the default browser to the specified URL.
func openBrowser(url string) {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url) //nolint:noctx
	case "linux":
		cmd = exec.Command("xdg-open", url) //nolint:noctx
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url) //nolint:noctx
	default:
		return
	}

	_ = cmd.Start()
}
