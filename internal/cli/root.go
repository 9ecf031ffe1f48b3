package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/hullworks/slipway/internal"
	"github.com/hullworks/slipway/internal/server"
)

// Represents the root command for the slipway CLI.
var RootCmd struct {
	Quiet      bool       `short:"q" help:"Suppress informational output."`
	Verbose    bool       `short:"v" help:"Enable verbose output."`
	Debug      bool       `short:"d" help:"Enable debug output."`
	Socket     string     `short:"s" help:"Override the default Unix socket path." placeholder:"PATH"`
	Containerd string     `help:"Containerd socket address." default:"${containerd_address}" placeholder:"PATH"`
	Namespace  string     `help:"Containerd namespace for images and containers." default:"${containerd_namespace}"`
	Build      BuildCmd   `cmd:"" help:"Build a node image from a manifest."`
	Run        RunCmd     `cmd:"" help:"Launch a built node image."`
	Dev        DevCmd     `cmd:"" help:"Rebuild the image whenever the source tree changes."`
	Daemon     DaemonCmd  `cmd:"" help:"Run the build daemon."`
	Version    VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Builds node images from declarative manifests and launches them via containerd."),
		kong.UsageOnError(),
		kong.Vars{
			"version":              internal.VersionString(),
			"containerd_address":   server.DefaultContainerdAddress,
			"containerd_namespace": server.DefaultContainerdNamespace,
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	logger, ok := slog.Default().Handler().(*charmlog.Logger)
	if !ok {
		return // Not a charm logger, nothing to configure
	}

	debug := RootCmd.Debug || internal.IsDebug()
	quiet := RootCmd.Quiet || internal.IsQuiet()
	verbose := RootCmd.Verbose || internal.IsVerbose()

	// Fold the flags back into the global mode state so packages that
	// consult it after parsing see the final values.
	internal.SetDebug(debug)
	internal.SetQuiet(quiet)
	internal.SetVerbose(verbose)

	switch {
	case debug:
		logger.SetLevel(charmlog.DebugLevel)
	case quiet:
		logger.SetLevel(charmlog.WarnLevel)
	default:
		logger.SetLevel(charmlog.InfoLevel)
	}

	logger.SetReportCaller(debug)
	logger.SetReportTimestamp(verbose || debug)
}
