// Package cli is the tada command line: the interactive client when run
// without a subcommand, and scriptable subcommands against the same server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/tada-remote/internal/api"
	"github.com/Makepad-fr/tada-remote/internal/auth"
	"github.com/Makepad-fr/tada-remote/internal/config"
	"github.com/Makepad-fr/tada-remote/internal/logging"
	"github.com/Makepad-fr/tada-remote/internal/store/prefs"
	"github.com/Makepad-fr/tada-remote/internal/tui"
	"github.com/Makepad-fr/tada-remote/internal/ui"
)

// usageError marks errors caused by how the command was invoked.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usagef(format string, a ...any) error { return usageError{fmt.Errorf(format, a...)} }

func usageArgs(v cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := v(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

// app holds what every subcommand needs. It is filled in by the root
// command's PersistentPreRunE, after flags are parsed.
type app struct {
	// flags
	server     string
	configPath string
	verbose    bool
	group      bool

	dir    string
	cfg    *config.Config
	log    *zap.Logger
	client *api.Client
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	a.dir = dir

	if a.configPath == "" {
		if a.configPath, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if s := strings.TrimSpace(a.server); s != "" {
		cfg.Server = s
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	a.cfg = cfg

	log, err := logging.New(logging.Options{
		Path:    cfg.LogPath(dir),
		Level:   cfg.Logging.Level,
		Verbose: a.verbose,
	})
	if err != nil {
		return err
	}
	a.log = log.With(zap.String("cmd", cmd.Name()))

	client, err := api.New(cfg.Server, cfg.RequestTimeout(),
		api.WithToken(a.tokens().Bearer),
		api.WithLogger(a.log),
	)
	if err != nil {
		return usageError{err}
	}
	a.client = client
	return nil
}

func (a *app) tokens() auth.Store { return auth.Store{Dir: a.dir} }
func (a *app) prefs() prefs.Store { return prefs.Store{Dir: a.dir} }

// theme is the one stored for the interactive client, so both look alike.
func (a *app) theme() ui.Theme {
	p, err := a.prefs().Load()
	if err != nil {
		a.log.Debug("load preferences", zap.Error(err))
	}
	return ui.For(p.DarkMode)
}

// interactive runs the full-screen client.
func (a *app) interactive(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store := a.prefs()

	changes, err := store.Watch(ctx, a.log)
	if err != nil {
		a.log.Warn("preferences will not live-reload", zap.Error(err))
	}

	a.log.Info("starting", zap.String("server", a.cfg.Server))
	return tui.Run(tui.Options{
		Context:     ctx,
		Backend:     a.client,
		Prefs:       store,
		Logger:      a.log,
		Animation:   a.cfg.AnimationDuration(),
		DeleteDelay: a.cfg.DeleteDelayDuration(),
		PrefChanges: changes,
	})
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "tada",
		Short: "A terminal client for a server-held todo list",
		Long: `tada mirrors the todo list kept by a tada server.

Run without a subcommand for the interactive client. The subcommands do the
same things from scripts; list indexes are the 1-based positions shown by
"tada ls".`,
		Example: `  tada
  tada add "Buy milk"
  tada ls --group
  tada done 2
  tada undo`,
		Args:              usageArgs(cobra.NoArgs),
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
		RunE:          a.interactive,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err} })

	pf := root.PersistentFlags()
	pf.StringVar(&a.server, "server", "", "todo server base URL (overrides config and $TADA_SERVER)")
	pf.StringVar(&a.configPath, "config", "", "config file (default $TADA_HOME/config.yaml or ~/.tada/config.yaml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to the log file")

	root.AddCommand(
		a.lsCmd(),
		a.addCmd(),
		a.doneCmd(),
		a.rmCmd(),
		a.clearCmd(),
		a.undoCmd(),
		a.themeCmd(),
		a.authCmd(),
		a.configCmd(),
	)
	return root
}

// Run executes the command line and returns the process exit code:
// 0 on success, 2 for usage errors, 1 for everything else.
func Run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	ui.Fail(errOut, err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(errOut, "Run 'tada --help' for usage.")
		return 2
	}
	return 1
}

// Execute runs the process command line.
func Execute(ctx context.Context) int {
	return Run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
