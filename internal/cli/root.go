package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/daylist/internal/config"
	"github.com/sadopc/daylist/internal/logging"
	"github.com/sadopc/daylist/internal/navigator"
	"github.com/sadopc/daylist/internal/store"
	"github.com/sadopc/daylist/internal/tui"
)

// Version is set at build time.
var Version = "dev"

// RootCommand is the daylist entry point. Without a subcommand it starts the TUI.
type RootCommand struct {
	cmd *cobra.Command

	configPath string
	cfg        config.Config
	loc        *time.Location
	store      *store.Store
	logCloser  io.Closer

	// runTUI is replaced in tests.
	runTUI func(r *RootCommand) error
}

// NewRootCommand creates the root cobra command with its subcommands.
func NewRootCommand() *RootCommand {
	root := &RootCommand{runTUI: runProgram}

	root.cmd = &cobra.Command{
		Use:   "daylist",
		Short: "A day-by-day to-do list for the terminal",
		Long: `daylist keeps a to-do list per calendar day.

Run without arguments to open the interactive view, or use the subcommands
to script against the same database.

EXAMPLES:
  daylist                              # Open today's list
  daylist add "Buy milk"               # Add a task for today
  daylist add "Call Bob" --date 2025-01-03
  daylist list --date yesterday        # Print yesterday's tasks
  daylist done 4                       # Mark task 4 as done
  daylist export --format json         # Write today's tasks as JSON

CONFIGURATION:
  The config file is taken from --config, then $DAYLIST_CONFIG, then
  <user config dir>/daylist/config.toml. It is created with defaults on first run.
  Set DAYLIST_DEBUG=1 to write debug lines to the log file.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.runTUI(root)
		},
	}

	root.cmd.PersistentFlags().StringVar(&root.configPath, "config", "", "config file (overrides $DAYLIST_CONFIG)")
	root.addSubcommands()

	return root
}

// Execute runs the command line and releases the store and log file.
func (r *RootCommand) Execute() error {
	err := r.cmd.Execute()
	if cerr := r.close(); err == nil {
		err = cerr
	}
	return err
}

func (r *RootCommand) open() error {
	path := r.configPath
	if path == "" {
		path = config.ResolveConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	closer, err := logging.Setup(cfg.LogFile)
	if err != nil {
		return err
	}
	r.logCloser = closer

	s, err := store.New(cfg.DBPath,
		store.WithLocation(loc),
		store.WithRetry(cfg.Retry.Attempts, cfg.RetryDelay()),
	)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	logging.Debugf("opened %s (tz %s)", cfg.DBPath, loc)

	r.cfg, r.loc, r.store = cfg, loc, s
	return nil
}

func (r *RootCommand) close() error {
	var errs []error
	if r.store != nil {
		errs = append(errs, r.store.Close())
		r.store = nil
	}
	if r.logCloser != nil {
		errs = append(errs, r.logCloser.Close())
		r.logCloser = nil
	}
	return errors.Join(errs...)
}

func runProgram(r *RootCommand) error {
	nav := navigator.New(r.store, r.loc)
	p := tea.NewProgram(tui.NewApp(r.store, nav, r.cfg.ExportDir), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
