package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/de-tools/funding-atlas/pkg/runtime/app"
	"github.com/de-tools/funding-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/funding-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/funding-atlas/pkg/services/config"
)

// CLI represents the command-line interface
type CLI struct {
	viper    *viper.Viper
	reporter *export.Reporter
	output   io.Writer
	errOut   io.Writer
	rootCmd  *cobra.Command

	cfgFile      string
	profilesPath string
	profile      string
	awsProfile   string
}

// Options contain configuration for the CLI
type Options struct {
	Output    io.Writer
	ErrOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	cli := &CLI{
		viper:    config.NewViper(),
		reporter: export.NewReporter(opts.Output),
		output:   opts.Output,
		errOut:   opts.ErrOutput,
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "fts",
		Short:             "FTS requirements and funding tables per country",
		SilenceUsage:      true,
		PersistentPreRunE: cli.initConfig,
	}

	defaultProfiles, err := config.DefaultProfilePath()
	if err != nil {
		defaultProfiles = config.ProfileFile
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cli.cfgFile, "config", "", "config file (default: $HOME/.config/fts/config.yaml)")
	flags.StringVar(&cli.profilesPath, "profiles", defaultProfiles, "FTS source profiles file")
	flags.StringVar(&cli.profile, "profile", config.DefaultProfile, "FTS source profile")
	flags.StringVar(&cli.awsProfile, "aws-profile", "", "AWS shared config profile used for publishing")
	flags.String("db", "", "run ledger database path")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	_ = cli.viper.BindPFlag("db_path", flags.Lookup("db"))
	_ = cli.viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = cli.viper.BindPFlag("logging.format", flags.Lookup("log-format"))

	cmd.AddCommand(commands.NewGenerateCmd(cli.viper, cli.open, cli.reporter))
	cmd.AddCommand(commands.NewCountriesCmd(cli.open))
	cmd.AddCommand(commands.NewRunsCmd(cli.open))

	return cmd
}

func (cli *CLI) initConfig(cmd *cobra.Command, _ []string) error {
	if err := config.ReadConfig(cli.viper, cli.cfgFile); err != nil {
		return err
	}

	logger, err := NewLogger(cli.errOut, cli.viper.GetString("logging.level"), cli.viper.GetString("logging.format"))
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	cmd.SetContext(logger.WithContext(cmd.Context()))
	return nil
}

func (cli *CLI) open(ctx context.Context, writeFiles bool) (*app.App, error) {
	settings, err := config.LoadSettings(cli.viper)
	if err != nil {
		return nil, err
	}
	return app.New(ctx, app.Options{
		ProfilesPath: cli.profilesPath,
		Profile:      cli.profile,
		AWSProfile:   cli.awsProfile,
		Settings:     settings,
		WriteFiles:   writeFiles,
	})
}

// NewLogger builds the root logger for the given level and format.
func NewLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level: %s", level)
	}

	switch format {
	case "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid log format: %s", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
