package main

import (
	"fmt"
	"net"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/funding-atlas/pkg/runtime/app"
	"github.com/de-tools/funding-atlas/pkg/server"
	"github.com/de-tools/funding-atlas/pkg/services/config"
)

var (
	cfgPath      string
	profilesPath string
	profile      string
	awsProfile   string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Funding Atlas",
		RunE:  runServer,
	}

	defaultProfiles, _ := config.DefaultProfilePath()

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to a settings file (default is $HOME/.config/fts/config.yaml)")
	rootCmd.Flags().StringVar(&profilesPath, "profiles", defaultProfiles, "Path to the .ftscfg profiles file")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", config.DefaultProfile, "FTS source profile")
	rootCmd.Flags().StringVar(&awsProfile, "aws-profile", "", "AWS shared config profile used for publishing")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	v := config.NewViper()
	if err := config.ReadConfig(v, cfgPath); err != nil {
		return err
	}
	settings, err := config.LoadSettings(v)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, app.Options{
		ProfilesPath: profilesPath,
		Profile:      profile,
		AWSProfile:   awsProfile,
		Settings:     settings,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	ctrl, err := a.Controller(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize workflow controller: %w", err)
	}

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")
	if host == "" || port == "" {
		return fmt.Errorf("missing SERVER_HOST or SERVER_PORT in the environment")
	}

	logger.Info().Int("year", settings.Year).Str("db", settings.DBPath).Msg("configuration loaded")

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Catalog:  a.Catalog,
			Workflow: ctrl,
			Logger:   logger,
		},
	})
	return api.Start()
}
