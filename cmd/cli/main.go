package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mlavelle/wardroster/cmd/cli/commands"
	"github.com/mlavelle/wardroster/internal/config"
	"github.com/mlavelle/wardroster/pkg/clients/gmailclient"
	"github.com/mlavelle/wardroster/pkg/postgres"
	"github.com/mlavelle/wardroster/pkg/utils/logging"
)

var (
	env string
	app *commands.AppContext
	db  *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wardroster",
		Short: "Ward Roster CLI - Constraint-based shift scheduling with consent offers",
		Long:  `A CLI tool for generating monthly ward schedules, sending change offers, and settling token rewards.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.GenerateCmd(appRef()))
	rootCmd.AddCommand(commands.FinalizeCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef hands commands the context slot before initApp fills it
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, clients, and database
func initApp() error {
	appRef()
	app.Ctx = context.Background()

	// Initialize logger
	logger, err := logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Initialize gmail client. Missing credentials are not fatal: the run
	// continues without the mail channel.
	app.Logger.Info("Initializing gmail client")
	oauthCfg, err := config.LoadOAuthClient()
	if err != nil {
		app.Logger.Warn("OAuth client config unavailable, continuing without mail", zap.Error(err))
	} else {
		gmailClient, err := gmailclient.NewClient(app.Ctx, oauthCfg, app.Cfg.GmailUserID, env)
		switch {
		case errors.Is(err, gmailclient.ErrMissingCredentials):
			app.Logger.Warn("Gmail credentials missing, continuing without mail", zap.Error(err))
		case err != nil:
			return fmt.Errorf("failed to create gmail client: %w", err)
		default:
			app.GmailClient = gmailClient
			app.Logger.Debug("Gmail client initialized successfully")
		}
	}

	// Connect to the database and ensure the schema exists
	app.Logger.Info("Connecting to database")
	db, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.RunMigrations(app.Ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	app.Database = db
	app.Logger.Info("Database initialized successfully")

	return nil
}
