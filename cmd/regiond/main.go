package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"regiond/config"
	"regiond/internal/db"
	"regiond/internal/logs"
	"regiond/server"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "regiond",
	Short:         "Region controller for fabrics, VLANs, subnets and IP addresses",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		var app server.App
		if err := app.Initialize(cmd.Context(), cfg); err != nil {
			app.Close()
			return err
		}
		return app.Run(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		d, err := db.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(d); err != nil {
			return err
		}
		logs.Logger.Info("schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file (yaml, json or toml)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "regiond:", err)
		os.Exit(1)
	}
}
