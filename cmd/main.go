package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adanyl0v/go-task-tracker/internal/app"
)

var Version = "dev"

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:     "task-tracker",
		Short:   "Multi-user task assignment tracker",
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			serve(envFile)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Read configuration from a dotenv file instead of the environment")

	rootCmd.AddCommand(serveCmd(&envFile))
	rootCmd.AddCommand(migrateCmd(&envFile))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serve(*envFile)
			return nil
		},
	}
}

func migrateCmd(envFile *string) *cobra.Command {
	var thenServe bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bootstrap(*envFile)
			defer app.DisconnectPostgres()

			app.MustMigratePostgres()
			if thenServe {
				app.MustListenAndServeHTTP()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&thenServe, "serve", false, "Start the HTTP API after migrating")

	return cmd
}

func bootstrap(envFile string) {
	app.InitDefaultLogger()
	app.MustReadEnv(envFile)
	app.MustInitApplicationLogger()

	app.MustConnectPostgres()
}

func serve(envFile string) {
	bootstrap(envFile)
	defer app.DisconnectPostgres()

	app.MustListenAndServeHTTP()
}
