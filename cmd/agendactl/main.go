package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/agenda-api/config"
	"github.com/jwalitptl/agenda-api/internal/repository/postgres"
	"github.com/jwalitptl/agenda-api/internal/seed"
	"github.com/jwalitptl/agenda-api/pkg/logger"
	"github.com/jwalitptl/agenda-api/pkg/metrics"
	"github.com/jwalitptl/agenda-api/pkg/security"
	"github.com/jwalitptl/agenda-api/pkg/validator"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "agendactl",
		Short:         "Administrative tasks for the agenda API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(rutCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger.Setup(logger.Config{Level: cfg.Log.Level, Format: "console", Output: os.Stderr})
	return cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and reference data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := postgres.NewDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo funcionarios, pacientes and segmentos",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			migrate, _ := cmd.Flags().GetBool("migrate")

			ctx := cmd.Context()
			db, err := postgres.NewDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if migrate {
				if err := postgres.Migrate(ctx, db); err != nil {
					return err
				}
			}
			repos := postgres.NewRepositories(db, metrics.NewNop())
			if err := seed.Load(ctx, repos, security.NewBcryptHasher(cfg.Security.BcryptCost)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "seed data loaded")
			return nil
		},
	}
	cmd.Flags().Bool("migrate", false, "Apply migrations before seeding")
	return cmd
}

func rutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rut",
		Short: "Check and format Chilean RUTs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <rut>...",
		Short: "Report whether each RUT is valid",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invalid := 0
			for _, rut := range args {
				kind := validator.ValidateRut(rut)
				if !kind.OK() {
					invalid++
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", rut, kind)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tok\n", rut)
			}
			if invalid > 0 {
				return fmt.Errorf("%d invalid rut(s)", invalid)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "format <rut>...",
		Short: "Print each RUT as 12.345.678-5",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, rut := range args {
				fmt.Fprintln(cmd.OutOrStdout(), validator.FormatRut(rut))
			}
			return nil
		},
	})

	return cmd
}
