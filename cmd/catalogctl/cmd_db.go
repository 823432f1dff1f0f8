package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/ignatzorin/zipzag-catalog/internal/config"
	"github.com/ignatzorin/zipzag-catalog/internal/db"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
)

// bootDB читает конфигурацию и открывает соединение с базой.
func bootDB(ctx context.Context) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	conn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPool)
	if err != nil {
		return nil, nil, err
	}
	return cfg, conn, nil
}

// catalogctl migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить все новые миграции",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, conn, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		applied, err := db.RunMigrations(cmd.Context(), conn, cfg.MigrationsPath)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Новых миграций нет")
			return nil
		}
		for _, name := range applied {
			fmt.Fprintf(cmd.OutOrStdout(), "применена %s\n", name)
		}
		return nil
	},
}

// catalogctl migrate status
var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Показать состояние каждой миграции",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, conn, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		list, err := db.MigrationStatus(cmd.Context(), conn, cfg.MigrationsPath)
		if err != nil {
			return err
		}
		return printMigrations(cmd.OutOrStdout(), list)
	},
}

func printMigrations(out io.Writer, list []db.Migration) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "МИГРАЦИЯ\tСТАТУС\tПРИМЕНЕНА")
	for _, m := range list {
		status, at := "ожидает", "-"
		if m.Applied {
			status = "применена"
			if m.AppliedAt != nil {
				at = m.AppliedAt.Format("2006-01-02 15:04:05")
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Name, status, at)
	}
	return w.Flush()
}
