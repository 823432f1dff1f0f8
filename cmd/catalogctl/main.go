package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "catalogctl",
	Short:         "Служебные команды админки ZipZag",
	Long:          "catalogctl применяет миграции и заводит администраторов без запуска HTTP сервера.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	migrateCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(migrateCmd)

	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "email администратора")
	createAdminCmd.Flags().StringVar(&adminFlags.password, "password", "", "пароль (не короче 6 символов)")
	createAdminCmd.Flags().StringVar(&adminFlags.name, "name", "", "полное имя")
	createAdminCmd.Flags().StringVar(&adminFlags.phone, "phone", "0000000000", "телефон")
	createAdminCmd.Flags().StringVar(&adminFlags.role, "role", "sub-admin", "роль: super-admin или sub-admin")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	_ = createAdminCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(createAdminCmd)
}
