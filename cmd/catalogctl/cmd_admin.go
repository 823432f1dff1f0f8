package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ignatzorin/zipzag-catalog/internal/goroutine"
	"github.com/ignatzorin/zipzag-catalog/internal/logger"
	"github.com/ignatzorin/zipzag-catalog/internal/repository"
	"github.com/ignatzorin/zipzag-catalog/internal/service"
)

var adminFlags struct {
	email    string
	password string
	name     string
	phone    string
	role     string
}

// catalogctl create-admin
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Создать администратора",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, conn, err := bootDB(cmd.Context())
		if err != nil {
			return err
		}
		defer conn.Close()

		// Запись в ленту уходит в фон, поэтому перед выходом ждём группу.
		group := goroutine.NewGroup(logger.Log)
		activity := service.NewActivityService(repository.NewActivityRepository(conn), nil, nil, group)
		admins := service.NewAdminUserService(repository.NewAdminUserRepository(conn), activity)

		user, err := admins.Create(cmd.Context(), service.AdminUserInput{
			FullName: adminFlags.name,
			Email:    adminFlags.email,
			Phone:    adminFlags.phone,
			Password: adminFlags.password,
			Role:     adminFlags.role,
		})
		if err != nil {
			return err
		}

		waitCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = group.Wait(waitCtx)

		fmt.Fprintf(cmd.OutOrStdout(), "создан %s (%s), id %s\n", user.Email, user.Role, user.ID)
		return nil
	},
}
