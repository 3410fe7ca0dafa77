package main

import (
	"fmt"

	"github.com/josenava/meal-calendar/internal/service"

	"github.com/spf13/cobra"
)

var genhashCmd = &cobra.Command{
	Use:   "genhash [password]",
	Short: "Print a bcrypt hash for seeding users",
	Args:  cobra.MaximumNArgs(1),
	// config and logger are not needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		password := "admin"
		if len(args) > 0 {
			password = args[0]
		}
		h, err := service.HashPassword(password)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), h)
		return nil
	},
}
