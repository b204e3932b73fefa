package service

import (
	"inkwell/app/repositories"
	"inkwell/app/services"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func newUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect registered users",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered users",
		Args:  cobra.NoArgs,
		RunE:  runUsersList,
	})
	return cmd
}

func runUsersList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := repositories.Open(cfg.DBPath, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	authService := services.NewAuthService(
		repositories.NewBadgerUserRepository(db),
		repositories.NewBadgerSessionRepository(db),
		cfg.SessionTTL,
		nil,
	)
	users, err := authService.ListUsers()
	if err != nil {
		return err
	}
	if len(users) == 0 {
		printWarn(cmd.OutOrStdout(), "No users registered")
		return nil
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Username", "Created", "Age"})
	table.SetAutoWrapText(false)
	for _, user := range users {
		table.Append([]string{
			user.Username,
			user.CreatedAt.Format("2006-01-02 15:04:05"),
			humanize.Time(user.CreatedAt),
		})
	}
	table.Render()
	headerColor.Fprintf(cmd.OutOrStdout(), "%d user(s)\n", len(users))
	return nil
}
