package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/models"
	"github.com/dwusrc/dwu-src-web-application-sub002/internal/profiles"
	"github.com/dwusrc/dwu-src-web-application-sub002/pkg/logger"
)

var (
	assignEmail      string
	assignRole       string
	assignDepartment string
	assignInactive   bool
)

// Role changes are an operator task; the HTTP API never mutates roles.
var assignRoleCmd = &cobra.Command{
	Use:   "assign-role",
	Short: "Set the role and SRC department of an existing account",
	Example: `  src-portal assign-role --email pres@dwu.ac.pg --role src --department President
  src-portal assign-role --email old@dwu.ac.pg --role student --inactive`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, _, err := build(cmd.Context())
		if err != nil {
			return err
		}
		defer app.Close(cmd.Context())

		id, err := app.Identity.Lookup(cmd.Context(), assignEmail)
		if err != nil {
			return err
		}
		if id == nil {
			return fmt.Errorf("no account for %s", assignEmail)
		}
		a := profiles.Assignment{Role: models.Role(assignRole), SRCDepartment: assignDepartment, IsActive: !assignInactive}
		if err := app.Profiles.Assign(cmd.Context(), id.ID, a); err != nil {
			return err
		}
		logger.Infof("assigned role=%s department=%q active=%v to %s", a.Role, a.SRCDepartment, a.IsActive, id.ID)
		return nil
	},
}

func init() {
	assignRoleCmd.Flags().StringVar(&assignEmail, "email", "", "account email")
	assignRoleCmd.Flags().StringVar(&assignRole, "role", "", "student, src or admin")
	assignRoleCmd.Flags().StringVar(&assignDepartment, "department", "", "SRC department (src role only)")
	assignRoleCmd.Flags().BoolVar(&assignInactive, "inactive", false, "deactivate the account")
	_ = assignRoleCmd.MarkFlagRequired("email")
	_ = assignRoleCmd.MarkFlagRequired("role")
}
