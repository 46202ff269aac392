package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/domain"
)

func newPromoteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <identity-id>",
		Short: "Grant ADMIN to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, e, func(ctx context.Context, b *backend) error {
				identity := application.NewIdentityService(b.cols, b.adminEmails, b.logger)
				roles := application.NewRoleService(identity, b.cols, b.logger)
				u, err := roles.Promote(ctx, args[0])
				if err != nil {
					if errors.Is(err, domain.ErrNotFound) {
						return userError(fmt.Errorf("user %q not found", args[0]))
					}
					return sysError(err)
				}
				return writeJSON(e.out, u)
			})
		},
	}
}
