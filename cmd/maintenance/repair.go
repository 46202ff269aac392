package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/oksasatya/delivery-marketplace/internal/application"
)

func newRepairCmd(e *env) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("repair")
	_ = v.BindEnv("apply")

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Find orphaned records and, with --apply, delete them",
		Long: `Scans users, stores, products, orders and order items for references
that no longer resolve. Without --apply (or REPAIR_APPLY=true) nothing is
deleted. The JSON report is printed even when a phase fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun := !v.GetBool("apply")
			return withBackend(cmd, e, func(ctx context.Context, b *backend) error {
				r := application.NewRepairer(b.cols, b.index, b.logger)
				rep, runErr := r.Run(ctx, dryRun)
				if err := writeJSON(e.out, rep); err != nil {
					return sysError(err)
				}
				if runErr != nil {
					return sysError(runErr)
				}
				return nil
			})
		},
	}
	cmd.Flags().Bool("apply", false, "delete orphans instead of reporting them")
	_ = v.BindPFlag("apply", cmd.Flags().Lookup("apply"))
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
