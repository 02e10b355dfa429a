/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/schemastore"
	"github.com/suparena/schemastore/registry"
)

func newBackupCmd(a *app) *cobra.Command {
	var storeName string

	cmd := &cobra.Command{
		Use:   "backup <location>",
		Short: "Back up a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := newManager(a.cfg, registry.NewCatalog())
			if err != nil {
				return err
			}
			store, err := m.Get(storeName)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err := store.Start(ctx); err != nil {
				return err
			}
			defer store.Stop(context.WithoutCancel(ctx))

			if err := store.Backup(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: backed up to %s\n", store.Name(), args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&storeName, "store", "s", schemastore.ConfigStoreName, "store to back up")
	return cmd
}
