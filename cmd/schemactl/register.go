/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/schemastore"
	"github.com/suparena/schemastore/access"
	"github.com/suparena/schemastore/registry"
)

func newRegisterCmd(a *app) *cobra.Command {
	var storeName string

	cmd := &cobra.Command{
		Use:   "register [descriptor...]",
		Short: "Register access types and create their schemas",
		Long: `register starts the configured stores and registers the named access types,
or every access type in the manifest, creating their schemas. Without --store
every configured store is started, configuration store first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptors, err := a.manifest()
			if err != nil {
				return err
			}
			picked, err := pick(descriptors, args)
			if err != nil {
				return err
			}

			m, err := newManager(a.cfg, registry.NewCatalog())
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if storeName != "" {
				store, err := m.Get(storeName)
				if err != nil {
					return err
				}
				if err := store.Start(ctx); err != nil {
					return err
				}
				defer store.Stop(context.WithoutCancel(ctx))
				return registerAll(ctx, cmd, store, descriptors, picked)
			}

			if err := m.StartAll(ctx); err != nil {
				_ = m.StopAll(context.WithoutCancel(ctx))
				return err
			}
			defer m.StopAll(context.WithoutCancel(ctx))
			for _, name := range m.Names() {
				store, err := m.Get(name)
				if err != nil {
					return err
				}
				if err := registerAll(ctx, cmd, store, descriptors, picked); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&storeName, "store", "s", "", "register into this store only")
	return cmd
}

func registerAll(ctx context.Context, cmd *cobra.Command, store *schemastore.Store, declared, picked []*access.Descriptor) error {
	if err := store.Declare(declared...); err != nil {
		return err
	}
	for _, d := range picked {
		if err := store.Register(ctx, d); err != nil {
			return fmt.Errorf("store %s: %w", store.Name(), err)
		}
		if store.IsRegistered(d) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: registered %s\n", store.Name(), d.Name())
		}
	}
	return nil
}
