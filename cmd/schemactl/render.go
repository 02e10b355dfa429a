/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/suparena/schemastore/logging"
	"github.com/suparena/schemastore/mapper"
	"github.com/suparena/schemastore/template"
)

func newRenderCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "render <descriptor>",
		Short: "Print the mapper definition of an access type",
		Long: `render prints the definition the store would register for the named access
type. Templated access types are assembled from their template and override,
plain ones are printed as found.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptors, err := a.manifest()
			if err != nil {
				return err
			}
			picked, err := pick(descriptors, args)
			if err != nil {
				return err
			}
			d := picked[0]

			loader := mapper.NewLoader(os.DirFS(a.cfg.Mappers))
			tmpl := template.Find(d)
			if tmpl == nil {
				body, err := loader.Load(d, true)
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}

			prefix, err := template.DerivePrefix(d.SimpleName(), tmpl.SimpleName())
			if err != nil {
				return err
			}
			def, err := mapper.NewAssembler(loader, logging.GetLogger("render")).Assemble(cmd.Context(), d, prefix, tmpl)
			if err != nil {
				return err
			}
			log.Info().Str("location", def.Location).Msg("Assembled definition")
			_, err = fmt.Fprintln(cmd.OutOrStdout(), def.Body)
			return err
		},
	}
}
