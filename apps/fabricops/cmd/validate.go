// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mondoo.com/fabricops/validate"
)

func init() {
	validateCmd.Flags().String("workspace-path", ".", "folder holding the workspace contents and parameter.yml")
	validateCmd.Flags().StringSlice("types", []string{"Notebook", "DataPipeline", "Dataflow", "Report", "SemanticModel"}, "artifact types included in the analysis")
	validateCmd.Flags().StringSlice("exclude", nil, "workspace-relative paths excluded from the analysis")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a parameter.yml file against the workspace artifacts",
	Run: func(cmd *cobra.Command, args []string) {
		workspacePath, _ := cmd.Flags().GetString("workspace-path")
		types, _ := cmd.Flags().GetStringSlice("types")
		excluded, _ := cmd.Flags().GetStringSlice("exclude")

		report, err := validate.Run(validate.Options{
			WorkspacePath: workspacePath,
			ArtifactTypes: types,
			ExcludedPaths: excluded,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("validation did not complete")
		}
		if report.HasErrors() {
			os.Exit(1)
		}
	},
}
