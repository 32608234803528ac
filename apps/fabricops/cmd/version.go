// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.mondoo.com/fabricops"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the fabricops version and build details",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fabricops " + fabricops.GetVersion() + " (" + fabricops.GetBuild() + ")")
	},
}
