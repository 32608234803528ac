// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mondoo.com/fabricops/cli/config"
	"go.mondoo.com/fabricops/connection"
	"go.mondoo.com/fabricops/connection/auth"
	"go.mondoo.com/fabricops/logger"
)

func init() {
	addAuthFlags(subscriptionsCmd)
	rootCmd.AddCommand(subscriptionsCmd)
}

// subscriptionsCmd helps operators find the subscription id the
// capacity commands need.
var subscriptionsCmd = &cobra.Command{
	Use:   "subscriptions",
	Short: "List the azure subscriptions the credential can access",
	PreRun: func(cmd *cobra.Command, args []string) {
		bindAuthFlags(cmd)
	},
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := config.Read()
		if err != nil {
			log.Fatal().Err(err).Msg("could not read the configuration")
		}
		token, err := auth.GetTokenCredential(authConfig(conf))
		if err != nil {
			log.Fatal().Err(err).Msg("could not fetch credentials")
		}

		var clientOptions policy.ClientOptions
		if zerolog.GlobalLevel() == zerolog.TraceLevel {
			clientOptions.Transport = logger.TraceTransporter(nil)
		}
		client := connection.NewSubscriptionsClient(token, clientOptions)
		subs, err := client.GetSubscriptions(cmd.Context())
		if err != nil {
			log.Fatal().Err(err).Msg("could not list subscriptions")
		}

		for i := range subs {
			id := ""
			if subs[i].SubscriptionID != nil {
				id = *subs[i].SubscriptionID
			}
			name := ""
			if subs[i].DisplayName != nil {
				name = *subs[i].DisplayName
			}
			fmt.Printf("%s\t%s\n", id, name)
		}
	},
}
