// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mondoo.com/fabricops/cli/config"
	"go.mondoo.com/fabricops/connection"
	"go.mondoo.com/fabricops/connection/auth"
	"go.mondoo.com/fabricops/logger"
	"go.mondoo.com/fabricops/utils/retryx"
)

// addAuthFlags registers the azure identity flags shared by all
// commands that talk to the platform. The connection option constants
// double as the viper keys.
func addAuthFlags(cmd *cobra.Command) {
	cmd.Flags().String(connection.OptionTenantID, "", "Directory (tenant) ID of the service principal")
	cmd.Flags().String(connection.OptionClientID, "", "Application (client) ID of the service principal or user-assigned identity")
	cmd.Flags().String(connection.OptionClientSecret, "", "Secret for application authentication")
	cmd.Flags().Bool("managed-identity", false, "Authenticate with the ambient managed identity")
}

// addRetryFlags registers the retry knobs. The defaults match the
// automation runbooks: three attempts, 30 seconds apart.
func addRetryFlags(cmd *cobra.Command) {
	cmd.Flags().Int("retry-attempts", retryx.DefaultAttempts, "How often to try a platform call before giving up")
	cmd.Flags().Duration("retry-delay", retryx.DefaultInterval, "Fixed delay between attempts")
}

func bindAuthFlags(cmd *cobra.Command) {
	viper.BindPFlag(connection.OptionTenantID, cmd.Flags().Lookup(connection.OptionTenantID))
	viper.BindPFlag(connection.OptionClientID, cmd.Flags().Lookup(connection.OptionClientID))
	viper.BindPFlag(connection.OptionClientSecret, cmd.Flags().Lookup(connection.OptionClientSecret))
	viper.BindPFlag("managed-identity", cmd.Flags().Lookup("managed-identity"))
}

func bindCommonFlags(cmd *cobra.Command) {
	bindAuthFlags(cmd)
	viper.BindPFlag("retry-attempts", cmd.Flags().Lookup("retry-attempts"))
	viper.BindPFlag("retry-delay", cmd.Flags().Lookup("retry-delay"))
}

func authConfig(conf *config.Config) auth.Config {
	return auth.Config{
		TenantID:           conf.TenantID,
		ClientID:           conf.ClientID,
		ClientSecret:       conf.ClientSecret,
		UseManagedIdentity: conf.UseManagedIdentity,
	}
}

func retryPolicy() retryx.Policy {
	return retryx.Policy{
		Attempts: viper.GetInt("retry-attempts"),
		Interval: viper.GetDuration("retry-delay"),
	}
}

// newConnection reads the effective config and binds a connection to
// the configured subscription.
func newConnection(ctx context.Context) (*connection.FabricConnection, *config.Config, error) {
	conf, err := config.Read()
	if err != nil {
		return nil, nil, err
	}
	connConf := connection.Config{
		Auth:           authConfig(conf),
		SubscriptionID: conf.SubscriptionID,
	}
	// at trace level every outgoing request is dumped to the log
	if zerolog.GlobalLevel() == zerolog.TraceLevel {
		connConf.ClientOptions.Transport = logger.TraceTransporter(nil)
	}
	conn, err := connection.NewFabricConnection(ctx, connConf)
	if err != nil {
		return nil, nil, err
	}
	return conn, conf, nil
}
