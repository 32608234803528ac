// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mondoo.com/fabricops/capacity"
	"go.mondoo.com/fabricops/cli/config"
	"go.mondoo.com/fabricops/connection"
)

func init() {
	capacityCmd.AddCommand(capacityStatusCmd)
	capacityCmd.AddCommand(capacityResumeCmd)
	capacityCmd.AddCommand(capacitySuspendCmd)
	capacityCmd.AddCommand(capacityScaleCmd)
	rootCmd.AddCommand(capacityCmd)

	for _, cmd := range []*cobra.Command{capacityStatusCmd, capacityResumeCmd, capacitySuspendCmd, capacityScaleCmd} {
		cmd.Flags().String("subscription", "", "Azure subscription id of the capacity")
		cmd.Flags().String("resource-group", "", "Resource group of the capacity")
		cmd.Flags().String("name", "", "Name of the capacity")
		cmd.Flags().String("api-version", capacity.DefaultAPIVersion, "api-version used for the capacity resource provider")
		addAuthFlags(cmd)
		addRetryFlags(cmd)
	}
	capacityScaleCmd.Flags().String("sku", "", "Target SKU, e.g. F2, F64, F2048")
	capacityScaleCmd.MarkFlagRequired("sku")
}

var capacityCmd = &cobra.Command{
	Use:   "capacity",
	Short: "Manage the lifecycle of a fabric capacity",
}

func bindCapacityFlags(cmd *cobra.Command, args []string) {
	viper.BindPFlag(connection.OptionSubscriptionID, cmd.Flags().Lookup("subscription"))
	viper.BindPFlag("resource-group", cmd.Flags().Lookup("resource-group"))
	viper.BindPFlag("capacity", cmd.Flags().Lookup("name"))
	viper.BindPFlag("api-version", cmd.Flags().Lookup("api-version"))
	bindCommonFlags(cmd)
}

// newCapacityManager wires connection, client and manager from the
// effective configuration.
func newCapacityManager(ctx context.Context) (*capacity.Manager, *config.Config, error) {
	conn, conf, err := newConnection(ctx)
	if err != nil {
		return nil, nil, err
	}
	if conf.ResourceGroup == "" || conf.Capacity == "" {
		return nil, nil, fmt.Errorf("a resource-group and a capacity name are required")
	}
	log.Debug().
		Str("subscription", conn.SubName()).
		Str("resource-group", conf.ResourceGroup).
		Str("capacity", conf.Capacity).
		Msg("connected")

	client, err := capacity.NewClient(conn.SubID(), conn.Token(), &capacity.ClientOptions{
		ClientOptions: conn.ClientOptions(),
		APIVersion:    conf.APIVersion,
	})
	if err != nil {
		return nil, nil, err
	}
	policy := retryPolicy()
	mgr := capacity.NewManager(client, &capacity.ManagerOptions{
		Attempts:      policy.Attempts,
		RetryInterval: policy.Interval,
	})
	return mgr, conf, nil
}

var capacityStatusCmd = &cobra.Command{
	Use:    "status",
	Short:  "Show the current state of the capacity",
	PreRun: bindCapacityFlags,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		mgr, conf, err := newCapacityManager(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to the capacity")
		}
		c, err := mgr.Status(ctx, conf.ResourceGroup, conf.Capacity)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read the capacity status")
		}
		fmt.Printf("%s\t%s\t%s\t%s\n", c.Name, c.Location, c.SKU.Name, c.State())
	},
}

var capacityResumeCmd = &cobra.Command{
	Use:     "resume",
	Aliases: []string{"start"},
	Short:   "Resume the capacity if it is paused",
	PreRun:  bindCapacityFlags,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		mgr, conf, err := newCapacityManager(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to the capacity")
		}
		if err := mgr.EnsureActive(ctx, conf.ResourceGroup, conf.Capacity); err != nil {
			log.Fatal().Err(err).Msg("could not resume the capacity")
		}
	},
}

var capacitySuspendCmd = &cobra.Command{
	Use:     "suspend",
	Aliases: []string{"stop", "pause"},
	Short:   "Suspend the capacity if it is active",
	PreRun:  bindCapacityFlags,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		mgr, conf, err := newCapacityManager(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to the capacity")
		}
		if err := mgr.EnsureSuspended(ctx, conf.ResourceGroup, conf.Capacity); err != nil {
			log.Fatal().Err(err).Msg("could not suspend the capacity")
		}
	},
}

var capacityScaleCmd = &cobra.Command{
	Use:    "scale",
	Short:  "Scale the capacity to a different SKU",
	PreRun: bindCapacityFlags,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		sku, _ := cmd.Flags().GetString("sku")
		mgr, conf, err := newCapacityManager(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not connect to the capacity")
		}
		if err := mgr.Scale(ctx, conf.ResourceGroup, conf.Capacity, capacity.SKU{Name: sku}); err != nil {
			log.Fatal().Err(err).Msg("could not scale the capacity")
		}
	},
}
