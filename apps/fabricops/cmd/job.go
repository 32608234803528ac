// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mondoo.com/fabricops/cli/config"
	"go.mondoo.com/fabricops/connection/auth"
	"go.mondoo.com/fabricops/jobs"
	"go.mondoo.com/fabricops/logger"
)

func init() {
	jobRunCmd.AddCommand(jobRunPipelineCmd)
	jobRunCmd.AddCommand(jobRunNotebookCmd)
	jobRunCmd.AddCommand(jobRunDataflowCmd)
	jobCmd.AddCommand(jobRunCmd)
	jobCmd.AddCommand(jobStatusCmd)
	rootCmd.AddCommand(jobCmd)

	for _, cmd := range []*cobra.Command{jobRunPipelineCmd, jobRunNotebookCmd, jobRunDataflowCmd, jobStatusCmd} {
		cmd.Flags().String("workspace", "", "Fabric workspace id")
		cmd.Flags().String("item", "", "Artifact (item) id inside the workspace")
		cmd.MarkFlagRequired("item")
		addAuthFlags(cmd)
		addRetryFlags(cmd)
	}

	jobRunPipelineCmd.Flags().StringToString("param", nil, "pipeline parameters, multiple can be passed via --param key=value")
	jobRunNotebookCmd.Flags().StringArray("param", nil, "notebook parameters as name=value or name:type=value (types: string, int, float, bool)")
	jobRunNotebookCmd.Flags().String("lakehouse-name", "", "default lakehouse for the notebook session")
	jobRunNotebookCmd.Flags().String("lakehouse-id", "", "id of the default lakehouse")
	jobRunDataflowCmd.Flags().StringArray("param", nil, "dataflow parameters as name:type=value, order is preserved")
	jobStatusCmd.Flags().String("id", "", "job instance id")
	jobStatusCmd.MarkFlagRequired("id")
}

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Invoke fabric artifacts and inspect their runs",
}

var jobRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a job instance for a fabric artifact",
}

func bindJobFlags(cmd *cobra.Command, args []string) {
	viper.BindPFlag("workspace", cmd.Flags().Lookup("workspace"))
	bindCommonFlags(cmd)
}

// newJobsClient builds a jobs client from the effective configuration.
// Job invocations are scoped by workspace, not by subscription, so no
// subscription binding happens here.
func newJobsClient() (*jobs.Client, *config.Config, error) {
	conf, err := config.Read()
	if err != nil {
		return nil, nil, err
	}
	if conf.Workspace == "" {
		return nil, nil, errors.New("a workspace id is required")
	}
	token, err := auth.GetTokenCredential(authConfig(conf))
	if err != nil {
		return nil, nil, err
	}
	opts := &jobs.ClientOptions{Retry: retryPolicy()}
	if zerolog.GlobalLevel() == zerolog.TraceLevel {
		opts.Transport = logger.TraceTransporter(nil)
	}
	client := jobs.NewClient(token, opts)
	return client, conf, nil
}

var jobRunPipelineCmd = &cobra.Command{
	Use:    "pipeline",
	Short:  "Run a data pipeline",
	PreRun: bindJobFlags,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		item, _ := cmd.Flags().GetString("item")
		rawParams, _ := cmd.Flags().GetStringToString("param")

		client, conf, err := newJobsClient()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create the jobs client")
		}
		params := jobs.PipelineParameters{}
		for k, v := range rawParams {
			params[k] = v
		}
		res, err := client.RunPipeline(ctx, conf.Workspace, item, params)
		if err != nil {
			log.Fatal().Err(err).Msg("could not start the pipeline")
		}
		fmt.Println(res.JobInstanceID)
	},
}

var jobRunNotebookCmd = &cobra.Command{
	Use:    "notebook",
	Short:  "Run a notebook",
	PreRun: bindJobFlags,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		item, _ := cmd.Flags().GetString("item")
		rawParams, _ := cmd.Flags().GetStringArray("param")
		lakehouseName, _ := cmd.Flags().GetString("lakehouse-name")
		lakehouseID, _ := cmd.Flags().GetString("lakehouse-id")

		client, conf, err := newJobsClient()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create the jobs client")
		}
		params := jobs.NotebookParameters{}
		for _, raw := range rawParams {
			name, typ, value, err := parseTypedParam(raw)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid notebook parameter")
			}
			params[name] = jobs.NotebookParameter{Value: value, Type: typ}
		}
		var cfg *jobs.NotebookConfiguration
		if lakehouseName != "" || lakehouseID != "" {
			cfg = &jobs.NotebookConfiguration{
				DefaultLakehouse: &jobs.Lakehouse{Name: lakehouseName, ID: lakehouseID},
			}
		}
		res, err := client.RunNotebook(ctx, conf.Workspace, item, params, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("could not start the notebook")
		}
		fmt.Println(res.JobInstanceID)
	},
}

var jobRunDataflowCmd = &cobra.Command{
	Use:    "dataflow",
	Short:  "Refresh a dataflow",
	PreRun: bindJobFlags,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		item, _ := cmd.Flags().GetString("item")
		rawParams, _ := cmd.Flags().GetStringArray("param")

		client, conf, err := newJobsClient()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create the jobs client")
		}
		params := []jobs.DataflowParameter{}
		for _, raw := range rawParams {
			name, typ, value, err := parseTypedParam(raw)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid dataflow parameter")
			}
			params = append(params, jobs.DataflowParameter{ParameterName: name, Type: typ, Value: value})
		}
		res, err := client.RunDataflow(ctx, conf.Workspace, item, params)
		if err != nil {
			log.Fatal().Err(err).Msg("could not refresh the dataflow")
		}
		fmt.Println(res.JobInstanceID)
	},
}

var jobStatusCmd = &cobra.Command{
	Use:    "status",
	Short:  "Show the state of a started job instance",
	PreRun: bindJobFlags,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		item, _ := cmd.Flags().GetString("item")
		id, _ := cmd.Flags().GetString("id")

		client, conf, err := newJobsClient()
		if err != nil {
			log.Fatal().Err(err).Msg("could not create the jobs client")
		}
		instance, err := client.GetJobInstance(ctx, conf.Workspace, item, id)
		if err != nil {
			log.Fatal().Err(err).Msg("could not read the job instance")
		}
		fmt.Printf("%s\t%s\t%s\n", instance.ID, instance.JobType, instance.Status)
		if instance.FailureReason != nil {
			fmt.Printf("failure: %s (%s)\n", instance.FailureReason.Message, instance.FailureReason.ErrorCode)
		}
	},
}

// parseTypedParam splits "name=value" or "name:type=value" and converts
// the value to the requested type. Untyped parameters stay strings.
func parseTypedParam(raw string) (name string, typ string, value any, err error) {
	key, rawValue, found := strings.Cut(raw, "=")
	if !found {
		return "", "", nil, errors.Newf("parameter %q is not in name=value form", raw)
	}
	name = key
	typ = "string"
	if n, t, found := strings.Cut(key, ":"); found {
		name = n
		typ = t
	}

	switch typ {
	case "string":
		value = rawValue
	case "int":
		value, err = strconv.Atoi(rawValue)
	case "float":
		value, err = strconv.ParseFloat(rawValue, 64)
	case "bool":
		value, err = strconv.ParseBool(rawValue)
	default:
		return "", "", nil, errors.Newf("unsupported parameter type %q", typ)
	}
	if err != nil {
		return "", "", nil, errors.Wrapf(err, "cannot parse %q as %s", rawValue, typ)
	}
	return name, typ, value, nil
}
