// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package jobs invokes fabric artifacts (pipelines, notebooks,
// dataflows) through the job-instances REST API and reads back the
// state of started runs.
package jobs

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"go.mondoo.com/fabricops/utils/retryx"
)

const (
	moduleName    = "fabricops.jobs"
	moduleVersion = "v1"

	defaultEndpoint = "https://api.fabric.microsoft.com/v1"
	fabricScope     = "https://api.fabric.microsoft.com/.default"
)

// ClientOptions contains optional settings for the jobs client.
type ClientOptions struct {
	policy.ClientOptions

	// Endpoint overrides the fabric REST endpoint, used by tests.
	Endpoint string
	// Retry overrides the bounded retry applied to every call.
	Retry retryx.Policy
}

// Client talks to the fabric job-instances API.
type Client struct {
	pl       runtime.Pipeline
	endpoint string
	retry    retryx.Policy
}

// RunResult describes a job instance the platform accepted. The
// instance id is derived from the Location header of the 202 response.
type RunResult struct {
	JobInstanceID string
	Location      string
	RetryAfter    time.Duration
}

// FailureReason is returned by the platform for failed job instances.
type FailureReason struct {
	ErrorCode string `json:"errorCode"`
	Message   string `json:"message"`
}

// JobInstance is the state of a started run.
type JobInstance struct {
	ID            string         `json:"id"`
	ItemID        string         `json:"itemId"`
	JobType       string         `json:"jobType"`
	InvokeType    string         `json:"invokeType"`
	Status        string         `json:"status"`
	StartTimeUtc  string         `json:"startTimeUtc"`
	EndTimeUtc    string         `json:"endTimeUtc"`
	FailureReason *FailureReason `json:"failureReason"`
}

// NewClient creates a jobs client authenticated against the fabric API.
func NewClient(token azcore.TokenCredential, options *ClientOptions) *Client {
	if options == nil {
		options = &ClientOptions{}
	}
	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	// retrying is owned by the client's fixed-delay policy, the
	// pipeline itself must not add attempts
	options.ClientOptions.Retry.MaxRetries = -1

	authPolicy := runtime.NewBearerTokenPolicy(token, []string{fabricScope}, nil)
	pl := runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
		PerRetry: []policy.Policy{authPolicy},
	}, &options.ClientOptions)

	return &Client{
		pl:       pl,
		endpoint: endpoint,
		retry:    options.Retry,
	}
}

// RunItemJob starts a job instance for the given artifact. The payload
// shape depends on the job type, see the payload builders.
func (c *Client) RunItemJob(ctx context.Context, workspaceID, itemID string, jobType JobType, payload any) (RunResult, error) {
	var res RunResult
	err := c.retry.Do(ctx, func() error {
		u := runtime.JoinPaths(c.endpoint,
			"workspaces", url.PathEscape(workspaceID),
			"items", url.PathEscape(itemID),
			"jobs", "instances",
		)
		req, err := runtime.NewRequest(ctx, http.MethodPost, u)
		if err != nil {
			return retryx.Permanent(err)
		}
		reqQP := req.Raw().URL.Query()
		reqQP.Set("jobType", string(jobType))
		req.Raw().URL.RawQuery = reqQP.Encode()
		if payload != nil {
			if err := runtime.MarshalAsJSON(req, payload); err != nil {
				return retryx.Permanent(err)
			}
		}

		resp, err := c.pl.Do(req)
		if err != nil {
			return errors.Wrapf(err, "cannot start the %s job", jobType)
		}
		if !runtime.HasStatusCode(resp, http.StatusAccepted, http.StatusOK) {
			return runtime.NewResponseError(resp)
		}

		location := resp.Header.Get("Location")
		res = RunResult{
			JobInstanceID: instanceIDFromLocation(location),
			Location:      location,
		}
		res.RetryAfter = retryAfter(resp.Header.Get("Retry-After"))
		log.Info().
			Str("workspace", workspaceID).
			Str("item", itemID).
			Str("job-type", string(jobType)).
			Str("job-instance", res.JobInstanceID).
			Msg("job instance accepted")
		return nil
	})
	return res, err
}

// GetJobInstance reads the state of a started run.
func (c *Client) GetJobInstance(ctx context.Context, workspaceID, itemID, jobInstanceID string) (JobInstance, error) {
	var instance JobInstance
	err := c.retry.Do(ctx, func() error {
		u := runtime.JoinPaths(c.endpoint,
			"workspaces", url.PathEscape(workspaceID),
			"items", url.PathEscape(itemID),
			"jobs", "instances", url.PathEscape(jobInstanceID),
		)
		req, err := runtime.NewRequest(ctx, http.MethodGet, u)
		if err != nil {
			return retryx.Permanent(err)
		}
		resp, err := c.pl.Do(req)
		if err != nil {
			return errors.Wrap(err, "cannot read the job instance")
		}
		if !runtime.HasStatusCode(resp, http.StatusOK) {
			return runtime.NewResponseError(resp)
		}
		return runtime.UnmarshalAsJSON(resp, &instance)
	})
	return instance, err
}

// RunPipeline starts a pipeline run with a flat parameter mapping.
func (c *Client) RunPipeline(ctx context.Context, workspaceID, itemID string, params PipelineParameters) (RunResult, error) {
	return c.RunItemJob(ctx, workspaceID, itemID, JobTypePipeline, PipelinePayload(params))
}

// RunNotebook starts a notebook run with typed parameters and an
// optional session configuration.
func (c *Client) RunNotebook(ctx context.Context, workspaceID, itemID string, params NotebookParameters, config *NotebookConfiguration) (RunResult, error) {
	return c.RunItemJob(ctx, workspaceID, itemID, JobTypeNotebook, NotebookPayload(params, config))
}

// RunDataflow starts a dataflow refresh with an ordered parameter list.
func (c *Client) RunDataflow(ctx context.Context, workspaceID, itemID string, params []DataflowParameter) (RunResult, error) {
	return c.RunItemJob(ctx, workspaceID, itemID, JobTypeDataflow, DataflowPayload(params))
}

// retryAfter accepts both header forms, delta-seconds and an HTTP
// date. Unparsable values yield zero.
func retryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if date, err := http.ParseTime(value); err == nil {
		if d := time.Until(date); d > 0 {
			return d
		}
	}
	return 0
}

func instanceIDFromLocation(location string) string {
	if location == "" {
		return ""
	}
	trimmed := strings.TrimSuffix(location, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
