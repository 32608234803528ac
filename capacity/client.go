// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package capacity

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/pkg/errors"
)

const (
	moduleName    = "fabricops.capacity"
	moduleVersion = "v1"

	// DefaultAPIVersion is the GA api version of the
	// Microsoft.Fabric/capacities resource provider.
	DefaultAPIVersion = "2023-11-01"

	defaultEndpoint = "https://management.azure.com"
	armScope        = "https://management.azure.com/.default"
)

// ClientOptions contains optional settings for the capacity client.
type ClientOptions struct {
	policy.ClientOptions

	// APIVersion overrides DefaultAPIVersion.
	APIVersion string
	// Endpoint overrides the ARM endpoint, used by tests and sovereign
	// clouds.
	Endpoint string
}

// Client is a minimal ARM client for Microsoft.Fabric capacities. Only
// the operations the capacity manager needs are implemented.
type Client struct {
	pl             runtime.Pipeline
	endpoint       string
	apiVersion     string
	subscriptionID string
}

// NewClient creates a capacity client scoped to one subscription.
func NewClient(subscriptionID string, token azcore.TokenCredential, options *ClientOptions) (*Client, error) {
	if subscriptionID == "" {
		return nil, errors.New("a subscription id is required")
	}
	if options == nil {
		options = &ClientOptions{}
	}
	endpoint := options.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	apiVersion := options.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	// retrying is owned by the manager's fixed-delay policy, the
	// pipeline itself must not add attempts
	options.ClientOptions.Retry.MaxRetries = -1

	authPolicy := runtime.NewBearerTokenPolicy(token, []string{armScope}, nil)
	pl := runtime.NewPipeline(moduleName, moduleVersion, runtime.PipelineOptions{
		PerRetry: []policy.Policy{authPolicy},
	}, &options.ClientOptions)

	return &Client{
		pl:             pl,
		endpoint:       endpoint,
		apiVersion:     apiVersion,
		subscriptionID: subscriptionID,
	}, nil
}

func (c *Client) resourceURL(resourceGroup, name string, action string) string {
	paths := []string{
		"subscriptions", url.PathEscape(c.subscriptionID),
		"resourceGroups", url.PathEscape(resourceGroup),
		"providers", "Microsoft.Fabric", "capacities", url.PathEscape(name),
	}
	if action != "" {
		paths = append(paths, action)
	}
	return runtime.JoinPaths(c.endpoint, paths...)
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*policy.Request, error) {
	req, err := runtime.NewRequest(ctx, method, url)
	if err != nil {
		return nil, err
	}
	reqQP := req.Raw().URL.Query()
	reqQP.Set("api-version", c.apiVersion)
	req.Raw().URL.RawQuery = reqQP.Encode()
	req.Raw().Header["Accept"] = []string{"application/json"}
	return req, nil
}

// Get reads the capacity resource, including its provisioning state.
func (c *Client) Get(ctx context.Context, resourceGroup, name string) (Capacity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.resourceURL(resourceGroup, name, ""))
	if err != nil {
		return Capacity{}, err
	}
	resp, err := c.pl.Do(req)
	if err != nil {
		return Capacity{}, errors.Wrap(err, "cannot read the capacity status")
	}
	if !runtime.HasStatusCode(resp, http.StatusOK) {
		return Capacity{}, runtime.NewResponseError(resp)
	}
	var res Capacity
	if err := runtime.UnmarshalAsJSON(resp, &res); err != nil {
		return Capacity{}, errors.Wrap(err, "cannot decode the capacity resource")
	}
	return res, nil
}

// Resume issues the resume action. The platform transitions the
// capacity asynchronously; the call returns once it is accepted.
func (c *Client) Resume(ctx context.Context, resourceGroup, name string) error {
	return c.post(ctx, resourceGroup, name, "resume")
}

// Suspend issues the suspend action.
func (c *Client) Suspend(ctx context.Context, resourceGroup, name string) error {
	return c.post(ctx, resourceGroup, name, "suspend")
}

func (c *Client) post(ctx context.Context, resourceGroup, name, action string) error {
	req, err := c.newRequest(ctx, http.MethodPost, c.resourceURL(resourceGroup, name, action))
	if err != nil {
		return err
	}
	resp, err := c.pl.Do(req)
	if err != nil {
		return errors.Wrapf(err, "cannot %s the capacity", action)
	}
	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusAccepted) {
		return runtime.NewResponseError(resp)
	}
	return nil
}

// UpdateSKU patches the capacity with a new SKU.
func (c *Client) UpdateSKU(ctx context.Context, resourceGroup, name string, sku SKU) error {
	req, err := c.newRequest(ctx, http.MethodPatch, c.resourceURL(resourceGroup, name, ""))
	if err != nil {
		return err
	}
	if sku.Tier == "" {
		sku.Tier = "Fabric"
	}
	body := struct {
		SKU SKU `json:"sku"`
	}{SKU: sku}
	if err := runtime.MarshalAsJSON(req, body); err != nil {
		return err
	}
	resp, err := c.pl.Do(req)
	if err != nil {
		return errors.Wrap(err, "cannot scale the capacity")
	}
	if !runtime.HasStatusCode(resp, http.StatusOK, http.StatusAccepted) {
		return runtime.NewResponseError(resp)
	}
	return nil
}
