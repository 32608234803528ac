// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package capacity

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCredential struct{}

func (fakeCredential) GetToken(ctx context.Context, options policy.TokenRequestOptions) (azcore.AccessToken, error) {
	return azcore.AccessToken{Token: "fake-token", ExpiresOn: time.Now().Add(time.Hour)}, nil
}

// recordingTransport answers every request with a canned response and
// keeps the requests for inspection.
type recordingTransport struct {
	requests []*http.Request
	bodies   []string
	status   int
	body     string
}

func (t *recordingTransport) Do(req *http.Request) (*http.Response, error) {
	t.requests = append(t.requests, req)
	payload := ""
	if req.Body != nil {
		raw, _ := io.ReadAll(req.Body)
		payload = string(raw)
	}
	t.bodies = append(t.bodies, payload)

	return &http.Response{
		StatusCode: t.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Request:    req,
	}, nil
}

func newTestClient(t *testing.T, transport *recordingTransport) *Client {
	t.Helper()
	client, err := NewClient("sub-1", fakeCredential{}, &ClientOptions{
		ClientOptions: policy.ClientOptions{Transport: transport},
	})
	require.NoError(t, err)
	return client
}

func TestClientGet(t *testing.T) {
	transport := &recordingTransport{
		status: http.StatusOK,
		body:   `{"name":"cap","location":"westeurope","sku":{"name":"F2","tier":"Fabric"},"properties":{"state":"Paused"}}`,
	}
	client := newTestClient(t, transport)

	c, err := client.Get(context.Background(), "rg-1", "cap")
	require.NoError(t, err)
	assert.Equal(t, StatePaused, c.State())
	assert.Equal(t, "F2", c.SKU.Name)

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.Fabric/capacities/cap", req.URL.Path)
	assert.Equal(t, DefaultAPIVersion, req.URL.Query().Get("api-version"))
	assert.Equal(t, "Bearer fake-token", req.Header.Get("Authorization"))
}

func TestClientResume(t *testing.T) {
	transport := &recordingTransport{status: http.StatusAccepted}
	client := newTestClient(t, transport)

	err := client.Resume(context.Background(), "rg-1", "cap")
	require.NoError(t, err)

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.True(t, strings.HasSuffix(req.URL.Path, "/capacities/cap/resume"))
}

func TestClientSuspend(t *testing.T) {
	transport := &recordingTransport{status: http.StatusOK}
	client := newTestClient(t, transport)

	err := client.Suspend(context.Background(), "rg-1", "cap")
	require.NoError(t, err)

	require.Len(t, transport.requests, 1)
	assert.True(t, strings.HasSuffix(transport.requests[0].URL.Path, "/capacities/cap/suspend"))
}

func TestClientUpdateSKU(t *testing.T) {
	transport := &recordingTransport{status: http.StatusOK}
	client := newTestClient(t, transport)

	err := client.UpdateSKU(context.Background(), "rg-1", "cap", SKU{Name: "F64"})
	require.NoError(t, err)

	require.Len(t, transport.requests, 1)
	req := transport.requests[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/subscriptions/sub-1/resourceGroups/rg-1/providers/Microsoft.Fabric/capacities/cap", req.URL.Path)
	// the tier defaults to Fabric when not set
	assert.JSONEq(t, `{"sku":{"name":"F64","tier":"Fabric"}}`, transport.bodies[0])
}

func TestClientCustomAPIVersion(t *testing.T) {
	transport := &recordingTransport{
		status: http.StatusOK,
		body:   `{"properties":{"state":"Active"}}`,
	}
	client, err := NewClient("sub-1", fakeCredential{}, &ClientOptions{
		ClientOptions: policy.ClientOptions{Transport: transport},
		APIVersion:    "2022-07-01-preview",
	})
	require.NoError(t, err)

	_, err = client.Get(context.Background(), "rg-1", "cap")
	require.NoError(t, err)
	assert.Equal(t, "2022-07-01-preview", transport.requests[0].URL.Query().Get("api-version"))
}

func TestClientGetSurfacesHTTPError(t *testing.T) {
	transport := &recordingTransport{status: http.StatusNotFound, body: `{"error":{"code":"ResourceNotFound"}}`}
	client := newTestClient(t, transport)

	_, err := client.Get(context.Background(), "rg-1", "missing")
	require.Error(t, err)
}

func TestClientRequiresSubscription(t *testing.T) {
	_, err := NewClient("", fakeCredential{}, nil)
	require.Error(t, err)
}

func TestManagerRetryBudgetCoversTheTransport(t *testing.T) {
	// a 503 is exactly the class of response the sdk pipeline would
	// retry on its own; the manager's budget must be the only one
	transport := &recordingTransport{
		status: http.StatusServiceUnavailable,
		body:   `{"error":{"code":"ServiceUnavailable"}}`,
	}
	client := newTestClient(t, transport)
	manager := NewManager(client, &ManagerOptions{Attempts: 3, RetryInterval: time.Millisecond})

	err := manager.EnsureActive(context.Background(), "rg-1", "cap")
	require.Error(t, err)
	assert.Len(t, transport.requests, 3)
}
