// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package connection

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

type recordingTransport struct {
	requests []*http.Request
	status   int
	body     string
}

func (t *recordingTransport) Do(req *http.Request) (*http.Response, error) {
	t.requests = append(t.requests, req)
	return &http.Response{
		StatusCode: t.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(t.body)),
		Request:    req,
	}, nil
}

func TestGetSubscription(t *testing.T) {
	transport := &recordingTransport{
		status: http.StatusOK,
		body:   `{"id":"/subscriptions/sub-1","subscriptionId":"sub-1","displayName":"Analytics Prod","tenantId":"tenant-1"}`,
	}
	client := NewSubscriptionsClient(fakeCredential{}, policy.ClientOptions{Transport: transport})

	sub, err := client.GetSubscription(context.Background(), "sub-1")
	require.NoError(t, err)
	require.NotNil(t, sub.DisplayName)
	assert.Equal(t, "Analytics Prod", *sub.DisplayName)
	require.NotNil(t, sub.TenantID)
	assert.Equal(t, "tenant-1", *sub.TenantID)

	require.NotEmpty(t, transport.requests)
	assert.Equal(t, "/subscriptions/sub-1", transport.requests[0].URL.Path)
}

func TestGetSubscriptions(t *testing.T) {
	transport := &recordingTransport{
		status: http.StatusOK,
		body: `{"value":[
			{"subscriptionId":"sub-1","displayName":"Analytics Prod"},
			{"subscriptionId":"sub-2","displayName":"Analytics Dev"}
		]}`,
	}
	client := NewSubscriptionsClient(fakeCredential{}, policy.ClientOptions{Transport: transport})

	subs, err := client.GetSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "sub-1", *subs[0].SubscriptionID)
	assert.Equal(t, "Analytics Dev", *subs[1].DisplayName)

	require.NotEmpty(t, transport.requests)
	assert.Equal(t, "/subscriptions", transport.requests[0].URL.Path)
}
