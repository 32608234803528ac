// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package connection

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/pkg/errors"
	"go.mondoo.com/fabricops/connection/auth"
)

const (
	OptionTenantID       = "tenant-id"
	OptionClientID       = "client-id"
	OptionClientSecret   = "client-secret"
	OptionSubscriptionID = "subscription-id"
)

// Config describes how to bind a connection to an azure subscription.
type Config struct {
	Auth           auth.Config
	SubscriptionID string
	// ClientOptions are shared by every client created from this
	// connection. Tests inject a fake transport here.
	ClientOptions policy.ClientOptions
}

// FabricConnection binds a token credential to a single subscription.
// All capacity operations run in the scope of one subscription per
// invocation.
type FabricConnection struct {
	token                   azcore.TokenCredential
	subscriptionID          string
	subscriptionDisplayName string
	tenantID                string
	clientID                string
	clientOptions           policy.ClientOptions
}

// NewFabricConnection resolves credentials and verifies that the
// subscription exists before any capacity call is issued.
func NewFabricConnection(ctx context.Context, conf Config) (*FabricConnection, error) {
	if conf.SubscriptionID == "" {
		return nil, errors.New("a subscription-id is required")
	}

	token, err := auth.GetTokenCredential(conf.Auth)
	if err != nil {
		return nil, errors.Wrap(err, "cannot fetch credentials for the fabric connection")
	}

	subsClient := NewSubscriptionsClient(token, conf.ClientOptions)
	sub, err := subsClient.GetSubscription(ctx, conf.SubscriptionID)
	if err != nil {
		return nil, errors.Wrap(err, "cannot find the azure subscription")
	}

	subDisplayName := conf.SubscriptionID
	if sub.DisplayName != nil {
		subDisplayName = *sub.DisplayName
	}
	tenantID := conf.Auth.TenantID
	if sub.TenantID != nil {
		tenantID = *sub.TenantID
	}

	return &FabricConnection{
		token:                   token,
		subscriptionID:          conf.SubscriptionID,
		subscriptionDisplayName: subDisplayName,
		tenantID:                tenantID,
		clientID:                conf.Auth.ClientID,
		clientOptions:           conf.ClientOptions,
	}, nil
}

func (c *FabricConnection) Name() string {
	return "fabric"
}

func (c *FabricConnection) SubID() string {
	return c.subscriptionID
}

func (c *FabricConnection) SubName() string {
	return c.subscriptionDisplayName
}

func (c *FabricConnection) TenantID() string {
	return c.tenantID
}

func (c *FabricConnection) Token() azcore.TokenCredential {
	return c.token
}

func (c *FabricConnection) ClientOptions() policy.ClientOptions {
	return c.clientOptions
}
