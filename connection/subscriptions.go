// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package connection

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	subscriptions "github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
)

type SubscriptionsClient struct {
	token         azcore.TokenCredential
	clientOptions policy.ClientOptions
}

func NewSubscriptionsClient(token azcore.TokenCredential, clientOptions policy.ClientOptions) *SubscriptionsClient {
	return &SubscriptionsClient{
		token:         token,
		clientOptions: clientOptions,
	}
}

func (client *SubscriptionsClient) GetSubscription(ctx context.Context, subscriptionID string) (subscriptions.Subscription, error) {
	subscriptionsC, err := subscriptions.NewClient(client.token, &arm.ClientOptions{
		ClientOptions: client.clientOptions,
	})
	if err != nil {
		return subscriptions.Subscription{}, err
	}
	resp, err := subscriptionsC.Get(ctx, subscriptionID, &subscriptions.ClientGetOptions{})
	if err != nil {
		return subscriptions.Subscription{}, err
	}
	return resp.Subscription, nil
}

func (client *SubscriptionsClient) GetSubscriptions(ctx context.Context) ([]subscriptions.Subscription, error) {
	subscriptionsC, err := subscriptions.NewClient(client.token, &arm.ClientOptions{
		ClientOptions: client.clientOptions,
	})
	if err != nil {
		return nil, err
	}
	subs := []subscriptions.Subscription{}
	res := subscriptionsC.NewListPager(&subscriptions.ClientListOptions{})
	for res.More() {
		page, err := res.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range page.Value {
			subs = append(subs, *s)
		}
	}
	return subs, nil
}
