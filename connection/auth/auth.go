// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package auth

import (
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Config carries everything needed to resolve a token credential.
// Exactly one mechanism is picked, in this order:
// client secret, managed identity, azure CLI.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string
	// UseManagedIdentity requests a managed identity credential. When
	// ClientID is set alongside it, the user-assigned identity with that
	// client id is used.
	UseManagedIdentity bool
}

// GetTokenCredential resolves an azcore token credential from the config.
// Runbook-style invocations use the managed identity of the automation
// account; interactive use falls back to the azure CLI (if installed).
func GetTokenCredential(cfg Config) (azcore.TokenCredential, error) {
	if cfg.ClientSecret != "" {
		if cfg.TenantID == "" || cfg.ClientID == "" {
			return nil, errors.New("client secret authentication requires tenant-id and client-id")
		}
		log.Debug().Str("client-id", cfg.ClientID).Msg("using client secret to get a token")
		cred, err := azidentity.NewClientSecretCredential(cfg.TenantID, cfg.ClientID, cfg.ClientSecret, &azidentity.ClientSecretCredentialOptions{})
		if err != nil {
			return nil, errors.Wrap(err, "error creating credentials from a secret")
		}
		return cred, nil
	}

	if cfg.UseManagedIdentity {
		log.Debug().Msg("using managed identity to get a token")
		opts := &azidentity.ManagedIdentityCredentialOptions{}
		if cfg.ClientID != "" {
			opts.ID = azidentity.ClientID(cfg.ClientID)
		}
		cred, err := azidentity.NewManagedIdentityCredential(opts)
		if err != nil {
			return nil, errors.Wrap(err, "error creating managed identity credentials")
		}
		return cred, nil
	}

	// fallback to CLI authorizer if no credentials are specified
	log.Debug().Msg("using azure cli to get a token")
	cred, err := azidentity.NewAzureCLICredential(&azidentity.AzureCLICredentialOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "error creating CLI credentials")
	}
	return cred, nil
}
