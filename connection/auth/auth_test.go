// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSecretRequiresTenantAndClient(t *testing.T) {
	_, err := GetTokenCredential(Config{ClientSecret: "s3cret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant-id")
}

func TestClientSecretCredential(t *testing.T) {
	cred, err := GetTokenCredential(Config{
		TenantID:     "00000000-0000-0000-0000-000000000000",
		ClientID:     "11111111-1111-1111-1111-111111111111",
		ClientSecret: "s3cret",
	})
	require.NoError(t, err)
	assert.NotNil(t, cred)
}

func TestManagedIdentityCredential(t *testing.T) {
	cred, err := GetTokenCredential(Config{UseManagedIdentity: true})
	require.NoError(t, err)
	assert.NotNil(t, cred)
}

func TestUserAssignedManagedIdentityCredential(t *testing.T) {
	cred, err := GetTokenCredential(Config{
		UseManagedIdentity: true,
		ClientID:           "11111111-1111-1111-1111-111111111111",
	})
	require.NoError(t, err)
	assert.NotNil(t, cred)
}

func TestCliFallback(t *testing.T) {
	cred, err := GetTokenCredential(Config{})
	require.NoError(t, err)
	assert.NotNil(t, cred)
}
