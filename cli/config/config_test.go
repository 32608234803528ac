// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"path/filepath"
	"testing"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	home          = getHomeDir()
	homeConfigDir = filepath.Join(home, ".config", "fabricops")
	homeConfig    = filepath.Join(homeConfigDir, DefaultConfigFile)

	configBody = []byte("theconfig")
)

func getHomeDir() string {
	home, _ := homedir.Dir()
	return home
}

func resetAppFsToMemFs() {
	AppFs = afero.NewMemMapFs()
	AppFs.MkdirAll(homeConfigDir, 0o755)
}

func Test_autodetectConfig(t *testing.T) {
	defer func() {
		AppFs = afero.NewOsFs()
	}()

	t.Run("home config returned if it exists", func(t *testing.T) {
		resetAppFsToMemFs()
		afero.WriteFile(AppFs, homeConfig, configBody, 0o644)

		config := autodetectConfig()
		assert.Equal(t, homeConfig, config)
	})

	t.Run("working directory config wins over home config", func(t *testing.T) {
		resetAppFsToMemFs()
		afero.WriteFile(AppFs, DefaultConfigFile, configBody, 0o644)
		afero.WriteFile(AppFs, homeConfig, configBody, 0o644)

		config := autodetectConfig()
		assert.Equal(t, DefaultConfigFile, config)
	})

	t.Run("default is returned when nothing exists", func(t *testing.T) {
		resetAppFsToMemFs()

		config := autodetectConfig()
		assert.Equal(t, DefaultConfigFile, config)
	})
}

func TestRead(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("subscription-id", "sub-1")
	viper.Set("resource-group", "rg-1")
	viper.Set("capacity", "cap-1")
	viper.Set("managed-identity", true)

	conf, err := Read()
	require.NoError(t, err)
	assert.Equal(t, "sub-1", conf.SubscriptionID)
	assert.Equal(t, "rg-1", conf.ResourceGroup)
	assert.Equal(t, "cap-1", conf.Capacity)
	assert.True(t, conf.UseManagedIdentity)
}
