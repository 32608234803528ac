// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mondoo.com/fabricops/logger"
)

/*
	Configuration is loaded in this order:
	flags -> ENV -> config file -> defaults
*/

var (
	// DefaultConfigFile is the file name we look for when --config is
	// not used
	DefaultConfigFile = "fabricops.yml"
	// UserProvidedPath is the config path passed via --config
	UserProvidedPath string
	// Path is the currently loaded config location or default if no
	// config exists
	Path string
	// Source documents where the loaded config came from
	Source string
	// LoadedConfig is true if a configuration file was found and parsed
	LoadedConfig bool
	// AppFs is the file system used to look up config files
	AppFs = afero.NewOsFs()
)

// Init registers the config flag and hooks config loading into cobra
func Init(rootCmd *cobra.Command) {
	cobra.OnInitialize(InitViperConfig)
	// persistent flags are global for the application
	rootCmd.PersistentFlags().StringVar(&UserProvidedPath, "config", "", "Set config file path (default $HOME/.config/fabricops/fabricops.yml)")
}

// InitViperConfig wires viper to the environment and the detected
// config file
func InitViperConfig() {
	viper.SetConfigType("yaml")

	Path = strings.TrimSpace(UserProvidedPath)
	if len(Path) == 0 && len(os.Getenv("FABRICOPS_CONFIG_PATH")) > 0 {
		// fallback to env variable if provided, but only if --config is not used
		Source = "$FABRICOPS_CONFIG_PATH"
		Path = os.Getenv("FABRICOPS_CONFIG_PATH")
	} else if len(Path) != 0 {
		Source = "--config"
	} else {
		Source = "default"
	}

	// check if the default config file is available
	if Path == "" {
		Path = autodetectConfig()
	}

	// we set this here, so that sub commands that rely on writing config, can use the default config
	viper.SetConfigFile(Path)

	// if the file exists, load it
	_, err := AppFs.Stat(Path)
	if err == nil {
		log.Debug().Str("configfile", viper.ConfigFileUsed()).Msg("try to load local config file")
		if err := viper.ReadInConfig(); err == nil {
			LoadedConfig = true
		} else {
			LoadedConfig = false
			log.Error().Err(err).Str("path", Path).Msg("could not read config file")
		}
	}

	// by default it uses console output, for automation we may want to set it to json output
	if viper.GetString("log.format") == "json" {
		logger.UseJSONLogging(logger.LogOutputWriter)
	}

	// override values with env variables
	viper.SetEnvPrefix("fabricops")
	// to parse env variables properly we need to replace some chars
	// all hyphens need to be underscores
	// all dots need to be underscores
	replacer := strings.NewReplacer("-", "_", ".", "_")
	viper.SetEnvKeyReplacer(replacer)

	// read in environment variables that match
	viper.AutomaticEnv()
}

// autodetectConfig checks the working directory and the user config
// directory for a default config file
func autodetectConfig() string {
	if _, err := AppFs.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile
	}

	home, err := homedir.Dir()
	if err != nil {
		return DefaultConfigFile
	}
	homeConfig := filepath.Join(home, ".config", "fabricops", DefaultConfigFile)
	if _, err := AppFs.Stat(homeConfig); err == nil {
		return homeConfig
	}
	return DefaultConfigFile
}

// DisplayUsedConfig prints where the configuration was loaded from
func DisplayUsedConfig() {
	if !LoadedConfig && len(UserProvidedPath) > 0 {
		log.Warn().Msg("could not load configuration file " + UserProvidedPath)
	} else if LoadedConfig {
		log.Info().Msg("loaded configuration from " + viper.ConfigFileUsed() + " using source " + Source)
	} else {
		log.Info().Msg("no configuration file provided, using defaults")
	}
}

// Config is the fabricops cli configuration
type Config struct {
	// azure identity
	TenantID     string `json:"tenant-id,omitempty" mapstructure:"tenant-id"`
	ClientID     string `json:"client-id,omitempty" mapstructure:"client-id"`
	ClientSecret string `json:"client-secret,omitempty" mapstructure:"client-secret"`
	// UseManagedIdentity authenticates via the ambient managed identity,
	// the default inside automation runbooks
	UseManagedIdentity bool `json:"managed-identity,omitempty" mapstructure:"managed-identity"`

	// capacity coordinates
	SubscriptionID string `json:"subscription-id,omitempty" mapstructure:"subscription-id"`
	ResourceGroup  string `json:"resource-group,omitempty" mapstructure:"resource-group"`
	Capacity       string `json:"capacity,omitempty" mapstructure:"capacity"`
	APIVersion     string `json:"api-version,omitempty" mapstructure:"api-version"`

	// fabric workspace for job invocations
	Workspace string `json:"workspace,omitempty" mapstructure:"workspace"`
}

// Read loads the viper config into a struct
func Read() (*Config, error) {
	var opts Config
	err := viper.Unmarshal(&opts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to decode into config struct")
	}
	return &opts, nil
}
