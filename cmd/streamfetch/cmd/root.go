// Package cmd contains the cobra commands of streamfetch.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "STREAMFETCH"

// NewRootCommand creates the streamfetch root command with its own viper instance.
//
// Every flag can also be set in the optional YAML config file or as an environment variable,
// e.g. STREAMFETCH_PREFIX or STREAMFETCH_TIMEOUT.
func NewRootCommand() *cobra.Command {
	v := viper.New()

	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "streamfetch",
		Short:         "Fetch a URL through a logging data task",
		Long:          `streamfetch sends one HTTP request as a reactive data task, logs the request and the response as one-liners, and prints the result.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")

	rootCmd.AddCommand(newGetCommand(v))

	return rootCmd
}

// initConfig reads in the config file and ENV variables if set.
func initConfig(v *viper.Viper, cfgFile string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfgFile == "" {
		return nil
	}

	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")

	return v.ReadInConfig()
}
