/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gomorse/logging"
)

var (
	cfgFile  string
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gomorse",
	Short: "Discrete Morse theory on triangulated surfaces",
	Long: `
Builds a discrete gradient for a scalar field sampled on a triangle mesh,
extracts its Morse complex and simplifies it by persistence.

gomorse compute -F mesh.su2 -I params.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startProfile(viper.GetString("profile"), viper.GetString("profileDir"))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
			profiler = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gomorse.yaml)")
	rootCmd.PersistentFlags().String("logLevel", "info", "log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().String("logFormat", "text", "log format: text or json")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile")
	rootCmd.PersistentFlags().String("profileDir", ".", "directory for profile output")
	for _, name := range []string{"logLevel", "logFormat", "profile", "profileDir"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".gomorse")
	}
	viper.SetEnvPrefix("GOMORSE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func startProfile(kind, dir string) error {
	var mode func(*profile.Profile)
	switch strings.ToLower(kind) {
	case "":
		return nil
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	default:
		return errors.Errorf("unknown profile %q, use cpu or mem", kind)
	}
	profiler = profile.Start(mode, profile.ProfilePath(dir), profile.Quiet, profile.NoShutdownHook)
	return nil
}

// newLogger builds the logger selected by the logLevel and logFormat settings.
func newLogger(w io.Writer) (*logging.Logger, error) {
	level, err := logging.ParseLevel(viper.GetString("logLevel"))
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(viper.GetString("logFormat")) {
	case "", "text":
		return logging.NewTextLogger(w, level), nil
	case "json":
		return logging.NewJSONLogger(w, level), nil
	}
	return nil, errors.Errorf("unknown log format %q", viper.GetString("logFormat"))
}
