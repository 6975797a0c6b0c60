package cmd

import (
	"errors"
	"fmt"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redbadger/deploy-trigger/config"
	"github.com/redbadger/deploy-trigger/constants"
	"github.com/redbadger/deploy-trigger/logging"
	"github.com/redbadger/deploy-trigger/report"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "deploy-trigger",
	Short: "Create a Vercel deployment from a github branch",
	Long: `
	deploy-trigger runs in two modes:

	1. as a cli command (deploy-trigger trigger) that creates exactly one deployment and exits
	   0 when the deployment was created, non-zero otherwise
	2. as an agent (deploy-trigger agent) that creates one deployment for every push to the watched branch
	`,
	Version:       constants.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Setup(os.Stderr, viper.GetString(config.KeyLogLevel), viper.GetString(config.KeyLogFormat))
	},
}

// exitError carries a process exit status out of a command
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(report.ExitUsage)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.deploy-trigger.yaml)")
	rootCmd.PersistentFlags().String(config.KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String(config.KeyLogFormat, "text", "Log format (text or json)")
	_ = viper.BindPFlag(config.KeyLogLevel, rootCmd.PersistentFlags().Lookup(config.KeyLogLevel))
	_ = viper.BindPFlag(config.KeyLogFormat, rootCmd.PersistentFlags().Lookup(config.KeyLogFormat))
}

func initConfig() {
	config.LoadDotEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(report.ExitUsage)
		}

		viper.AddConfigPath(home)
		viper.SetConfigName(".deploy-trigger")
	}

	config.Bind(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
