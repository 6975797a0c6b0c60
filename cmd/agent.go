package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redbadger/deploy-trigger/agent"
	"github.com/redbadger/deploy-trigger/config"
	"github.com/redbadger/deploy-trigger/constants"
	"github.com/redbadger/deploy-trigger/logging"
)

var secret string

// agentCmd represents the agent command
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run deploy-trigger in agent mode",
	Long: `
	1.  watches for github push events on a webhook
	2.  ignores pushes to other repositories or branches
	3.  creates exactly one deployment per push to the configured branch
	4.  logs the deployment id, or why no deployment was created
`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if !viper.IsSet(config.KeySecret) {
			return fmt.Errorf("environment variable %s is not exported", constants.SecretEnvVar)
		}
		secret = viper.GetString(config.KeySecret)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		bindDeploymentFlags(cmd)
		_ = viper.BindPFlag(config.KeyPort, cmd.Flags().Lookup(config.KeyPort))
		_ = viper.BindPFlag(config.KeyPath, cmd.Flags().Lookup(config.KeyPath))

		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		redact := logging.Install(cfg.Credentials.Token(), cfg.GithubToken, secret)

		req, err := resolveRepoID(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("cannot resolve repository id: %s", redact.Redact(err.Error()))
		}

		a := &agent.Agent{
			Trigger:     newTrigger(cfg),
			Request:     req,
			Credentials: cfg.Credentials,
		}
		return agent.Run(uint16(viper.GetUint(config.KeyPort)), viper.GetString(config.KeyPath), secret, a)
	},
}

func init() {
	rootCmd.AddCommand(agentCmd)
	addDeploymentFlags(agentCmd)
	agentCmd.Flags().Uint16(config.KeyPort, 3016, "Port to listen on for webhooks")
	agentCmd.Flags().String(config.KeyPath, "/webhooks", "Path to listen on for webhooks")
}
