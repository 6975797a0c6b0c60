package cmd

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/redbadger/deploy-trigger/config"
	"github.com/redbadger/deploy-trigger/constants"
	"github.com/redbadger/deploy-trigger/github"
	"github.com/redbadger/deploy-trigger/logging"
	"github.com/redbadger/deploy-trigger/model"
	"github.com/redbadger/deploy-trigger/report"
	"github.com/redbadger/deploy-trigger/trigger"
)

var triggerCmd = &cobra.Command{
	Use:     "trigger",
	Aliases: []string{"up"},
	Short:   "Create one deployment of the configured branch",
	Long: `
Create one deployment of the configured branch:

1. reads the project, repository and branch from flags, environment or config file
2. reads the Vercel token from ` + constants.TokenEnvVar + ` (or --token-file), never from a flag
3. sends exactly one deployment request, without retrying
4. prints the deployment id and production URL, or why no deployment was created

When --repo-id is omitted the repository id is first looked up with one
github API call (authenticated with ` + constants.GithubTokenEnvVar + ` when set). Pass --repo-id to
keep the invocation to the single deployment request. If the lookup fails no
deployment is requested.

Exit status is 0 when the deployment was created, 1 when the configuration is
invalid or the repository id could not be looked up, 2 when the request was
rejected (e.g. rate limited), 3 when the API could not be reached and 4 when
the response had no deployment id.
	`,
	Example: `VERCEL_TOKEN=... deploy-trigger trigger --project=prj_123 --repo=owner/app --repo-id=42 --production-url=https://app.example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bindDeploymentFlags(cmd)
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		redact := logging.Install(cfg.Credentials.Token(), cfg.GithubToken)
		if code := runTrigger(cmd.Context(), cfg, redact, cmd.OutOrStdout()); code != report.ExitSuccess {
			return &exitError{code: code}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(triggerCmd)
	addDeploymentFlags(triggerCmd)
}

var deploymentKeys = []string{
	config.KeyProject, config.KeyName, config.KeyTarget, config.KeyRepo, config.KeyRepoID,
	config.KeyRef, config.KeyProductionURL, config.KeyTeam, config.KeyAPIURL, config.KeyTimeout,
	config.KeyURLFromResponse, config.KeyTokenFile, config.KeyGithubAPIURL,
}

// addDeploymentFlags defines the flags shared by trigger and agent
func addDeploymentFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String(config.KeyProject, "", "Vercel project id")
	f.String(config.KeyName, "", "Deployment name (defaults to the repository name)")
	f.String(config.KeyTarget, string(model.TargetProduction), "Target environment (production or preview)")
	f.String(config.KeyRepo, "", "github repository full name, owner/name")
	f.Int64(config.KeyRepoID, 0, "github repository id (looked up when omitted)")
	f.String(config.KeyRef, "main", "Branch to deploy")
	f.String(config.KeyProductionURL, "", "Production URL reported on success")
	f.String(config.KeyTeam, "", "Vercel team id")
	f.String(config.KeyAPIURL, constants.DefaultAPIURL, "Vercel API URL")
	f.Duration(config.KeyTimeout, constants.DefaultTimeout, "Request timeout")
	f.Bool(config.KeyURLFromResponse, false, "Report the deployment URL returned by Vercel instead of --production-url")
	f.String(config.KeyTokenFile, "", "File holding the Vercel token")
	f.String(config.KeyGithubAPIURL, constants.DefaultGithubAPIURL, "github API URL used to look up the repository id")
}

// bindDeploymentFlags binds the running command's flags to viper.
// Both trigger and agent define them, so binding happens at run time.
func bindDeploymentFlags(cmd *cobra.Command) {
	for _, key := range deploymentKeys {
		_ = viper.BindPFlag(key, cmd.Flags().Lookup(key))
	}
}

// runTrigger performs a single attempt, prints the report to out and returns the exit status
func runTrigger(ctx context.Context, cfg *config.Config, redact *logging.RedactHook, out io.Writer) int {
	req, err := resolveRepoID(ctx, cfg)
	if err != nil {
		log.WithError(err).Error("cannot resolve repository id")
		fmt.Fprintf(out, "✗ Deployment was not requested: %s\n", redact.Redact(err.Error()))
		return report.ExitUsage
	}

	t := newTrigger(cfg)
	result := t.Attempt(ctx, req, cfg.Credentials)

	if err := report.Print(out, result); err != nil {
		log.WithError(err).Error("cannot print report")
	}
	return report.ExitCode(result)
}

func newTrigger(cfg *config.Config) *trigger.Trigger {
	return &trigger.Trigger{
		Endpoint:        cfg.Endpoint,
		Timeout:         cfg.Timeout,
		TargetURL:       cfg.ProductionURL,
		URLFromResponse: cfg.URLFromResponse,
	}
}

// resolveRepoID returns the configured request, with the repository id
// looked up on github when it wasn't configured
func resolveRepoID(ctx context.Context, cfg *config.Config) (model.DeploymentRequest, error) {
	req := cfg.Request
	if req.GitSource.RepoID != 0 {
		return req, nil
	}

	client, err := github.NewClient(ctx, cfg.GithubAPIURL, cfg.GithubToken, cfg.Timeout)
	if err != nil {
		return req, err
	}
	id, err := github.RepoID(ctx, client, req.GitSource.Repo)
	if err != nil {
		return req, err
	}
	req.GitSource.RepoID = id
	return req, nil
}
