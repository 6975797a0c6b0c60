// Package config gathers everything one deployment attempt needs from flags,
// environment variables, a .env file and an optional config file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/redbadger/deploy-trigger/constants"
	"github.com/redbadger/deploy-trigger/github"
	"github.com/redbadger/deploy-trigger/model"
	"github.com/redbadger/deploy-trigger/vercel"
)

// Keys shared by flags, environment variables and the config file
const (
	KeyProject         = "project"
	KeyName            = "name"
	KeyTarget          = "target"
	KeyRepo            = "repo"
	KeyRepoID          = "repo-id"
	KeyRef             = "ref"
	KeyProductionURL   = "production-url"
	KeyTeam            = "team"
	KeyAPIURL          = "api-url"
	KeyTimeout         = "timeout"
	KeyURLFromResponse = "url-from-response"
	KeyToken           = "token"
	KeyTokenFile       = "token-file"
	KeyGithubToken     = "github-token"
	KeyGithubAPIURL    = "github-api-url"
	KeyLogLevel        = "log-level"
	KeyLogFormat       = "log-format"
	KeyPort            = "port"
	KeyPath            = "path"
	KeySecret          = "secret"
)

var envNames = map[string]string{
	KeyProject:         "VERCEL_PROJECT_ID",
	KeyName:            "VERCEL_PROJECT_NAME",
	KeyTarget:          "VERCEL_TARGET",
	KeyRepo:            "GITHUB_REPO",
	KeyRepoID:          "GITHUB_REPO_ID",
	KeyRef:             "GIT_REF",
	KeyProductionURL:   "PRODUCTION_URL",
	KeyTeam:            "VERCEL_TEAM_ID",
	KeyAPIURL:          "VERCEL_API_URL",
	KeyTimeout:         "DEPLOY_TIMEOUT",
	KeyURLFromResponse: "URL_FROM_RESPONSE",
	KeyToken:           constants.TokenEnvVar,
	KeyTokenFile:       "VERCEL_TOKEN_FILE",
	KeyGithubToken:     constants.GithubTokenEnvVar,
	KeyGithubAPIURL:    "GITHUB_API_URL",
	KeyLogLevel:        "LOG_LEVEL",
	KeyLogFormat:       "LOG_FORMAT",
	KeyPort:            "DEPLOY_PORT",
	KeyPath:            "DEPLOY_PATH",
	KeySecret:          constants.SecretEnvVar,
}

// EnvName returns the environment variable bound to key
func EnvName(key string) string {
	return envNames[key]
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set win. A missing file is not an error.
func LoadDotEnv(filenames ...string) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, f := range filenames {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			log.WithError(err).WithField("file", f).Warn("cannot load env file")
		}
	}
}

// Bind registers defaults and environment variable names on v
func Bind(v *viper.Viper) {
	for key, env := range envNames {
		_ = v.BindEnv(key, env)
	}
	v.SetDefault(KeyTarget, string(model.TargetProduction))
	v.SetDefault(KeyRef, "main")
	v.SetDefault(KeyAPIURL, constants.DefaultAPIURL)
	v.SetDefault(KeyTimeout, constants.DefaultTimeout.String())
	v.SetDefault(KeyGithubAPIURL, constants.DefaultGithubAPIURL)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyPort, 3016)
	v.SetDefault(KeyPath, "/webhooks")
}

// Config is one invocation's configuration
type Config struct {
	Request         model.DeploymentRequest
	Credentials     model.Credentials
	ProductionURL   string
	Endpoint        string
	Timeout         time.Duration
	URLFromResponse bool

	GithubToken  string
	GithubAPIURL string

	LogLevel  string
	LogFormat string
}

// Load reads and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	target, err := model.ParseTarget(v.GetString(KeyTarget))
	if err != nil {
		return nil, err
	}

	repo := strings.TrimSpace(v.GetString(KeyRepo))
	repoName, err := validateRepo(repo)
	if err != nil {
		return nil, err
	}

	project := strings.TrimSpace(v.GetString(KeyProject))
	if project == "" {
		return nil, missing(KeyProject)
	}

	name := strings.TrimSpace(v.GetString(KeyName))
	if name == "" {
		name = repoName
	}

	ref := strings.TrimSpace(v.GetString(KeyRef))
	if ref == "" {
		return nil, missing(KeyRef)
	}

	repoID, err := parseRepoID(v.GetString(KeyRepoID))
	if err != nil {
		return nil, err
	}

	productionURL := strings.TrimSpace(v.GetString(KeyProductionURL))
	if err := validateURL(KeyProductionURL, productionURL); err != nil {
		return nil, err
	}

	endpoint, err := vercel.DeploymentsURL(v.GetString(KeyAPIURL), strings.TrimSpace(v.GetString(KeyTeam)))
	if err != nil {
		return nil, err
	}

	timeout, err := parseTimeout(v.GetString(KeyTimeout))
	if err != nil {
		return nil, err
	}

	creds, err := LoadCredentials(v)
	if err != nil {
		return nil, err
	}

	return &Config{
		Request:         model.NewDeploymentRequest(project, name, target, repo, repoID, ref),
		Credentials:     creds,
		ProductionURL:   productionURL,
		Endpoint:        endpoint,
		Timeout:         timeout,
		URLFromResponse: v.GetBool(KeyURLFromResponse),
		GithubToken:     strings.TrimSpace(v.GetString(KeyGithubToken)),
		GithubAPIURL:    v.GetString(KeyGithubAPIURL),
		LogLevel:        v.GetString(KeyLogLevel),
		LogFormat:       v.GetString(KeyLogFormat),
	}, nil
}

// LoadCredentials reads the bearer token from the token file when one is
// configured, otherwise from the environment. The token is never a flag.
func LoadCredentials(v *viper.Viper) (model.Credentials, error) {
	if file := v.GetString(KeyTokenFile); file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return model.Credentials{}, fmt.Errorf("cannot read token file: %v", err)
		}
		creds := model.NewCredentials(string(raw))
		if creds.Empty() {
			return creds, fmt.Errorf("token file %s is empty", file)
		}
		return creds, nil
	}

	creds := model.NewCredentials(v.GetString(KeyToken))
	if creds.Empty() {
		return creds, fmt.Errorf("environment variable %s is not exported", constants.TokenEnvVar)
	}
	return creds, nil
}

// validateRepo checks repo is owner/name and returns the name
func validateRepo(repo string) (string, error) {
	if repo == "" {
		return "", missing(KeyRepo)
	}
	_, name, err := github.SplitFullName(repo)
	if err != nil {
		return "", fmt.Errorf("%s must be owner/name, got %q", KeyRepo, repo)
	}
	return name, nil
}

// parseRepoID parses an optional repository id. Empty and 0 both mean
// the id is looked up on github.
func parseRepoID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", KeyRepoID, raw)
	}
	if id < 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", KeyRepoID, id)
	}
	return id, nil
}

// parseTimeout requires a unit, so "30" is rejected rather than read as 30ns
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	timeout, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration with a unit such as 30s, got %q", KeyTimeout, raw)
	}
	if timeout < time.Second {
		return 0, fmt.Errorf("%s must be at least 1s, got %q", KeyTimeout, raw)
	}
	return timeout, nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return missing(key)
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return nil
}

func missing(key string) error {
	return fmt.Errorf("%s is required (flag --%s or environment variable %s)", key, key, envNames[key])
}
