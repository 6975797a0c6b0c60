package constants

import "time"

const (
	// Version is the application version reported by `deploy-trigger version` and `deploy-trigger --version`
	Version = "0.2"
	// TokenEnvVar is the name of the environment variable that holds the Vercel bearer token
	TokenEnvVar = "VERCEL_TOKEN"
	// GithubTokenEnvVar is the name of the environment variable that holds an optional github personal access token
	GithubTokenEnvVar = "GITHUB_TOKEN"
	// SecretEnvVar is the name of the environment variable that holds the webhook secret
	SecretEnvVar = "DEPLOY_SECRET"

	// DefaultAPIURL is the root of the Vercel REST API
	DefaultAPIURL = "https://api.vercel.com"
	// DefaultGithubAPIURL is the root of the public github API
	DefaultGithubAPIURL = "https://api.github.com/"
	// DefaultTimeout bounds the single deployment request
	DefaultTimeout = 30 * time.Second
)
