package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/github"
	"golang.org/x/oauth2"
)

// NewClient creates a new github client for the apiURL,
// authenticated with the supplied token. An empty token gives an
// anonymous client, which is enough for public repositories.
func NewClient(ctx context.Context, apiURL, token string, timeout time.Duration) (client *github.Client, err error) {
	httpClient := &http.Client{Timeout: timeout}
	if token != "" {
		tokenService := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, tokenService)
		httpClient.Timeout = timeout
	}

	client, err = github.NewEnterpriseClient(apiURL, apiURL, httpClient)
	if err != nil {
		err = fmt.Errorf("cannot create github client: %v", err)
		return
	}

	return
}
