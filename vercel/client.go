package vercel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/redbadger/deploy-trigger/model"
)

// maxBodySize caps how much of a response we keep
const maxBodySize = 1 << 20

// Client posts deployment requests to a single endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Response is a raw provider answer. Any status code is a Response;
// only transport failures are errors.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// NewClient creates a client for the endpoint, authenticated with the supplied
// credentials. A zero timeout means no limit. base, if not nil, is the
// transport underneath the oauth2 one.
func NewClient(endpoint string, creds model.Credentials, timeout time.Duration, base http.RoundTripper) *Client {
	ctx := context.Background()
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})
	}
	tokenService := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: creds.Token(), TokenType: "Bearer"},
	)
	tokenClient := oauth2.NewClient(ctx, tokenService)
	tokenClient.Timeout = timeout

	return &Client{
		endpoint:   endpoint,
		httpClient: tokenClient,
	}
}

// CreateDeployment issues exactly one POST for req
func (c *Client) CreateDeployment(ctx context.Context, req model.DeploymentRequest) (*Response, error) {
	body, err := json.Marshal(NewCreateDeploymentBody(req))
	if err != nil {
		return nil, fmt.Errorf("cannot encode deployment request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("cannot build deployment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	log.WithFields(log.Fields{
		"project": req.ProjectID,
		"target":  req.Target,
		"repo":    req.GitSource.Repo,
		"ref":     req.GitSource.Ref,
	}).Debug("creating deployment")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("cannot read response body: %w", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
	}, nil
}
