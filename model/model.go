package model

import (
	"fmt"
	"strings"
	"time"
)

// Target is the visibility tier of a deployment
type Target string

const (
	// TargetProduction publishes to the project's production domains
	TargetProduction Target = "production"
	// TargetPreview creates a preview deployment
	TargetPreview Target = "preview"
)

// ParseTarget accepts "production" or "preview" (case insensitive)
func ParseTarget(s string) (Target, error) {
	switch t := Target(strings.ToLower(strings.TrimSpace(s))); t {
	case TargetProduction, TargetPreview:
		return t, nil
	}
	return "", fmt.Errorf("unknown target %q, expected %q or %q", s, TargetProduction, TargetPreview)
}

// GitSourceGithub is the only source-control provider supported
const GitSourceGithub = "github"

// GitSource identifies the revision the provider should build
type GitSource struct {
	// Type is always GitSourceGithub
	Type string
	// Repo is the repository full name, e.g. owner/name
	Repo string
	// RepoID is github's numeric repository id
	RepoID int64
	// Ref is the branch (or other ref) to deploy
	Ref string
}

// The DeploymentRequest type carries all the information needed to request a deployment
type DeploymentRequest struct {
	// ProjectID is the provider's project identifier
	ProjectID string
	// Name is the deployment's display name
	Name string
	// Target is production or preview
	Target Target
	// GitSource is the revision to deploy
	GitSource GitSource
}

// NewDeploymentRequest builds a request for a github hosted repository
func NewDeploymentRequest(projectID, name string, target Target, repo string, repoID int64, ref string) DeploymentRequest {
	return DeploymentRequest{
		ProjectID: projectID,
		Name:      name,
		Target:    target,
		GitSource: GitSource{
			Type:   GitSourceGithub,
			Repo:   repo,
			RepoID: repoID,
			Ref:    ref,
		},
	}
}

// Credentials holds the bearer token for a single invocation.
// It formats as [REDACTED] so it can't leak through fmt or a logger.
type Credentials struct {
	token string
}

// NewCredentials wraps a bearer token
func NewCredentials(token string) Credentials {
	return Credentials{token: strings.TrimSpace(token)}
}

// Token returns the raw bearer token
func (c Credentials) Token() string { return c.token }

// Empty reports whether no token was supplied
func (c Credentials) Empty() bool { return c.token == "" }

func (c Credentials) String() string   { return "[REDACTED]" }
func (c Credentials) GoString() string { return "model.Credentials{[REDACTED]}" }

// ErrorKind classifies why a deployment was not created
type ErrorKind int

const (
	// RequestRejected means the provider answered with a non-2xx status
	RequestRejected ErrorKind = iota + 1
	// TransportUnavailable means no response was obtained (refused, DNS, timeout)
	TransportUnavailable
	// MalformedResponse means a 2xx status whose body isn't a deployment
	MalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case RequestRejected:
		return "request rejected"
	case TransportUnavailable:
		return "transport unavailable"
	case MalformedResponse:
		return "malformed response"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Failure describes an attempt that did not create a deployment.
// Only Reason is part of the contract; the rest is kept for diagnostics.
type Failure struct {
	Reason ErrorKind
	// StatusCode is the HTTP status, zero when no response arrived
	StatusCode int
	// Cause sub-classifies a rejection, e.g. rate_limited
	Cause string
	// Code and Message come from the provider's error body, when present
	Code    string
	Message string
	// Body is an excerpt of the response body
	Body string
	// RateLimitReset is when the provider's rate limit window resets, if reported
	RateLimitReset time.Time
	// Err is the underlying transport or decoding error
	Err error
}

func (f *Failure) Error() string {
	msg := f.Reason.String()
	if f.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, f.StatusCode)
	}
	if f.Cause != "" {
		msg += ": " + f.Cause
	}
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Failure) Unwrap() error { return f.Err }

// DeploymentResult is the outcome of one attempt: either a deployment
// (DeploymentID and TargetURL set, Failure nil) or a Failure.
type DeploymentResult struct {
	DeploymentID string
	TargetURL    string
	Failure      *Failure
}

// Success builds a successful result
func Success(deploymentID, targetURL string) DeploymentResult {
	return DeploymentResult{DeploymentID: deploymentID, TargetURL: targetURL}
}

// Fail builds a failed result
func Fail(f *Failure) DeploymentResult {
	return DeploymentResult{Failure: f}
}

// Succeeded reports whether a deployment was created
func (r DeploymentResult) Succeeded() bool { return r.Failure == nil }

// Reason is the failure kind, zero on success
func (r DeploymentResult) Reason() ErrorKind {
	if r.Failure == nil {
		return 0
	}
	return r.Failure.Reason
}
