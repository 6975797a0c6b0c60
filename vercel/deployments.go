package vercel

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redbadger/deploy-trigger/model"
)

// GitSource is the gitSource member of a create deployment body
type GitSource struct {
	Type   string `json:"type"`
	Repo   string `json:"repo"`
	Ref    string `json:"ref"`
	RepoID int64  `json:"repoId"`
}

// CreateDeploymentBody is the JSON body of POST /v13/deployments
type CreateDeploymentBody struct {
	Name      string    `json:"name"`
	Project   string    `json:"project"`
	Target    string    `json:"target"`
	GitSource GitSource `json:"gitSource"`
}

// NewCreateDeploymentBody maps a deployment request onto the wire shape
func NewCreateDeploymentBody(req model.DeploymentRequest) CreateDeploymentBody {
	return CreateDeploymentBody{
		Name:    req.Name,
		Project: req.ProjectID,
		Target:  string(req.Target),
		GitSource: GitSource{
			Type:   req.GitSource.Type,
			Repo:   req.GitSource.Repo,
			Ref:    req.GitSource.Ref,
			RepoID: req.GitSource.RepoID,
		},
	}
}

// Deployment is the part of a created deployment we read back
type Deployment struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	ReadyState   string   `json:"readyState"`
	InspectorURL string   `json:"inspectorUrl"`
	Alias        []string `json:"alias"`
}

// ErrMissingID is returned when a success body carries no deployment id
var ErrMissingID = errors.New("response has no deployment id")

// DecodeDeployment parses a success body. The whole body must be a single
// JSON object with a non-empty string id; trailing data is an error.
func DecodeDeployment(body []byte) (*Deployment, error) {
	var d Deployment
	if err := json.Unmarshal(body, &d); err != nil {
		return nil, fmt.Errorf("cannot decode deployment: %v", err)
	}
	if d.ID == "" {
		return nil, ErrMissingID
	}
	return &d, nil
}

// APIError is the error member of a vercel error body:
//   {"error": {"code": "rate_limited", "message": "..."}}
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DecodeError extracts the provider's error, if the body has one
func DecodeError(body []byte) (apiErr APIError, ok bool) {
	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error == nil {
		return
	}
	return *envelope.Error, true
}

// RateLimitReset reads X-RateLimit-Reset (unix seconds). Zero if absent or invalid.
func RateLimitReset(r *Response) time.Time {
	if r == nil || r.Header == nil {
		return time.Time{}
	}
	raw := r.Header.Get("X-RateLimit-Reset")
	if raw == "" {
		return time.Time{}
	}
	secs, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}
