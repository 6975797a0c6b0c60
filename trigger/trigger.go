// Package trigger creates a single deployment and classifies the outcome.
package trigger

import (
	"context"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/redbadger/deploy-trigger/model"
	"github.com/redbadger/deploy-trigger/vercel"
)

// bodyExcerpt bounds how much of an error body is kept for diagnostics
const bodyExcerpt = 1024

// Trigger performs deployment attempts against one provider endpoint
type Trigger struct {
	// Endpoint is the deployment-creation URL, see vercel.DeploymentsURL
	Endpoint string
	// Timeout bounds the request; exceeding it is TransportUnavailable
	Timeout time.Duration
	// TargetURL is reported on success
	TargetURL string
	// URLFromResponse reports https://<url> from the response instead of TargetURL, when present
	URLFromResponse bool
	// Transport is the base round tripper, nil for http.DefaultTransport
	Transport http.RoundTripper
}

// Attempt sends exactly one deployment-creation request and classifies the
// result. It never retries and never returns an error: every failure is a
// model.Failure inside the result.
func (t *Trigger) Attempt(ctx context.Context, req model.DeploymentRequest, creds model.Credentials) model.DeploymentResult {
	client := vercel.NewClient(t.Endpoint, creds, t.Timeout, t.Transport)

	resp, err := client.CreateDeployment(ctx, req)
	if err != nil {
		log.WithError(err).Warn("deployment request did not reach the provider")
		return model.Fail(&model.Failure{Reason: model.TransportUnavailable, Err: err})
	}

	if !resp.OK() {
		f := rejection(resp, creds)
		log.WithFields(log.Fields{
			"status": f.StatusCode,
			"cause":  f.Cause,
			"code":   f.Code,
			"body":   f.Body,
		}).Warn("deployment request rejected")
		return model.Fail(f)
	}

	deployment, err := vercel.DecodeDeployment(resp.Body)
	if err != nil {
		log.WithError(err).WithField("status", resp.StatusCode).Warn("deployment response is malformed")
		return model.Fail(&model.Failure{
			Reason:     model.MalformedResponse,
			StatusCode: resp.StatusCode,
			Body:       excerpt(scrub(string(resp.Body), creds)),
			Err:        err,
		})
	}

	log.WithFields(log.Fields{
		"id":         deployment.ID,
		"readyState": deployment.ReadyState,
		"inspector":  deployment.InspectorURL,
	}).Info("deployment created")

	return model.Success(deployment.ID, t.targetURL(deployment))
}

func (t *Trigger) targetURL(d *vercel.Deployment) string {
	if t.URLFromResponse && d.URL != "" {
		if strings.HasPrefix(d.URL, "http://") || strings.HasPrefix(d.URL, "https://") {
			return d.URL
		}
		return "https://" + d.URL
	}
	return t.TargetURL
}

func rejection(resp *vercel.Response, creds model.Credentials) *model.Failure {
	f := &model.Failure{
		Reason:         model.RequestRejected,
		StatusCode:     resp.StatusCode,
		Cause:          Cause(resp.StatusCode),
		Body:           excerpt(scrub(string(resp.Body), creds)),
		RateLimitReset: vercel.RateLimitReset(resp),
	}
	if apiErr, ok := vercel.DecodeError(resp.Body); ok {
		f.Code = scrub(apiErr.Code, creds)
		f.Message = scrub(apiErr.Message, creds)
	}
	return f
}

// scrub removes the token from text the provider sent back
func scrub(s string, creds model.Credentials) string {
	if creds.Empty() {
		return s
	}
	return strings.ReplaceAll(s, creds.Token(), "[REDACTED]")
}

// Cause sub-classifies a rejected request by its status code
func Cause(status int) string {
	switch {
	case status == http.StatusTooManyRequests:
		return "rate_limited"
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "unauthorized"
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return "invalid_request"
	case status == http.StatusNotFound:
		return "not_found"
	case status == http.StatusPaymentRequired:
		return "quota_exceeded"
	case status >= 500:
		return "provider_error"
	}
	return "rejected"
}

// excerpt keeps at most bodyExcerpt bytes, cut on a rune boundary
func excerpt(body string) string {
	if len(body) > bodyExcerpt {
		n := bodyExcerpt
		for n > 0 && !utf8.RuneStart(body[n]) {
			n--
		}
		body = body[:n]
	}
	return strings.TrimSpace(body)
}
