package report

import (
	"fmt"
	"io"
	"time"

	"github.com/redbadger/deploy-trigger/model"
)

// Exit codes returned by the trigger command
const (
	ExitSuccess              = 0
	ExitUsage                = 1
	ExitRequestRejected      = 2
	ExitTransportUnavailable = 3
	ExitMalformedResponse    = 4
)

// ExitCode maps a result onto a process exit status
func ExitCode(r model.DeploymentResult) int {
	switch r.Reason() {
	case 0:
		return ExitSuccess
	case model.RequestRejected:
		return ExitRequestRejected
	case model.TransportUnavailable:
		return ExitTransportUnavailable
	case model.MalformedResponse:
		return ExitMalformedResponse
	}
	return ExitUsage
}

// Print writes the human readable outcome. It never sees the credentials.
func Print(w io.Writer, r model.DeploymentResult) error {
	_, err := io.WriteString(w, Format(r, time.Now()))
	return err
}

// Format renders r; now is used to describe rate limit resets
func Format(r model.DeploymentResult, now time.Time) (out string) {
	if r.Succeeded() {
		out = "✓ Deployment created\n"
		out += fmt.Sprintf("   ID:  %s\n", r.DeploymentID)
		out += fmt.Sprintf("   URL: %s\n", r.TargetURL)
		return
	}

	f := r.Failure
	out = fmt.Sprintf("✗ Deployment was not created: %s\n", reason(f))
	if f.Message != "" {
		out += fmt.Sprintf("   provider said: %s\n", f.Message)
	}
	if hint := hint(f, now); hint != "" {
		out += "   " + hint + "\n"
	}
	return
}

func reason(f *model.Failure) string {
	switch f.Reason {
	case model.RequestRejected:
		switch f.Cause {
		case "rate_limited":
			return fmt.Sprintf("rate limit not reset yet (HTTP %d)", f.StatusCode)
		case "unauthorized":
			return fmt.Sprintf("token was refused (HTTP %d)", f.StatusCode)
		case "invalid_request":
			return fmt.Sprintf("request was invalid (HTTP %d)", f.StatusCode)
		case "quota_exceeded":
			return fmt.Sprintf("deployment quota exceeded (HTTP %d)", f.StatusCode)
		case "not_found":
			return fmt.Sprintf("project or endpoint not found (HTTP %d)", f.StatusCode)
		case "provider_error":
			return fmt.Sprintf("provider failed (HTTP %d)", f.StatusCode)
		}
		return fmt.Sprintf("request rejected (HTTP %d)", f.StatusCode)
	case model.TransportUnavailable:
		return "provider could not be reached"
	case model.MalformedResponse:
		return fmt.Sprintf("provider answered HTTP %d without a deployment id", f.StatusCode)
	}
	return f.Reason.String()
}

func hint(f *model.Failure, now time.Time) string {
	switch {
	case f.Reason == model.RequestRejected && !f.RateLimitReset.IsZero():
		wait := f.RateLimitReset.Sub(now).Round(time.Second)
		if wait <= 0 {
			return "the rate limit window has already reset, try again"
		}
		return fmt.Sprintf("try again after %s (in %s)", f.RateLimitReset.UTC().Format(time.RFC3339), wait)
	case f.Reason == model.RequestRejected && f.Cause == "rate_limited":
		return "try again once the rate limit window resets"
	case f.Reason == model.TransportUnavailable:
		return "check network access to the API and the --timeout setting"
	}
	return ""
}
