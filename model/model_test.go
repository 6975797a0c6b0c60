package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Target
		wantErr bool
	}{
		{"production", "production", TargetProduction, false},
		{"preview", "preview", TargetPreview, false},
		{"mixed case and spaces", " Production ", TargetProduction, false},
		{"staging is not a target", "staging", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTarget(tt.in)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseTarget() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("ParseTarget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewDeploymentRequest(t *testing.T) {
	req := NewDeploymentRequest("prj_X", "app", TargetProduction, "owner/app", 42, "main")

	assert.Equal(t, GitSource{Type: "github", Repo: "owner/app", RepoID: 42, Ref: "main"}, req.GitSource)
	assert.Equal(t, "prj_X", req.ProjectID)
	assert.Equal(t, "app", req.Name)
	assert.Equal(t, TargetProduction, req.Target)
}

func TestCredentialsNeverFormatToken(t *testing.T) {
	creds := NewCredentials("  s3cr3t-token\n")
	require.Equal(t, "s3cr3t-token", creds.Token())

	for _, verb := range []string{"%s", "%v", "%+v", "%#v", "%q"} {
		out := fmt.Sprintf(verb, creds)
		assert.NotContains(t, out, "s3cr3t-token", verb)
	}
	assert.NotContains(t, fmt.Sprintf("%+v", struct{ C Credentials }{creds}), "s3cr3t-token")
	assert.True(t, NewCredentials(" ").Empty())
}

func TestDeploymentResult(t *testing.T) {
	ok := Success("dep_1", "https://example.com")
	assert.True(t, ok.Succeeded())
	assert.Equal(t, ErrorKind(0), ok.Reason())

	cause := errors.New("connection refused")
	failed := Fail(&Failure{Reason: TransportUnavailable, Err: cause})
	assert.False(t, failed.Succeeded())
	assert.Equal(t, TransportUnavailable, failed.Reason())
	assert.ErrorIs(t, failed.Failure, cause)
}

func TestFailureError(t *testing.T) {
	tests := []struct {
		name string
		f    Failure
		want string
	}{
		{"rejected", Failure{Reason: RequestRejected, StatusCode: 429, Cause: "rate_limited"}, "request rejected (status 429): rate_limited"},
		{"transport", Failure{Reason: TransportUnavailable, Err: errors.New("dial tcp: refused")}, "transport unavailable: dial tcp: refused"},
		{"malformed", Failure{Reason: MalformedResponse, StatusCode: 200}, "malformed response (status 200)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}
