package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redbadger/deploy-trigger/model"
)

func newViper(t *testing.T, values map[string]interface{}) *viper.Viper {
	t.Helper()
	for _, env := range envNames {
		t.Setenv(env, "")
	}
	v := viper.New()
	Bind(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func valid() map[string]interface{} {
	return map[string]interface{}{
		KeyProject:       "prj_X",
		KeyRepo:          "owner/app",
		KeyRepoID:        42,
		KeyProductionURL: "https://app.example.com",
		KeyToken:         "tok",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, valid()))
	require.NoError(t, err)

	assert.Equal(t, model.NewDeploymentRequest("prj_X", "app", model.TargetProduction, "owner/app", 42, "main"), cfg.Request)
	assert.Equal(t, "tok", cfg.Credentials.Token())
	assert.Equal(t, "https://app.example.com", cfg.ProductionURL)
	assert.Equal(t, "https://api.vercel.com/v13/deployments", cfg.Endpoint)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.URLFromResponse)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvironment(t *testing.T) {
	v := newViper(t, nil)
	t.Setenv("VERCEL_PROJECT_ID", "prj_env")
	t.Setenv("VERCEL_PROJECT_NAME", "site")
	t.Setenv("VERCEL_TARGET", "preview")
	t.Setenv("GITHUB_REPO", "acme/site")
	t.Setenv("GITHUB_REPO_ID", "1158752738")
	t.Setenv("GIT_REF", "release")
	t.Setenv("PRODUCTION_URL", "https://site.example")
	t.Setenv("VERCEL_TEAM_ID", "team_1")
	t.Setenv("DEPLOY_TIMEOUT", "5s")
	t.Setenv("URL_FROM_RESPONSE", "true")
	t.Setenv("VERCEL_TOKEN", "env-token")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, model.NewDeploymentRequest("prj_env", "site", model.TargetPreview, "acme/site", 1158752738, "release"), cfg.Request)
	assert.Equal(t, "https://api.vercel.com/v13/deployments?teamId=team_1", cfg.Endpoint)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.URLFromResponse)
	assert.Equal(t, "env-token", cfg.Credentials.Token())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name     string
		override map[string]interface{}
	}{
		{"no project", map[string]interface{}{KeyProject: ""}},
		{"no repo", map[string]interface{}{KeyRepo: ""}},
		{"repo without owner", map[string]interface{}{KeyRepo: "app"}},
		{"repo with extra segment", map[string]interface{}{KeyRepo: "a/b/c"}},
		{"negative repo id", map[string]interface{}{KeyRepoID: -1}},
		{"repo id with suffix", map[string]interface{}{KeyRepoID: "42x"}},
		{"fractional repo id", map[string]interface{}{KeyRepoID: "4.2"}},
		{"bad target", map[string]interface{}{KeyTarget: "staging"}},
		{"no production url", map[string]interface{}{KeyProductionURL: ""}},
		{"relative production url", map[string]interface{}{KeyProductionURL: "app.example.com"}},
		{"bad api url", map[string]interface{}{KeyAPIURL: "ftp://x"}},
		{"zero timeout", map[string]interface{}{KeyTimeout: "0s"}},
		{"timeout without unit", map[string]interface{}{KeyTimeout: "30"}},
		{"sub-second timeout", map[string]interface{}{KeyTimeout: "500ms"}},
		{"negative timeout", map[string]interface{}{KeyTimeout: "-5s"}},
		{"timeout not a duration", map[string]interface{}{KeyTimeout: "soon"}},
		{"no token", map[string]interface{}{KeyToken: ""}},
		{"empty ref", map[string]interface{}{KeyRef: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := valid()
			for k, v := range tt.override {
				values[k] = v
			}
			_, err := Load(newViper(t, values))
			assert.Error(t, err)
		})
	}
}

func TestLoadInvalidFromEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		value   string
		wantErr string
	}{
		{"unitless timeout", "DEPLOY_TIMEOUT", "30", KeyTimeout},
		{"malformed repo id", "GITHUB_REPO_ID", "42x", KeyRepoID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := valid()
			delete(values, KeyRepoID)
			v := newViper(t, values)
			t.Setenv(tt.env, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRepoIDOmitted(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"unset", nil},
		{"empty", ""},
		{"zero", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := valid()
			delete(values, KeyRepoID)
			if tt.value != nil {
				values[KeyRepoID] = tt.value
			}

			cfg, err := Load(newViper(t, values))
			require.NoError(t, err)
			assert.Zero(t, cfg.Request.GitSource.RepoID)
		})
	}
}

func TestLoadCredentialsFromFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(file, []byte("file-token\n"), 0600))

	values := valid()
	values[KeyTokenFile] = file
	cfg, err := Load(newViper(t, values))
	require.NoError(t, err)
	assert.Equal(t, "file-token", cfg.Credentials.Token())

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n"), 0600))
	values[KeyTokenFile] = empty
	_, err = Load(newViper(t, values))
	assert.Error(t, err)

	values[KeyTokenFile] = filepath.Join(dir, "missing")
	_, err = Load(newViper(t, values))
	assert.Error(t, err)
}

func TestMissingTokenErrorNamesVariableNotValue(t *testing.T) {
	values := valid()
	values[KeyToken] = ""
	_, err := Load(newViper(t, values))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VERCEL_TOKEN")
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("DEPLOY_TRIGGER_DOTENV_TEST=from-dotenv\n"), 0600))
	t.Cleanup(func() { _ = os.Unsetenv("DEPLOY_TRIGGER_DOTENV_TEST") })

	LoadDotEnv(filepath.Join(dir, "absent.env"), file)

	assert.Equal(t, "from-dotenv", os.Getenv("DEPLOY_TRIGGER_DOTENV_TEST"))
}
