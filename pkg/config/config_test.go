package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	suite.Suite
	fs afero.Fs
}

func (s *ConfigSuite) SetupTest() {
	s.fs = afero.NewMemMapFs()
	s.T().Setenv(EnvBaseURL, "")
	s.T().Setenv(EnvAPIKey, "")
}

func (s *ConfigSuite) writeFile(path, content string) {
	s.Require().NoError(afero.WriteFile(s.fs, path, []byte(content), 0644))
}

func (s *ConfigSuite) TestDefault() {
	cfg := Default()
	s.Run("enables worklocal toolset", func() {
		s.Equal([]string{"worklocal"}, cfg.Toolsets)
	})
	s.Run("points to the public API", func() {
		s.Equal("https://worklocal.app", cfg.WorkLocal.BaseURL)
	})
	s.Run("uses a 10 second timeout", func() {
		s.Equal(10*time.Second, cfg.WorkLocal.RequestTimeout())
	})
	s.Run("sends JSON content type only", func() {
		s.Equal(map[string]string{"Content-Type": "application/json"}, cfg.WorkLocal.RequestHeaders())
	})
	s.Run("serves stdio", func() {
		s.Empty(cfg.Port)
	})
}

func (s *ConfigSuite) TestReadFs() {
	s.writeFile("/etc/worklocal/config.toml", `
log_level = 2
port = "8080"
read_only = true
toolsets = ["worklocal"]

[worklocal]
base_url = "https://worklocal.app/api"
api_key = "secret"
timeout = "30s"

[worklocal.headers]
x-tenant = "acme"
`)
	cfg, err := ReadFs(s.fs, "/etc/worklocal/config.toml", "")
	s.Require().NoError(err)
	s.Run("reads server settings", func() {
		s.Equal(2, cfg.LogLevel)
		s.Equal("8080", cfg.Port)
		s.True(cfg.ReadOnly)
	})
	s.Run("reads worklocal section", func() {
		s.Equal("https://worklocal.app/api", cfg.WorkLocal.BaseURL)
		s.Equal(30*time.Second, cfg.WorkLocal.RequestTimeout())
	})
	s.Run("builds request headers", func() {
		headers := cfg.WorkLocal.RequestHeaders()
		s.Equal("application/json", headers["Content-Type"])
		s.Equal("acme", headers["X-Tenant"])
		s.Equal("Bearer secret", headers["Authorization"])
	})
}

func (s *ConfigSuite) TestReadFsDropIns() {
	s.writeFile("/config.toml", `
log_level = 1
[worklocal]
base_url = "https://main.example.com"
`)
	s.writeFile("/config.d/20-second.toml", `
log_level = 5
`)
	s.writeFile("/config.d/10-first.toml", `
log_level = 3
[worklocal]
base_url = "https://dropin.example.com"
`)
	s.writeFile("/config.d/README.md", `not toml`)
	cfg, err := ReadFs(s.fs, "/config.toml", "/config.d")
	s.Require().NoError(err)
	s.Run("applies drop-ins in lexical order", func() {
		s.Equal(5, cfg.LogLevel)
	})
	s.Run("drop-ins override main file", func() {
		s.Equal("https://dropin.example.com", cfg.WorkLocal.BaseURL)
	})
	s.Run("missing drop-in directory is ignored", func() {
		cfg, err := ReadFs(s.fs, "/config.toml", "/does-not-exist")
		s.Require().NoError(err)
		s.Equal(1, cfg.LogLevel)
	})
}

func (s *ConfigSuite) TestReadFsErrors() {
	s.Run("missing file", func() {
		_, err := ReadFs(s.fs, "/missing.toml", "")
		s.ErrorContains(err, "failed to read config file /missing.toml")
	})
	s.Run("invalid toml", func() {
		s.writeFile("/invalid.toml", `log_level = `)
		_, err := ReadFs(s.fs, "/invalid.toml", "")
		s.ErrorContains(err, "failed to parse config file /invalid.toml")
	})
	s.Run("invalid base url", func() {
		s.writeFile("/bad-url.toml", "[worklocal]\nbase_url = \"not a url\"\n")
		_, err := ReadFs(s.fs, "/bad-url.toml", "")
		s.ErrorContains(err, "base_url must be a valid URL")
	})
	s.Run("invalid timeout", func() {
		s.writeFile("/bad-timeout.toml", "[worklocal]\ntimeout = \"soon\"\n")
		_, err := ReadFs(s.fs, "/bad-timeout.toml", "")
		s.ErrorContains(err, "timeout must be a valid duration")
	})
	s.Run("negative timeout", func() {
		s.writeFile("/neg-timeout.toml", "[worklocal]\ntimeout = \"-1s\"\n")
		_, err := ReadFs(s.fs, "/neg-timeout.toml", "")
		s.ErrorContains(err, "timeout must be positive")
	})
}

func (s *ConfigSuite) TestApplyEnv() {
	s.writeFile("/config.toml", "[worklocal]\nbase_url = \"https://file.example.com\"\napi_key = \"from-file\"\n")
	s.Run("environment takes precedence over file", func() {
		s.T().Setenv(EnvBaseURL, "https://env.example.com")
		s.T().Setenv(EnvAPIKey, "from-env")
		cfg, err := ReadFs(s.fs, "/config.toml", "")
		s.Require().NoError(err)
		s.Equal("https://env.example.com", cfg.WorkLocal.BaseURL)
		s.Equal("from-env", cfg.WorkLocal.APIKey)
	})
	s.Run("blank environment keeps file values", func() {
		s.T().Setenv(EnvBaseURL, "  ")
		s.T().Setenv(EnvAPIKey, "")
		cfg, err := ReadFs(s.fs, "/config.toml", "")
		s.Require().NoError(err)
		s.Equal("https://file.example.com", cfg.WorkLocal.BaseURL)
		s.Equal("from-file", cfg.WorkLocal.APIKey)
	})
}

func (s *ConfigSuite) TestReadToml() {
	cfg, err := ReadToml([]byte(`
disable_destructive = true
enabled_tools = ["worklocal_get_resource"]
server_instructions = "Always confirm before deleting resources."
[cors]
origins = ["https://chat.example.com"]
`))
	s.Require().NoError(err)
	s.True(cfg.DisableDestructive)
	s.Equal([]string{"worklocal_get_resource"}, cfg.EnabledTools)
	s.Equal("Always confirm before deleting resources.", cfg.ServerInstructions)
	s.Require().NotNil(cfg.CORS)
	s.Equal([]string{"https://chat.example.com"}, cfg.CORS.Origins)
	s.Equal("https://worklocal.app", cfg.WorkLocal.BaseURL, "defaults are preserved")
}

func TestConfig(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

type WorkLocalConfigSuite struct {
	suite.Suite
}

func (s *WorkLocalConfigSuite) TestRequestHeaders() {
	s.Run("bearer prefix is added once", func() {
		c := &WorkLocalConfig{APIKey: "Bearer abc"}
		s.Equal("Bearer abc", c.RequestHeaders()["Authorization"])
	})
	s.Run("custom auth header carries raw key", func() {
		c := &WorkLocalConfig{APIKey: "abc", AuthHeader: "x-api-key"}
		headers := c.RequestHeaders()
		s.Equal("abc", headers["X-Api-Key"])
		s.NotContains(headers, "Authorization")
	})
	s.Run("blank key adds no auth header", func() {
		c := &WorkLocalConfig{APIKey: "   "}
		s.NotContains(c.RequestHeaders(), "Authorization")
	})
	s.Run("static headers cannot drop content type", func() {
		c := &WorkLocalConfig{Headers: map[string]string{"accept": "application/json"}}
		headers := c.RequestHeaders()
		s.Equal("application/json", headers["Content-Type"])
		s.Equal("application/json", headers["Accept"])
	})
}

func (s *WorkLocalConfigSuite) TestValidate() {
	s.Run("nil", func() {
		var c *WorkLocalConfig
		s.ErrorContains(c.Validate(), "worklocal config is nil")
	})
	s.Run("empty base url", func() {
		s.ErrorContains((&WorkLocalConfig{}).Validate(), "base_url is required")
	})
	s.Run("valid", func() {
		s.NoError((&WorkLocalConfig{BaseURL: "http://127.0.0.1:8080", Timeout: "500ms"}).Validate())
	})
}

func (s *WorkLocalConfigSuite) TestRequestTimeout() {
	s.Equal(DefaultTimeout, (&WorkLocalConfig{}).RequestTimeout())
	s.Equal(DefaultTimeout, (&WorkLocalConfig{Timeout: "garbage"}).RequestTimeout())
	s.Equal(2*time.Second, (&WorkLocalConfig{Timeout: "2s"}).RequestTimeout())
}

func TestWorkLocalConfig(t *testing.T) {
	suite.Run(t, new(WorkLocalConfigSuite))
}
