package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/worklocal/worklocal-mcp-server/pkg/config"
)

type ConfigReloadSuite struct {
	BaseMcpSuite
	configFile string
	configDir  string
	server     *Server
}

func (s *ConfigReloadSuite) SetupTest() {
	s.BaseMcpSuite.SetupTest()
	tempDir := s.T().TempDir()
	s.configFile = filepath.Join(tempDir, "config.toml")
	s.configDir = filepath.Join(tempDir, "config.d")
	s.Require().NoError(os.Mkdir(s.configDir, 0755))
	s.Require().NoError(os.WriteFile(s.configFile, []byte(`
log_level = 1
toolsets = ["worklocal"]

[worklocal]
base_url = "`+s.mockServer.URL()+`"
`), 0644))
}

func (s *ConfigReloadSuite) TearDownTest() {
	if s.server != nil {
		s.server.Close()
		s.server = nil
	}
	s.BaseMcpSuite.TearDownTest()
}

func (s *ConfigReloadSuite) newServer() *Server {
	return s.newServerWithOverrides(nil)
}

func (s *ConfigReloadSuite) newServerWithOverrides(overrides func(*config.StaticConfig)) *Server {
	cfg, err := config.Read(s.configFile, s.configDir)
	s.Require().NoError(err)
	if overrides != nil {
		overrides(cfg)
	}
	server, err := NewServer(Configuration{
		StaticConfig: cfg,
		ConfigPath:   s.configFile,
		ConfigDir:    s.configDir,
		Overrides:    overrides,
	})
	s.Require().NoError(err)
	s.Require().NotNil(server)
	s.server = server
	return server
}

func (s *ConfigReloadSuite) writeDropIn(name, content string) {
	s.Require().NoError(os.WriteFile(filepath.Join(s.configDir, name), []byte(content), 0644))
}

func (s *ConfigReloadSuite) TestDropInConfigurationReload() {
	server := s.newServer()

	s.Run("initial configuration loaded correctly", func() {
		s.Equal(1, server.Configuration().LogLevel)
		s.Equal(s.mockServer.URL(), server.Client().BaseURL())
	})

	s.writeDropIn("10-override.toml", `
log_level = 5
[worklocal]
base_url = "https://staging.worklocal.app"
`)
	s.Require().NoError(server.reloadConfiguration())

	s.Run("drop-in file overrides main config", func() {
		s.Equal(5, server.Configuration().LogLevel)
		s.Equal([]string{"worklocal"}, server.Configuration().StaticConfig.Toolsets)
	})
	s.Run("API client is rebuilt", func() {
		s.Equal("https://staging.worklocal.app", server.Client().BaseURL())
	})

	s.writeDropIn("20-partial.toml", `log_level = 7`)
	s.Require().NoError(server.reloadConfiguration())

	s.Run("later drop-in overrides earlier with partial config", func() {
		s.Equal(7, server.Configuration().LogLevel)
		s.Equal("https://staging.worklocal.app", server.Client().BaseURL())
	})
	s.Run("reload keeps the configuration sources", func() {
		s.Equal(s.configFile, server.Configuration().ConfigPath)
		s.Equal(s.configDir, server.Configuration().ConfigDir)
	})
}

func (s *ConfigReloadSuite) TestConfigurationReloadErrors() {
	server := s.newServer()
	initialLogLevel := server.Configuration().LogLevel

	s.Run("invalid TOML in drop-in file", func() {
		s.writeDropIn("10-invalid.toml", `
log_level = "invalid
`)
		err := server.reloadConfiguration()
		s.Error(err, "should return error for invalid TOML")
		s.Equal(initialLogLevel, server.Configuration().LogLevel, "config unchanged on error")
		_ = os.Remove(filepath.Join(s.configDir, "10-invalid.toml"))
	})

	s.Run("unknown toolset", func() {
		s.writeDropIn("10-toolsets.toml", `toolsets = ["unknown"]`)
		err := server.reloadConfiguration()
		s.ErrorContains(err, "invalid toolset name: unknown")
		s.Equal([]string{"worklocal"}, server.Configuration().StaticConfig.Toolsets, "config unchanged on error")
		_ = os.Remove(filepath.Join(s.configDir, "10-toolsets.toml"))
	})

	s.Run("missing main config file", func() {
		s.Require().NoError(os.Remove(s.configFile))
		err := server.reloadConfiguration()
		s.Error(err, "should return error for missing config file")
		s.Equal(initialLogLevel, server.Configuration().LogLevel, "config unchanged on error")
	})
}

func (s *ConfigReloadSuite) TestSIGHUPReload() {
	server := s.newServer()

	s.Run("single SIGHUP triggers reload", func() {
		s.writeDropIn("10-sighup.toml", `log_level = 9`)
		server.sigHupCh <- syscall.SIGHUP
		s.Eventually(func() bool {
			return server.Configuration().LogLevel == 9
		}, time.Second, 10*time.Millisecond)
		_ = os.Remove(filepath.Join(s.configDir, "10-sighup.toml"))
	})

	s.Run("multiple SIGHUP signals in succession", func() {
		for _, level := range []int{3, 6, 9} {
			s.writeDropIn("10-multi.toml", "log_level = "+strconv.Itoa(level))
			server.sigHupCh <- syscall.SIGHUP
			s.Eventually(func() bool {
				return server.Configuration().LogLevel == level
			}, time.Second, 10*time.Millisecond)
		}
	})
}

func (s *ConfigReloadSuite) TestWatchConfig() {
	server := s.newServer()
	ctx, cancel := context.WithCancel(s.T().Context())
	done := make(chan error, 1)
	go func() { done <- server.WatchConfig(ctx) }()
	// Give the watcher a chance to register before writing
	time.Sleep(100 * time.Millisecond)

	s.Run("drop-in change triggers reload", func() {
		s.writeDropIn("10-watch.toml", `log_level = 4`)
		s.Eventually(func() bool {
			return server.Configuration().LogLevel == 4
		}, 5*time.Second, 20*time.Millisecond)
	})
	s.Run("main file change triggers reload", func() {
		s.Require().NoError(os.WriteFile(s.configFile, []byte(`
[worklocal]
base_url = "https://watched.worklocal.app"
`), 0644))
		s.Eventually(func() bool {
			return server.Client().BaseURL() == "https://watched.worklocal.app"
		}, 5*time.Second, 20*time.Millisecond)
	})
	s.Run("stops when context is cancelled", func() {
		cancel()
		select {
		case err := <-done:
			s.NoError(err)
		case <-time.After(5 * time.Second):
			s.Fail("WatchConfig did not return after cancellation")
		}
	})
}

func (s *ConfigReloadSuite) TestWatchConfigWithoutSources() {
	server, err := NewServer(Configuration{StaticConfig: s.Cfg})
	s.Require().NoError(err)
	s.server = server
	s.NoError(server.WatchConfig(s.T().Context()), "returns immediately when there is nothing to watch")
}

func (s *ConfigReloadSuite) TestReloadUpdatesTools() {
	server := s.newServer()
	s.ConnectMcpClient(server)
	s.Require().Len(s.ListTools(), len(allTools))

	s.writeDropIn("10-read-only.toml", `read_only = true`)
	s.Require().NoError(server.reloadConfiguration())

	names := s.ToolNames()
	s.Len(names, 5, "only read-only tools after reload")
	s.NotContains(names, "worklocal_delete_resource")
	s.ElementsMatch(names, server.GetEnabledTools())
}

func (s *ConfigReloadSuite) TestReloadKeepsOverrides() {
	server := s.newServerWithOverrides(func(cfg *config.StaticConfig) {
		cfg.ReadOnly = true
		cfg.WorkLocal.BaseURL = "https://override.example.com"
	})
	s.ConnectMcpClient(server)
	s.Require().NotContains(s.ToolNames(), "worklocal_delete_resource")

	s.writeDropIn("10-writable.toml", `
read_only = false
[worklocal]
base_url = "https://file.example.com"
`)
	s.Require().NoError(server.reloadConfiguration())

	s.Run("destructive tools stay hidden", func() {
		names := s.ToolNames()
		s.Len(names, 5)
		s.NotContains(names, "worklocal_delete_resource")
		s.NotContains(names, "worklocal_update_resource")
		s.NotContains(names, "worklocal_execute_action")
	})
	s.Run("overridden API URL is kept", func() {
		s.Equal("https://override.example.com", server.Client().BaseURL())
		s.True(server.Configuration().ReadOnly)
	})
	s.Run("overrides survive successive reloads", func() {
		s.Require().NoError(server.reloadConfiguration())
		s.Equal("https://override.example.com", server.Configuration().WorkLocal.BaseURL)
		s.NotNil(server.Configuration().Overrides)
	})
}

func (s *ConfigReloadSuite) TestServerLifecycle() {
	server := s.newServer()
	s.server = nil

	s.Run("server closes without panic", func() {
		s.NotPanics(func() {
			server.Close()
		})
	})

	s.Run("double close does not panic", func() {
		s.NotPanics(func() {
			server.Close()
		})
	})
}

func TestConfigReload(t *testing.T) {
	suite.Run(t, new(ConfigReloadSuite))
}
