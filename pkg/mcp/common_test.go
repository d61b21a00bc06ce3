package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/suite"

	"github.com/worklocal/worklocal-mcp-server/internal/test"
	"github.com/worklocal/worklocal-mcp-server/pkg/config"
	_ "github.com/worklocal/worklocal-mcp-server/pkg/toolsets/worklocal"
)

// BaseMcpSuite runs an in-process MCP client against a Server backed by a mock WorkLocal API.
type BaseMcpSuite struct {
	suite.Suite
	Cfg              *config.StaticConfig
	mockServer       *test.MockServer
	mcpServer        *Server
	McpClient        *client.Client
	InitializeResult *mcp.InitializeResult
}

func (s *BaseMcpSuite) SetupTest() {
	s.T().Setenv(config.EnvBaseURL, "")
	s.T().Setenv(config.EnvAPIKey, "")
	s.mockServer = test.NewMockServer()
	s.Cfg = config.Default()
	s.Cfg.WorkLocal.BaseURL = s.mockServer.URL()
}

func (s *BaseMcpSuite) TearDownTest() {
	if s.McpClient != nil {
		_ = s.McpClient.Close()
		s.McpClient = nil
	}
	if s.mcpServer != nil {
		s.mcpServer.Close()
		s.mcpServer = nil
	}
	if s.mockServer != nil {
		s.mockServer.Close()
	}
}

func (s *BaseMcpSuite) InitMcpClient() {
	var err error
	s.mcpServer, err = NewServer(Configuration{StaticConfig: s.Cfg})
	s.Require().NoError(err, "Expected no error creating MCP server")
	s.ConnectMcpClient(s.mcpServer)
}

func (s *BaseMcpSuite) ConnectMcpClient(mcpServer *Server) {
	var err error
	s.McpClient, err = client.NewInProcessClient(mcpServer.MCPServer())
	s.Require().NoError(err, "Expected no error creating in-process MCP client")
	s.Require().NoError(s.McpClient.Start(s.T().Context()), "Expected no error starting MCP client")
	initRequest := mcp.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "1.33.7"}
	s.InitializeResult, err = s.McpClient.Initialize(s.T().Context(), initRequest)
	s.Require().NoError(err, "Expected no error initializing MCP client")
}

func (s *BaseMcpSuite) ListTools() []mcp.Tool {
	result, err := s.McpClient.ListTools(s.T().Context(), mcp.ListToolsRequest{})
	s.Require().NoError(err, "Expected no error listing tools")
	return result.Tools
}

func (s *BaseMcpSuite) ToolNames() []string {
	var names []string
	for _, tool := range s.ListTools() {
		names = append(names, tool.Name)
	}
	return names
}

func (s *BaseMcpSuite) CallTool(name string, args map[string]any) (*mcp.CallToolResult, error) {
	return callTool(s.T().Context(), s.McpClient, name, args)
}

func callTool(ctx context.Context, c *client.Client, name string, args map[string]any) (*mcp.CallToolResult, error) {
	request := mcp.CallToolRequest{}
	request.Params.Name = name
	request.Params.Arguments = args
	return c.CallTool(ctx, request)
}

func resultText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	text, _ := result.Content[0].(mcp.TextContent)
	return text.Text
}
