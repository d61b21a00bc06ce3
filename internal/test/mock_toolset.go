package test

import (
	"github.com/worklocal/worklocal-mcp-server/pkg/api"
	"github.com/worklocal/worklocal-mcp-server/pkg/toolsets"
)

// MockToolset is a test helper for testing toolset functionality
type MockToolset struct {
	Name        string
	Description string
	Tools       []api.ServerTool
}

var _ api.Toolset = (*MockToolset)(nil)

func (m *MockToolset) GetName() string {
	return m.Name
}

func (m *MockToolset) GetDescription() string {
	return m.Description
}

func (m *MockToolset) GetTools() []api.ServerTool {
	if m.Tools == nil {
		return []api.ServerTool{}
	}
	return m.Tools
}

// RegisterMockToolset registers a mock toolset for testing
func RegisterMockToolset(mockToolset *MockToolset) {
	toolsets.Register(mockToolset)
}

// UnregisterMockToolset removes a mock toolset from the registry
func UnregisterMockToolset(name string) {
	// Get all toolsets and rebuild the list without the mock
	allToolsets := toolsets.Toolsets()
	toolsets.Clear()
	for _, ts := range allToolsets {
		if ts.GetName() != name {
			toolsets.Register(ts)
		}
	}
}
