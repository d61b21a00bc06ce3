package worklocal

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/worklocal/worklocal-mcp-server/pkg/api"
	"github.com/worklocal/worklocal-mcp-server/pkg/toolsets"
)

type Toolset struct{}

var _ api.Toolset = (*Toolset)(nil)

func (t *Toolset) GetName() string {
	return "worklocal"
}

func (t *Toolset) GetDescription() string {
	return "Tools for managing WorkLocal Studio infrastructure resources (servers, databases, storage, etc.): CRUD, actions, metrics and search"
}

func (t *Toolset) GetTools() []api.ServerTool {
	return slices.Concat(
		initHealth(),
		initResources(),
		initActions(),
		initMetrics(),
	)
}

func init() {
	toolsets.Register(&Toolset{})
}

// jsonArgument returns the named argument as JSON text. Strings are passed through so the
// client can validate them, structured values are re-encoded.
func jsonArgument(params api.ToolHandlerParams, name, defaultValue string) (string, error) {
	value, ok := params.GetArguments()[name]
	if !ok || value == nil {
		return defaultValue, nil
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%s parameter could not be encoded as JSON: %w", name, err)
	}
	return string(data), nil
}
