package worklocal

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"

	"github.com/worklocal/worklocal-mcp-server/pkg/api"
)

func initActions() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "worklocal_execute_action",
			Description: "Execute an action on a WorkLocal Studio resource (e.g. start, stop, restart, backup)",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"resource_id": {
						Type:        "string",
						Description: "ID of the resource",
					},
					"action": {
						Type:        "string",
						Description: "Action to execute (e.g. start, stop, restart, backup)",
					},
					"parameters": {
						Type:        "string",
						Description: "Action parameters as a JSON document (Optional, defaults to {})",
						Default:     api.ToRawMessage("{}"),
					},
				},
				Required: []string{"resource_id", "action"},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Resources: Execute Action",
				ReadOnlyHint:    ptr.To(false),
				DestructiveHint: ptr.To(true),
				IdempotentHint:  ptr.To(false),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: resourcesExecuteAction},
	}
}

func resourcesExecuteAction(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	resourceID, err := params.RequiredString("resource_id")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to execute action, %w", err)), nil
	}
	action, err := params.RequiredString("action")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to execute action, %w", err)), nil
	}
	parameters, err := jsonArgument(params, "parameters", "{}")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to execute action, %w", err)), nil
	}
	return api.NewToolCallResult(params.ExecuteAction(params.Context, resourceID, action, parameters), nil), nil
}
