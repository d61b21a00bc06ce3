package worklocal

import (
	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"

	"github.com/worklocal/worklocal-mcp-server/pkg/api"
)

func initHealth() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "worklocal_health_check",
			Description: "Check whether the WorkLocal Studio API is reachable and healthy",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
			Annotations: api.ToolAnnotations{
				Title:           "WorkLocal: Health Check",
				ReadOnlyHint:    ptr.To(true),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(true),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: healthCheck},
	}
}

func healthCheck(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	return api.NewToolCallResult(params.HealthCheck(params.Context), nil), nil
}
