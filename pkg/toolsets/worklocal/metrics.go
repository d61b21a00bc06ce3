package worklocal

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"

	"github.com/worklocal/worklocal-mcp-server/pkg/api"
	"github.com/worklocal/worklocal-mcp-server/pkg/worklocal"
)

func initMetrics() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "worklocal_get_metrics",
			Description: "Get monitoring metrics (cpu, memory, network, etc.) of a WorkLocal Studio resource",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"resource_id": {
						Type:        "string",
						Description: "ID of the resource",
					},
					"metric_type": {
						Type:        "string",
						Description: "Metric to retrieve (e.g. cpu, memory, network). Use \"all\" to retrieve every metric",
						Default:     api.ToRawMessage(worklocal.AllMetrics),
					},
					"timeframe": {
						Type:        "string",
						Description: "Time window of the metrics (e.g. 1h, 24h, 7d)",
						Default:     api.ToRawMessage(worklocal.DefaultTimeframe),
					},
				},
				Required: []string{"resource_id"},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Resources: Metrics",
				ReadOnlyHint:    ptr.To(true),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(false),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: resourcesMetrics},
	}
}

func resourcesMetrics(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	resourceID, err := params.RequiredString("resource_id")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to get metrics, %w", err)), nil
	}
	metricType := params.OptionalString("metric_type", worklocal.AllMetrics)
	timeframe := params.OptionalString("timeframe", worklocal.DefaultTimeframe)
	return api.NewToolCallResult(params.GetMetrics(params.Context, resourceID, metricType, timeframe), nil), nil
}
