package worklocal

import (
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"k8s.io/utils/ptr"

	"github.com/worklocal/worklocal-mcp-server/pkg/api"
	"github.com/worklocal/worklocal-mcp-server/pkg/worklocal"
)

func initResources() []api.ServerTool {
	return []api.ServerTool{
		{Tool: api.Tool{
			Name:        "worklocal_list_resources",
			Description: "List WorkLocal Studio infrastructure resources, optionally restricted to a single resource type",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"resource_type": {
						Type:        "string",
						Description: "Type of resources to list (e.g. server, database, storage). Use \"all\" to list every resource",
						Default:     api.ToRawMessage(worklocal.AllResources),
					},
				},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Resources: List",
				ReadOnlyHint:    ptr.To(true),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(false),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: resourcesList},
		{Tool: api.Tool{
			Name:        "worklocal_get_resource",
			Description: "Get the details of a WorkLocal Studio resource by its ID",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"resource_id": {
						Type:        "string",
						Description: "ID of the resource",
					},
				},
				Required: []string{"resource_id"},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Resources: Get",
				ReadOnlyHint:    ptr.To(true),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(false),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: resourcesGet},
		{Tool: api.Tool{
			Name:        "worklocal_create_resource",
			Description: "Create a new WorkLocal Studio resource",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"name": {
						Type:        "string",
						Description: "Name of the new resource",
					},
					"resource_type": {
						Type:        "string",
						Description: "Type of the new resource (e.g. server, database, storage)",
					},
					"config": {
						Type:        "string",
						Description: "Resource configuration as a JSON document (Optional, defaults to {})",
						Default:     api.ToRawMessage("{}"),
					},
				},
				Required: []string{"name", "resource_type"},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Resources: Create",
				ReadOnlyHint:    ptr.To(false),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(false),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: resourcesCreate},
		{Tool: api.Tool{
			Name:        "worklocal_update_resource",
			Description: "Update an existing WorkLocal Studio resource with a partial JSON document",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"resource_id": {
						Type:        "string",
						Description: "ID of the resource to update",
					},
					"updates": {
						Type:        "string",
						Description: "Fields to update as a JSON document, e.g. {\"size\": \"large\"}",
					},
				},
				Required: []string{"resource_id", "updates"},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Resources: Update",
				ReadOnlyHint:    ptr.To(false),
				DestructiveHint: ptr.To(true),
				IdempotentHint:  ptr.To(true),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: resourcesUpdate},
		{Tool: api.Tool{
			Name:        "worklocal_delete_resource",
			Description: "Delete a WorkLocal Studio resource by its ID",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"resource_id": {
						Type:        "string",
						Description: "ID of the resource to delete",
					},
				},
				Required: []string{"resource_id"},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Resources: Delete",
				ReadOnlyHint:    ptr.To(false),
				DestructiveHint: ptr.To(true),
				IdempotentHint:  ptr.To(true),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: resourcesDelete},
		{Tool: api.Tool{
			Name:        "worklocal_search_resources",
			Description: "Search WorkLocal Studio resources by free text, optionally narrowed with filters",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"query": {
						Type:        "string",
						Description: "Search query",
					},
					"filters": {
						Type:        "string",
						Description: "Additional filters as a JSON object, e.g. {\"type\": \"server\", \"status\": \"running\"} (Optional)",
					},
				},
				Required: []string{"query"},
			},
			Annotations: api.ToolAnnotations{
				Title:           "Resources: Search",
				ReadOnlyHint:    ptr.To(true),
				DestructiveHint: ptr.To(false),
				IdempotentHint:  ptr.To(false),
				OpenWorldHint:   ptr.To(true),
			},
		}, Handler: resourcesSearch},
	}
}

func resourcesList(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	resourceType := params.OptionalString("resource_type", worklocal.AllResources)
	return api.NewToolCallResult(params.ListResources(params.Context, resourceType), nil), nil
}

func resourcesGet(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	resourceID, err := params.RequiredString("resource_id")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to get resource, %w", err)), nil
	}
	return api.NewToolCallResult(params.GetResource(params.Context, resourceID), nil), nil
}

func resourcesCreate(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	name, err := params.RequiredString("name")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to create resource, %w", err)), nil
	}
	resourceType, err := params.RequiredString("resource_type")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to create resource, %w", err)), nil
	}
	resourceConfig, err := jsonArgument(params, "config", "{}")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to create resource, %w", err)), nil
	}
	return api.NewToolCallResult(params.CreateResource(params.Context, name, resourceType, resourceConfig), nil), nil
}

func resourcesUpdate(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	resourceID, err := params.RequiredString("resource_id")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to update resource, %w", err)), nil
	}
	if _, ok := params.GetArguments()["updates"]; !ok {
		return api.NewToolCallResult("", errors.New("failed to update resource, missing argument updates")), nil
	}
	updates, err := jsonArgument(params, "updates", "null")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to update resource, %w", err)), nil
	}
	return api.NewToolCallResult(params.UpdateResource(params.Context, resourceID, updates), nil), nil
}

func resourcesDelete(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	resourceID, err := params.RequiredString("resource_id")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to delete resource, %w", err)), nil
	}
	return api.NewToolCallResult(params.DeleteResource(params.Context, resourceID), nil), nil
}

func resourcesSearch(params api.ToolHandlerParams) (*api.ToolCallResult, error) {
	query, err := params.RequiredString("query")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to search resources, %w", err)), nil
	}
	filters, err := jsonArgument(params, "filters", "")
	if err != nil {
		return api.NewToolCallResult("", fmt.Errorf("failed to search resources, %w", err)), nil
	}
	return api.NewToolCallResult(params.SearchResources(params.Context, query, filters), nil), nil
}
