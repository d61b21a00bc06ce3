package worklocal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const (
	AllResources = "all"
	AllMetrics   = "all"
	// DefaultTimeframe is the metrics window used when none is requested.
	DefaultTimeframe = "1h"
)

// HealthCheck checks whether the WorkLocal Studio API is reachable and healthy.
func (c *Client) HealthCheck(ctx context.Context) string {
	return c.call(ctx, request{
		operation: "health_check",
		method:    http.MethodGet,
		path:      "/health",
		success:   []int{http.StatusOK},
		render: func(body []byte) (string, error) {
			return "✅ WorkLocal Studio API is healthy. Status: " + string(body), nil
		},
		failure: func(status int, _ string) string {
			return fmt.Sprintf("⚠️ API returned status code: %d", status)
		},
		action: "connecting to API",
	})
}

// ListResources lists resources of resourceType, or every resource when resourceType is "all" or empty.
func (c *Client) ListResources(ctx context.Context, resourceType string) string {
	resourceType = strings.TrimSpace(resourceType)
	if resourceType == "" {
		resourceType = AllResources
	}
	query := url.Values{}
	if resourceType != AllResources {
		query.Set("type", resourceType)
	}
	return c.call(ctx, request{
		operation: "list_resources",
		method:    http.MethodGet,
		path:      "/resources",
		query:     query,
		success:   []int{http.StatusOK},
		render: withJSON(func(v any) string {
			return renderResourceList(resourceType, v)
		}),
		failure: apiStatusFailure,
		action:  "listing resources",
	})
}

func renderResourceList(resourceType string, v any) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 **WorkLocal Resources (%s)**\n\n", resourceType))
	switch resources := v.(type) {
	case []any:
		if len(resources) == 0 {
			sb.WriteString("No resources found.\n")
		}
		for idx, item := range resources {
			resource, ok := item.(map[string]any)
			if !ok {
				sb.WriteString(fmt.Sprintf("%d. %s\n\n", idx+1, formatValue(item)))
				continue
			}
			sb.WriteString(fmt.Sprintf("%d. **%s**\n", idx+1, field(resource, "name", "Unnamed")))
			sb.WriteString(fmt.Sprintf("   - Type: %s\n", field(resource, "type", "Unknown")))
			sb.WriteString(fmt.Sprintf("   - Status: %s\n", field(resource, "status", "Unknown")))
			sb.WriteString(fmt.Sprintf("   - ID: `%s`\n\n", field(resource, "id", "N/A")))
		}
	case map[string]any:
		for _, key := range sortedKeys(resources) {
			sb.WriteString(fmt.Sprintf("- **%s**: %s\n", key, formatValue(resources[key])))
		}
	default:
		sb.WriteString(fmt.Sprintf("Raw response: %s\n", formatValue(v)))
	}
	return sb.String()
}

// GetResource returns the details of a single resource, including its metadata.
func (c *Client) GetResource(ctx context.Context, resourceID string) string {
	return c.call(ctx, request{
		operation: "get_resource",
		method:    http.MethodGet,
		path:      resourcePath(resourceID),
		success:   []int{http.StatusOK},
		render: withJSON(func(v any) string {
			return renderResourceDetails(resourceID, v)
		}),
		notFound: notFound(resourceID),
		failure:  apiStatusFailure,
		action:   "getting resource",
	})
}

func renderResourceDetails(resourceID string, v any) string {
	resource := asObject(v)
	var sb strings.Builder
	sb.WriteString("🔍 **Resource Details**\n\n")
	sb.WriteString(fmt.Sprintf("**ID**: `%s`\n", field(resource, "id", resourceID)))
	sb.WriteString(fmt.Sprintf("**Name**: %s\n", field(resource, "name", "Unnamed")))
	sb.WriteString(fmt.Sprintf("**Type**: %s\n", field(resource, "type", "Unknown")))
	sb.WriteString(fmt.Sprintf("**Status**: %s\n", field(resource, "status", "Unknown")))
	sb.WriteString(fmt.Sprintf("**Created**: %s\n", field(resource, "created_at", "Unknown")))
	sb.WriteString(fmt.Sprintf("**Updated**: %s\n\n", field(resource, "updated_at", "Unknown")))
	if metadata, ok := resource["metadata"].(map[string]any); ok {
		sb.WriteString("**Metadata**:\n")
		for _, key := range sortedKeys(metadata) {
			sb.WriteString(fmt.Sprintf("  - %s: %s\n", key, formatValue(metadata[key])))
		}
	}
	return sb.String()
}

// CreateResource creates a resource. resourceConfig is a JSON document sent as the resource configuration.
func (c *Client) CreateResource(ctx context.Context, name, resourceType, resourceConfig string) string {
	cfg, ok := parseArgument(resourceConfig)
	if !ok {
		return "❌ Invalid JSON in config parameter. Please provide valid JSON."
	}
	return c.call(ctx, request{
		operation: "create_resource",
		method:    http.MethodPost,
		path:      "/resources",
		body: map[string]any{
			"name":   name,
			"type":   resourceType,
			"config": cfg,
		},
		success: []int{http.StatusOK, http.StatusCreated},
		render: withJSON(func(v any) string {
			return fmt.Sprintf("✅ Resource created successfully!\n\n**ID**: `%s`\n**Name**: %s\n**Type**: %s",
				field(asObject(v), "id", "N/A"), name, resourceType)
		}),
		failure: statusFailure("Failed to create resource"),
		action:  "creating resource",
	})
}

// UpdateResource applies updates, a JSON document, to an existing resource.
func (c *Client) UpdateResource(ctx context.Context, resourceID, updates string) string {
	patch, ok := parseArgument(updates)
	if !ok {
		return "❌ Invalid JSON in updates parameter. Please provide valid JSON."
	}
	return c.call(ctx, request{
		operation: "update_resource",
		method:    http.MethodPatch,
		path:      resourcePath(resourceID),
		body:      patch,
		success:   []int{http.StatusOK},
		render: func([]byte) (string, error) {
			return fmt.Sprintf("✅ Resource '%s' updated successfully!", resourceID), nil
		},
		notFound: notFound(resourceID),
		failure:  statusFailure("Failed to update resource"),
		action:   "updating resource",
	})
}

// DeleteResource deletes a resource.
func (c *Client) DeleteResource(ctx context.Context, resourceID string) string {
	return c.call(ctx, request{
		operation: "delete_resource",
		method:    http.MethodDelete,
		path:      resourcePath(resourceID),
		success:   []int{http.StatusOK, http.StatusNoContent},
		render: func([]byte) (string, error) {
			return fmt.Sprintf("✅ Resource '%s' deleted successfully!", resourceID), nil
		},
		notFound: notFound(resourceID),
		failure:  statusFailure("Failed to delete resource"),
		action:   "deleting resource",
	})
}

// ExecuteAction runs action (e.g. start, stop, restart) on a resource. parameters is a JSON document.
func (c *Client) ExecuteAction(ctx context.Context, resourceID, action, parameters string) string {
	params, ok := parseArgument(parameters)
	if !ok {
		return "❌ Invalid JSON in parameters. Please provide valid JSON."
	}
	return c.call(ctx, request{
		operation: "execute_action",
		method:    http.MethodPost,
		path:      resourcePath(resourceID, "actions"),
		body: map[string]any{
			"action":     action,
			"parameters": params,
		},
		success: []int{http.StatusOK},
		render: withJSON(func(v any) string {
			return fmt.Sprintf("✅ Action '%s' executed successfully on resource '%s'\n\nResult: %s",
				action, resourceID, field(asObject(v), "message", "Success"))
		}),
		notFound: notFound(resourceID),
		failure:  statusFailure("Failed to execute action"),
		action:   "executing action",
	})
}

// GetMetrics returns metricType metrics ("all" by default) of a resource over timeframe ("1h" by default).
func (c *Client) GetMetrics(ctx context.Context, resourceID, metricType, timeframe string) string {
	if strings.TrimSpace(metricType) == "" {
		metricType = AllMetrics
	}
	if strings.TrimSpace(timeframe) == "" {
		timeframe = DefaultTimeframe
	}
	query := url.Values{}
	query.Set("type", metricType)
	query.Set("timeframe", timeframe)
	return c.call(ctx, request{
		operation: "get_metrics",
		method:    http.MethodGet,
		path:      resourcePath(resourceID, "metrics"),
		query:     query,
		success:   []int{http.StatusOK},
		render: withJSON(func(v any) string {
			return renderMetrics(resourceID, timeframe, v)
		}),
		notFound: notFound(resourceID),
		failure:  statusFailure("Failed to get metrics"),
		action:   "getting metrics",
	})
}

func renderMetrics(resourceID, timeframe string, v any) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 **Metrics for Resource '%s'**\n", resourceID))
	sb.WriteString(fmt.Sprintf("*Timeframe: %s*\n\n", timeframe))
	metrics, ok := v.(map[string]any)
	if !ok {
		sb.WriteString(fmt.Sprintf("Raw metrics: %s\n", formatValue(v)))
		return sb.String()
	}
	for _, name := range sortedKeys(metrics) {
		sb.WriteString(fmt.Sprintf("**%s**:\n", strings.ToUpper(name)))
		if data, ok := metrics[name].(map[string]any); ok {
			sb.WriteString(fmt.Sprintf("  - Current: %s\n", field(data, "current", "N/A")))
			sb.WriteString(fmt.Sprintf("  - Average: %s\n", field(data, "average", "N/A")))
			sb.WriteString(fmt.Sprintf("  - Max: %s\n", field(data, "max", "N/A")))
			sb.WriteString(fmt.Sprintf("  - Min: %s\n", field(data, "min", "N/A")))
		} else {
			sb.WriteString(fmt.Sprintf("  %s\n", formatValue(metrics[name])))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// SearchResources searches resources matching query. filters is a JSON object whose
// entries are sent as additional query parameters, an empty string means no filters.
func (c *Client) SearchResources(ctx context.Context, query, filters string) string {
	var parsed any = map[string]any{}
	ok := true
	if filters != "" {
		parsed, ok = parseArgument(filters)
	}
	filterMap, isObject := parsed.(map[string]any)
	if !ok || !isObject {
		return "❌ Invalid JSON in filters parameter. Please provide valid JSON."
	}
	params := url.Values{}
	params.Set("q", query)
	for key, value := range filterMap {
		setQueryValue(params, key, value)
	}
	return c.call(ctx, request{
		operation: "search_resources",
		method:    http.MethodGet,
		path:      "/resources/search",
		query:     params,
		success:   []int{http.StatusOK},
		render: withJSON(func(v any) string {
			return renderSearchResults(query, v)
		}),
		failure: statusFailure("Search failed"),
		action:  "searching resources",
	})
}

// setQueryValue replaces key with the filter value. Arrays expand to repeated values, nulls drop the key.
func setQueryValue(params url.Values, key string, value any) {
	params.Del(key)
	switch v := value.(type) {
	case nil:
	case []any:
		for _, item := range v {
			if item != nil {
				params.Add(key, formatValue(item))
			}
		}
	default:
		params.Set(key, formatValue(v))
	}
}

func renderSearchResults(query string, v any) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔍 **Search Results for '%s'**\n\n", query))
	results, ok := v.([]any)
	switch {
	case ok && len(results) > 0:
		sb.WriteString(fmt.Sprintf("Found %d resources:\n\n", len(results)))
		for idx, item := range results {
			resource := asObject(item)
			sb.WriteString(fmt.Sprintf("%d. **%s** (`%s`)\n", idx+1, field(resource, "name", "Unnamed"), field(resource, "id", "N/A")))
			sb.WriteString(fmt.Sprintf("   - Type: %s\n", field(resource, "type", "Unknown")))
			sb.WriteString(fmt.Sprintf("   - Status: %s\n\n", field(resource, "status", "Unknown")))
		}
	case ok:
		sb.WriteString("No resources found matching your search criteria.")
	default:
		sb.WriteString(fmt.Sprintf("Results: %s", formatValue(v)))
	}
	return sb.String()
}
