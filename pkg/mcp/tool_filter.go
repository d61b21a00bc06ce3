package mcp

import (
	"slices"

	"github.com/worklocal/worklocal-mcp-server/pkg/api"
)

type ToolFilter func(tool api.ServerTool) bool

func CompositeFilter(filters ...ToolFilter) ToolFilter {
	return func(tool api.ServerTool) bool {
		for _, f := range filters {
			if !f(tool) {
				return false
			}
		}

		return true
	}
}

// ShouldIncludeReadOnly keeps only read-only tools when readOnly is set.
func ShouldIncludeReadOnly(readOnly bool) ToolFilter {
	return func(tool api.ServerTool) bool {
		return !readOnly || tool.IsReadOnly()
	}
}

// ShouldIncludeNonDestructive drops destructive tools when disableDestructive is set.
// Read-only tools are always kept.
func ShouldIncludeNonDestructive(disableDestructive bool) ToolFilter {
	return func(tool api.ServerTool) bool {
		return !disableDestructive || tool.IsReadOnly() || !tool.IsDestructive()
	}
}

// ShouldIncludeEnabled keeps only the listed tools. An empty list keeps every tool.
func ShouldIncludeEnabled(enabledTools []string) ToolFilter {
	return func(tool api.ServerTool) bool {
		return len(enabledTools) == 0 || slices.Contains(enabledTools, tool.Tool.Name)
	}
}

func ShouldExcludeDisabled(disabledTools []string) ToolFilter {
	return func(tool api.ServerTool) bool {
		return !slices.Contains(disabledTools, tool.Tool.Name)
	}
}
