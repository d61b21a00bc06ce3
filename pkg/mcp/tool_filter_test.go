package mcp

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"k8s.io/utils/ptr"

	"github.com/worklocal/worklocal-mcp-server/pkg/api"
)

type ToolFilterUnitSuite struct {
	suite.Suite
	readOnly    api.ServerTool
	additive    api.ServerTool
	destructive api.ServerTool
}

func (s *ToolFilterUnitSuite) SetupTest() {
	s.readOnly = api.ServerTool{Tool: api.Tool{Name: "read", Annotations: api.ToolAnnotations{ReadOnlyHint: ptr.To(true)}}}
	s.additive = api.ServerTool{Tool: api.Tool{Name: "create", Annotations: api.ToolAnnotations{ReadOnlyHint: ptr.To(false), DestructiveHint: ptr.To(false)}}}
	s.destructive = api.ServerTool{Tool: api.Tool{Name: "delete", Annotations: api.ToolAnnotations{DestructiveHint: ptr.To(true)}}}
}

func (s *ToolFilterUnitSuite) TestShouldIncludeReadOnly() {
	s.Run("disabled keeps every tool", func() {
		filter := ShouldIncludeReadOnly(false)
		s.True(filter(s.readOnly))
		s.True(filter(s.additive))
		s.True(filter(s.destructive))
	})
	s.Run("enabled keeps only read-only tools", func() {
		filter := ShouldIncludeReadOnly(true)
		s.True(filter(s.readOnly))
		s.False(filter(s.additive))
		s.False(filter(s.destructive))
	})
}

func (s *ToolFilterUnitSuite) TestShouldIncludeNonDestructive() {
	filter := ShouldIncludeNonDestructive(true)
	s.True(filter(s.readOnly))
	s.True(filter(s.additive))
	s.False(filter(s.destructive))
	s.True(ShouldIncludeNonDestructive(false)(s.destructive))
}

func (s *ToolFilterUnitSuite) TestEnabledAndDisabled() {
	s.True(ShouldIncludeEnabled(nil)(s.destructive), "empty list enables everything")
	s.True(ShouldIncludeEnabled([]string{"delete"})(s.destructive))
	s.False(ShouldIncludeEnabled([]string{"read"})(s.destructive))
	s.False(ShouldExcludeDisabled([]string{"delete"})(s.destructive))
	s.True(ShouldExcludeDisabled([]string{"read"})(s.destructive))
}

func (s *ToolFilterUnitSuite) TestCompositeFilter() {
	s.Run("no filters accepts", func() {
		s.True(CompositeFilter()(s.destructive))
	})
	s.Run("all filters must accept", func() {
		filter := CompositeFilter(ShouldIncludeNonDestructive(true), ShouldExcludeDisabled([]string{"create"}))
		s.True(filter(s.readOnly))
		s.False(filter(s.additive))
		s.False(filter(s.destructive))
	})
}

func TestToolFilterUnit(t *testing.T) {
	suite.Run(t, new(ToolFilterUnitSuite))
}
