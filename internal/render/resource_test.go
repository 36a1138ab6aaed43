package render

import (
	"strings"
	"testing"

	"github.com/xyproto/dismod/internal/container/ne"
	"github.com/xyproto/dismod/internal/container/pe"
)

func TestNEResourcesPrefersNameOverNumericID(t *testing.T) {
	tab := &ne.ResourceTable{Types: []ne.ResourceType{
		{TypeID: 0x8003, Resources: []ne.Resource{{ID: 0x8007, Offset: 0x10, Length: 4}}},
		{TypeName: "RT_ICON", Resources: []ne.Resource{{Name: "MAINICON"}}},
	}}
	var buf strings.Builder
	NEResources(&buf, tab)
	out := buf.String()
	if !strings.Contains(out, "0x8003") {
		t.Errorf("numeric type id should render as hex:\n%s", out)
	}
	if !strings.Contains(out, "RT_ICON") || !strings.Contains(out, "MAINICON") {
		t.Errorf("named type/resource should render by name, got:\n%s", out)
	}
}

func TestNEResourcesNilTableIsNoOp(t *testing.T) {
	var buf strings.Builder
	NEResources(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("NEResources(nil) should write nothing, got %q", buf.String())
	}
}

func TestPEResourcesIndentsNestedDirectories(t *testing.T) {
	root := &pe.ResourceNode{Children: []*pe.ResourceNode{
		{
			ID: 3,
			Children: []*pe.ResourceNode{
				{ID: 1, DataRVA: 0x1000, DataSize: 0x20},
			},
		},
	}}
	var buf strings.Builder
	PEResources(&buf, root)
	out := buf.String()
	if !strings.Contains(out, "#3/") {
		t.Errorf("output missing directory node label:\n%s", out)
	}
	if !strings.Contains(out, "  #1  rva=0x1000 size=0x20") {
		t.Errorf("output missing indented leaf node:\n%s", out)
	}
}

func TestPEResourcesNilRootIsNoOp(t *testing.T) {
	var buf strings.Builder
	PEResources(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("PEResources(nil) should write nothing, got %q", buf.String())
	}
}
