package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/xyproto/dismod/internal/container/ne"
	"github.com/xyproto/dismod/internal/container/pe"
)

// NEResources prints the TYPEINFO/NAMEINFO resource tree.
func NEResources(w io.Writer, tab *ne.ResourceTable) {
	if tab == nil {
		return
	}
	t := newTable(w, []string{"type", "id/name", "offset", "length", "flags"})
	for _, rt := range tab.Types {
		label := fmt.Sprintf("0x%x", rt.TypeID)
		if rt.TypeName != "" {
			label = rt.TypeName
		}
		for _, r := range rt.Resources {
			resLabel := fmt.Sprintf("0x%x", r.ID)
			if r.Name != "" {
				resLabel = r.Name
			}
			t.Append([]string{
				label,
				resLabel,
				fmt.Sprintf("0x%x", r.Offset),
				fmt.Sprintf("%d", r.Length),
				fmt.Sprintf("0x%x", r.Flags),
			})
		}
	}
	t.Render()
}

// PEResources prints the resource directory tree as indented lines,
// since it is unbounded in depth and a flat table loses that shape.
func PEResources(w io.Writer, root *pe.ResourceNode) {
	if root == nil {
		return
	}
	for _, child := range root.Children {
		printPEResourceNode(w, child, 0)
	}
}

func printPEResourceNode(w io.Writer, n *pe.ResourceNode, depth int) {
	indent := strings.Repeat("  ", depth)
	label := n.Name
	if label == "" {
		label = fmt.Sprintf("#%d", n.ID)
	}
	if n.Children != nil {
		fmt.Fprintf(w, "%s%s/\n", indent, label)
		for _, child := range n.Children {
			printPEResourceNode(w, child, depth+1)
		}
		return
	}
	fmt.Fprintf(w, "%s%s  rva=0x%x size=0x%x\n", indent, label, n.DataRVA, n.DataSize)
}
