package pe

import "github.com/xyproto/dismod/internal/image"

// ResourceNode is one level of the PE resource tree
// (IMAGE_RESOURCE_DIRECTORY + its entries): either a subdirectory
// (Children non-nil) or a leaf pointing at the resource's raw bytes.
type ResourceNode struct {
	ID       uint32 // numeric id, or 0 when Name is set
	Name     string // Unicode name, if the entry's high bit was set
	Children []*ResourceNode
	DataRVA  uint32 // leaf only: RVA of the IMAGE_RESOURCE_DATA_ENTRY's data
	DataSize uint32
}

// parseResourceDirectory walks one IMAGE_RESOURCE_DIRECTORY at
// dirOff (an absolute file offset) recursively; rvaBase is the
// file offset of the resource section's start, since every RVA inside
// the tree (including subdirectory offsets) is relative to it.
func parseResourceDirectory(im *image.Image, dirOff, rvaBase int) (*ResourceNode, error) {
	named, _ := im.U16(dirOff + 12)
	numbered, _ := im.U16(dirOff + 14)
	total := int(named) + int(numbered)

	root := &ResourceNode{}
	for i := 0; i < total; i++ {
		entryOff := dirOff + 16 + i*8
		nameField, err := im.U32(entryOff)
		if err != nil {
			break
		}
		offsetField, err := im.U32(entryOff + 4)
		if err != nil {
			break
		}

		child := &ResourceNode{}
		if nameField&0x80000000 != 0 {
			nameOff := rvaBase + int(nameField&0x7FFFFFFF)
			child.Name = readUnicodeString(im, nameOff)
		} else {
			child.ID = nameField
		}

		if offsetField&0x80000000 != 0 {
			sub, err := parseResourceDirectory(im, rvaBase+int(offsetField&0x7FFFFFFF), rvaBase)
			if err == nil {
				child.Children = sub.Children
			}
		} else {
			leafOff := rvaBase + int(offsetField)
			dataRVA, _ := im.U32(leafOff)
			dataSize, _ := im.U32(leafOff + 4)
			child.DataRVA, child.DataSize = dataRVA, dataSize
		}
		root.Children = append(root.Children, child)
	}
	return root, nil
}

// readUnicodeString reads a length-prefixed (u16 count of UTF-16 code
// units) resource name string, collapsing to the low byte of each
// unit the way a pure-ASCII resource name round-trips.
func readUnicodeString(im *image.Image, off int) string {
	n, err := im.U16(off)
	if err != nil {
		return ""
	}
	b := make([]byte, 0, n)
	for i := 0; i < int(n); i++ {
		u, err := im.U16(off + 2 + i*2)
		if err != nil {
			break
		}
		b = append(b, byte(u))
	}
	return string(b)
}
