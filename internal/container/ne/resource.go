package ne

import "github.com/xyproto/dismod/internal/image"

// Resource is one entry of a resource type's name table (NAMEINFO):
// a data blob located in one of the module's segments, named either
// by a numeric or an offset-into-the-resource-table string id.
type Resource struct {
	Offset     int // byte offset within the image, already shifted by AlignShift
	Length     int
	Flags      uint16
	ID         uint16 // high bit set => numeric id in the low 15 bits
	Name       string // resolved string id, if ID's high bit is clear
	Handle     uint16
	Usage      uint16
}

// ResourceType groups every resource of one TYPEINFO entry.
type ResourceType struct {
	TypeID    uint16 // high bit set => numeric type in the low 15 bits
	TypeName  string
	Resources []Resource
}

// ResourceTable is the full NE resource directory: an alignment shift
// followed by a sequence of TYPEINFO blocks, each followed by its
// NAMEINFO entries, terminated by a zero TypeID.
type ResourceTable struct {
	AlignShift uint16
	Types      []ResourceType
}

// parseResourceTable walks the RSRC_TYPEINFO chain starting at base
// (the image offset named by the header's ResourceTabOffset, already
// relative to the NE header).
func parseResourceTable(im *image.Image, base int) (*ResourceTable, error) {
	shift, err := im.U16(base)
	if err != nil {
		return nil, err
	}
	rt := &ResourceTable{AlignShift: shift}
	cursor := base + 2
	for {
		typeID, err := im.U16(cursor)
		if err != nil || typeID == 0 {
			break
		}
		count, err := im.U16(cursor + 2)
		if err != nil {
			break
		}
		cursor += 8 // type id, resource count, reserved dword
		rtype := ResourceType{TypeID: typeID}
		if typeID&0x8000 == 0 {
			rtype.TypeName, _ = stringTableName(im, base, typeID)
		}
		for i := 0; i < int(count); i++ {
			off, _ := im.U16(cursor)
			length, _ := im.U16(cursor + 2)
			flags, _ := im.U16(cursor + 4)
			id, _ := im.U16(cursor + 6)
			handle, _ := im.U16(cursor + 8)
			usage, _ := im.U16(cursor + 10)
			cursor += 12

			r := Resource{
				Offset: int(off) << shift,
				Length: int(length) << shift,
				Flags:  flags, ID: id, Handle: handle, Usage: usage,
			}
			if id&0x8000 == 0 {
				r.Name, _ = stringTableName(im, base, id)
			}
			rtype.Resources = append(rtype.Resources, r)
		}
		rt.Types = append(rt.Types, rtype)
	}
	return rt, nil
}

// stringTableName reads the Pascal string an offset-into-the-resource-
// table id points to; the string table itself sits just past the
// terminating zero TypeID of the TYPEINFO chain, so callers locate it
// by offset relative to base rather than a fixed header field.
func stringTableName(im *image.Image, base int, off uint16) (string, error) {
	s, _, err := im.PascalString(base + int(off))
	return s, err
}
