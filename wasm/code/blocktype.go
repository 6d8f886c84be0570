package code

// Block types are stored in an instruction's immediate. Single-byte block types carry BlockTypeSpecial; any other
// value is a type index.
const (
	BlockTypeSpecial = 0x8000000000000000
	BlockTypeMask    = 0x80000000ffffffff

	BlockTypeEmpty     = 0x40 | BlockTypeSpecial
	BlockTypeI32       = 0x7f | BlockTypeSpecial
	BlockTypeI64       = 0x7e | BlockTypeSpecial
	BlockTypeF32       = 0x7d | BlockTypeSpecial
	BlockTypeF64       = 0x7c | BlockTypeSpecial
	BlockTypeV128      = 0x7b | BlockTypeSpecial
	BlockTypeFuncref   = 0x70 | BlockTypeSpecial
	BlockTypeExternref = 0x6f | BlockTypeSpecial
)

func BlockType(typeidx uint32) uint64 {
	return uint64(typeidx)
}
