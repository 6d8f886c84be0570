package code

// immediateKind describes how the immediates of an instruction are encoded.
type immediateKind uint8

const (
	immNone       immediateKind = iota
	immBlockType                // block type, followed by a nested sequence
	immIndex                    // a single u32 index
	immLabels                   // label vector followed by the default label
	immIndirect                 // type index and table index
	immValueTypes               // vector of value types (typed select)
	immHeapType                 // single-byte reference type
	immMemarg                   // alignment and offset
	immI32
	immI64
	immF32
	immF64
	immPrefixed // u32 sub-opcode followed by sub-opcode specific immediates
)

var immediateKinds [256]immediateKind

func init() {
	set := func(kind immediateKind, ops ...byte) {
		for _, op := range ops {
			immediateKinds[op] = kind
		}
	}

	set(immBlockType, OpBlock, OpLoop, OpIf)
	set(immIndex, OpBr, OpBrIf, OpCall, OpReturnCall, OpRefFunc, OpLocalGet, OpLocalSet, OpLocalTee, OpGlobalGet,
		OpGlobalSet, OpTableGet, OpTableSet, OpMemorySize, OpMemoryGrow)
	set(immLabels, OpBrTable)
	set(immIndirect, OpCallIndirect, OpReturnCallIndirect)
	set(immValueTypes, OpSelectT)
	set(immHeapType, OpRefNull)
	for op := OpI32Load; op <= OpI64Store32; op++ {
		immediateKinds[op] = immMemarg
	}
	set(immI32, OpI32Const)
	set(immI64, OpI64Const)
	set(immF32, OpF32Const)
	set(immF64, OpF64Const)
	set(immPrefixed, OpPrefix, OpSIMDPrefix, OpAtomicPrefix)
}

func immediateOf(opcode byte) immediateKind {
	return immediateKinds[opcode]
}
