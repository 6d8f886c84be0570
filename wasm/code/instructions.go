package code

func Nop() Instruction {
	return Instruction{Opcode: OpNop}
}

// withEnd returns body terminated by an end instruction.
func withEnd(body []Instruction) []Instruction {
	if len(body) != 0 && body[len(body)-1].Opcode == OpEnd {
		return body
	}
	return append(append([]Instruction(nil), body...), End())
}

// Block returns a block with the given type that owns body. An end instruction is appended to body if it is missing.
func Block(blockType uint64, body ...Instruction) Instruction {
	return Instruction{Opcode: OpBlock, Immediate: blockType, Body: withEnd(body)}
}

// Loop returns a loop with the given type that owns body. An end instruction is appended to body if it is missing.
func Loop(blockType uint64, body ...Instruction) Instruction {
	return Instruction{Opcode: OpLoop, Immediate: blockType, Body: withEnd(body)}
}

// If returns an if with the given type and arms. The else arm is omitted if it is empty.
func If(blockType uint64, then []Instruction, els ...Instruction) Instruction {
	body := append([]Instruction(nil), then...)
	if len(els) != 0 {
		body = append(body, Else())
		body = append(body, els...)
	}
	return Instruction{Opcode: OpIf, Immediate: blockType, Body: withEnd(body)}
}

func Else() Instruction {
	return Instruction{Opcode: OpElse}
}

func End() Instruction {
	return Instruction{Opcode: OpEnd}
}

func Br(labelidx int) Instruction {
	return Instruction{Opcode: OpBr, Immediate: uint64(labelidx)}
}

func BrTable(labelidx int, labelidxN ...int) Instruction {
	labels := make([]int, len(labelidxN))
	if len(labelidxN) > 0 {
		labels[0], labelidx = labelidx, labelidxN[len(labelidxN)-1]
		copy(labels[1:], labelidxN[:len(labelidxN)-1])
	}

	return Instruction{Opcode: OpBrTable, Immediate: uint64(labelidx), Labels: labels}
}

func Call(funcidx uint32) Instruction {
	return Instruction{Opcode: OpCall, Immediate: uint64(funcidx)}
}

func CallIndirect(typeidx, tableidx uint32) Instruction {
	return Instruction{Opcode: OpCallIndirect, Immediate: indirect(typeidx, tableidx)}
}

func ReturnCall(funcidx uint32) Instruction {
	return Instruction{Opcode: OpReturnCall, Immediate: uint64(funcidx)}
}

func Drop() Instruction {
	return Instruction{Opcode: OpDrop}
}

func LocalGet(localidx uint32) Instruction {
	return Instruction{Opcode: OpLocalGet, Immediate: uint64(localidx)}
}

func I32Load(offset, align uint32) Instruction {
	return Instruction{Opcode: OpI32Load, Immediate: memarg(offset, align)}
}

func I32Const(v int32) Instruction {
	return Instruction{Opcode: OpI32Const, Immediate: uint64(v)}
}

func I32Mul() Instruction {
	return Instruction{Opcode: OpI32Mul}
}

func RefNull(refType byte) Instruction {
	return Instruction{Opcode: OpRefNull, Immediate: uint64(refType)}
}

func RefFunc(funcidx uint32) Instruction {
	return Instruction{Opcode: OpRefFunc, Immediate: uint64(funcidx)}
}

func I32TruncSatF32S() Instruction {
	return Instruction{Opcode: OpPrefix, Immediate: OpI32TruncSatF32S}
}

// MemoryCopy copies between regions of memory 0.
func MemoryCopy() Instruction {
	return Instruction{Opcode: OpPrefix, Immediate: OpMemoryCopy, Extra: []byte{0x00, 0x00}}
}

