package wasm

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pgavlin/wext/wasm/leb128"
)

// Opcodes that may appear in a constant expression.
const (
	opEnd       = 0x0b
	opGlobalGet = 0x23
	opI32Const  = 0x41
	opI64Const  = 0x42
	opF32Const  = 0x43
	opF64Const  = 0x44
	opI32Add    = 0x6a
	opI32Sub    = 0x6b
	opI32Mul    = 0x6c
	opI64Add    = 0x7c
	opI64Sub    = 0x7d
	opI64Mul    = 0x7e
	opRefNull   = 0xd0
	opRefFunc   = 0xd2
)

// InvalidInitExprOpError is returned for opcodes that are not allowed in an initializer expression.
type InvalidInitExprOpError byte

func (e InvalidInitExprOpError) Error() string {
	return fmt.Sprintf("wasm: invalid opcode in init expression: 0x%02x", byte(e))
}

// readInitExpr reads a constant expression up to and including its end opcode
// and returns its raw encoding.
func readInitExpr(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	tee := io.TeeReader(r, &buf)

	for {
		op, err := readByte(tee)
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return nil, err
		}

		switch op {
		case opEnd:
			return buf.Bytes(), nil
		case opI32Const:
			_, err = leb128.ReadVarint32(tee)
		case opI64Const:
			_, err = leb128.ReadVarint64(tee)
		case opF32Const:
			_, err = readBytes(tee, 4)
		case opF64Const:
			_, err = readBytes(tee, 8)
		case opGlobalGet, opRefFunc:
			_, err = leb128.ReadVarUint32(tee)
		case opRefNull:
			_, err = readByte(tee)
		case opI32Add, opI32Sub, opI32Mul, opI64Add, opI64Sub, opI64Mul:
			// no immediates
		default:
			return nil, InvalidInitExprOpError(op)
		}
		if err != nil {
			return nil, err
		}
	}
}
