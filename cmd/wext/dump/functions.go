package dump

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/pgavlin/wext/rewire"
	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

type row struct {
	Function         string `csv:"function"`
	Funcidx          int    `csv:"funcidx"`
	Kind             string `csv:"kind"`
	Module           string `csv:"module"`
	Typeidx          uint32 `csv:"typeidx"`
	In               int    `csv:"in"`
	Out              int    `csv:"out"`
	Exports          string `csv:"exports"`
	InstructionCount int    `csv:"instruction count"`
	MaxNesting       int    `csv:"max nesting"`
	Call             int    `csv:"call"`
	CallIndirect     int    `csv:"call_indirect"`
	ReturnCall       int    `csv:"return_call"`
	RefFunc          int    `csv:"ref.func"`
	CallSites        int    `csv:"call sites"`
}

// bodyStats counts the instructions of a decoded body.
func bodyStats(r *row, body []code.Instruction, depth int) {
	if depth > r.MaxNesting {
		r.MaxNesting = depth
	}
	for i := range body {
		instr := &body[i]
		r.InstructionCount++

		switch instr.Opcode {
		case code.OpBlock, code.OpLoop, code.OpIf:
			bodyStats(r, instr.Body, depth+1)
		case code.OpCall:
			r.Call++
		case code.OpCallIndirect, code.OpReturnCallIndirect:
			r.CallIndirect++
		case code.OpReturnCall:
			r.ReturnCall++
		case code.OpRefFunc:
			r.RefFunc++
		}
	}
}

func dumpFunctions(w io.Writer, m *wasm.Module, names map[uint32]string, targets []string) error {
	plan, err := rewire.Locate(m, targets)
	if err != nil {
		return err
	}
	counts, err := rewire.CountCalls(m)
	if err != nil {
		return err
	}

	imported := m.NumImportedFunctions()
	locals := m.NumFunctions() - imported
	space := rewire.NewIndexSpace(imported, locals, plan)

	exports := map[uint32][]string{}
	if m.Export != nil {
		for _, e := range m.Export.Entries {
			if e.Kind == wasm.ExternalFunction {
				exports[e.Index] = append(exports[e.Index], e.FieldStr)
			}
		}
	}

	csvWriter := csv.NewWriter(w)
	encoder := csvutil.NewEncoder(csvWriter)
	if err := encoder.EncodeHeader(row{}); err != nil {
		return err
	}

	imports := m.FunctionImports()
	for funcidx := 0; funcidx < m.NumFunctions(); funcidx++ {
		r := row{
			Function:  names[uint32(funcidx)],
			Funcidx:   funcidx,
			Kind:      space.Classify(uint32(funcidx)).String(),
			Exports:   strings.Join(exports[uint32(funcidx)], " "),
			CallSites: counts[funcidx],
		}
		if typeidx, ok := m.FunctionType(uint32(funcidx)); ok {
			r.Typeidx = typeidx
		}
		if sig, ok := m.FunctionSignature(uint32(funcidx)); ok {
			r.In, r.Out = len(sig.ParamTypes), len(sig.ReturnTypes)
		}

		if funcidx < imported {
			r.Module = imports[funcidx].ModuleName
		} else if m.Code != nil && funcidx-imported < len(m.Code.Bodies) {
			body, err := code.Decode(m.Code.Bodies[funcidx-imported].Code)
			if err != nil {
				return fmt.Errorf("function %d: %w", funcidx, err)
			}
			bodyStats(&r, body, 0)
		}

		if err := encoder.Encode(r); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}
