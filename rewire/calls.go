package rewire

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/pgavlin/wext/wasm"
	"github.com/pgavlin/wext/wasm/code"
)

type callStats struct {
	redirected int
	shifted    int
	refs       int

	// replacedRefs holds the shifted indices of replaced functions used as ref.func operands.
	replacedRefs []uint32
}

func (s *callStats) add(o callStats) {
	s.redirected += o.redirected
	s.shifted += o.shifted
	s.refs += o.refs
	s.replacedRefs = append(s.replacedRefs, o.replacedRefs...)
}

func (s *callStats) changed() bool {
	return s.redirected != 0 || s.shifted != 0 || s.refs != 0
}

// rewriteBody rewrites the function indices used by a decoded instruction sequence in place. Direct calls to
// replaced functions are redirected to their imports and all other calls to local functions are shifted. ref.func
// operands only ever shift.
func rewriteBody(body []code.Instruction, space *IndexSpace, stats *callStats) error {
	for i := range body {
		instr := &body[i]
		switch instr.Opcode {
		case code.OpBlock, code.OpLoop, code.OpIf:
			if err := rewriteBody(instr.Body, space, stats); err != nil {
				return err
			}
		case code.OpCall, code.OpReturnCall:
			funcidx := instr.Funcidx()
			switch space.Classify(funcidx) {
			case Imported:
				continue
			case Replaced:
				stats.redirected++
			case Local:
				stats.shifted++
			default:
				return space.check(funcidx, "%v", instr)
			}
			instr.SetFuncidx(space.Call(funcidx))
		case code.OpRefFunc:
			funcidx := instr.Funcidx()
			switch space.Classify(funcidx) {
			case Imported:
				continue
			case Invalid:
				return space.check(funcidx, "%v", instr)
			case Replaced:
				stats.replacedRefs = append(stats.replacedRefs, space.Shift(funcidx))
			}
			instr.SetFuncidx(space.Shift(funcidx))
			stats.refs++
		}
	}
	return nil
}

// rewriteFunction decodes, rewrites, and re-encodes a single function body. Bodies that do not change keep their
// original encoding.
func rewriteFunction(body wasm.FunctionBody, space *IndexSpace) (wasm.FunctionBody, callStats, error) {
	var stats callStats

	instrs, err := code.Decode(body.Code)
	if err != nil {
		return body, stats, err
	}
	if err := rewriteBody(instrs, space, &stats); err != nil {
		return body, stats, err
	}
	if !stats.changed() {
		return body, stats, nil
	}

	var buf bytes.Buffer
	buf.Grow(len(body.Code) + stats.redirected + stats.shifted + stats.refs)
	if err := code.Encode(&buf, instrs); err != nil {
		return body, stats, err
	}
	return wasm.FunctionBody{Locals: body.Locals, Code: buf.Bytes()}, stats, nil
}

// rewriteCalls rewrites every function body in bodies and returns the results in a new slice. The input bodies are
// not modified. If workers is greater than one, up to workers bodies are rewritten concurrently.
func rewriteCalls(bodies []wasm.FunctionBody, space *IndexSpace, workers int) ([]wasm.FunctionBody, callStats, int, error) {
	rewritten := make([]wasm.FunctionBody, len(bodies))
	stats := make([]callStats, len(bodies))

	rewrite := func(i int) error {
		body, s, err := rewriteFunction(bodies[i], space)
		if err != nil {
			return fmt.Errorf("function %d: %w", space.Imported()+uint32(i), err)
		}
		rewritten[i], stats[i] = body, s
		return nil
	}

	if workers <= 1 {
		for i := range bodies {
			if err := rewrite(i); err != nil {
				return nil, callStats{}, 0, err
			}
		}
	} else {
		g, ctx := errgroup.WithContext(context.Background())
		g.SetLimit(workers)
		for i := range bodies {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				return rewrite(i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, callStats{}, 0, err
		}
	}

	var total callStats
	changed := 0
	for _, s := range stats {
		if s.changed() {
			changed++
		}
		total.add(s)
	}
	return rewritten, total, changed, nil
}
