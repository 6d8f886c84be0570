package rewire

import (
	"fmt"

	"github.com/willf/bitset"
)

// Kind classifies an index in a module's function index space.
type Kind int

const (
	// Imported functions precede all local functions and keep their index.
	Imported Kind = iota
	// Local functions are shifted past the inserted imports.
	Local
	// Replaced functions are local functions that are being converted into imports.
	Replaced
	// Invalid indices lie outside the function index space.
	Invalid
)

func (k Kind) String() string {
	switch k {
	case Imported:
		return "import"
	case Local:
		return "local"
	case Replaced:
		return "replaced"
	default:
		return "invalid"
	}
}

// An IndexSpace maps the function indices of a module to their indices after a plan has been applied. Imported
// functions occupy [0, I) and local functions occupy [I, I+L). Applying a plan of N insertions appends N imports, so
// locals move to [I+N, I+N+L).
type IndexSpace struct {
	imported uint32
	locals   uint32
	plan     Plan
	targets  *bitset.BitSet
}

// NewIndexSpace creates an index space for a module with the given number of imported and local functions.
func NewIndexSpace(imported, locals int, plan Plan) *IndexSpace {
	targets := bitset.New(uint(imported + locals))
	for _, ins := range plan {
		targets.Set(uint(ins.FuncIndex))
	}
	return &IndexSpace{
		imported: uint32(imported),
		locals:   uint32(locals),
		plan:     plan,
		targets:  targets,
	}
}

// Imported returns the number of functions imported by the original module.
func (s *IndexSpace) Imported() uint32 {
	return s.imported
}

// Locals returns the number of functions defined by the module.
func (s *IndexSpace) Locals() uint32 {
	return s.locals
}

// Inserted returns the number of imports the plan adds.
func (s *IndexSpace) Inserted() uint32 {
	return uint32(len(s.plan))
}

// Len returns the size of the original function index space.
func (s *IndexSpace) Len() int {
	return int(s.imported) + int(s.locals)
}

// Classify returns the kind of the given function index.
func (s *IndexSpace) Classify(funcidx uint32) Kind {
	switch {
	case funcidx < s.imported:
		return Imported
	case uint64(funcidx) >= uint64(s.imported)+uint64(s.locals):
		return Invalid
	case s.targets.Test(uint(funcidx)):
		return Replaced
	default:
		return Local
	}
}

// Call returns the new index of a direct call or export target. Replaced functions resolve to their new import.
func (s *IndexSpace) Call(funcidx uint32) uint32 {
	if s.Classify(funcidx) == Replaced {
		p, _ := s.plan.Position(funcidx)
		return s.imported + uint32(p)
	}
	return s.Shift(funcidx)
}

// Shift returns the new index of a reference to the function's definition. Replaced functions keep referring to
// their local body.
func (s *IndexSpace) Shift(funcidx uint32) uint32 {
	// Locals start at index I, so the first local shifts too. Only imports below I keep their index.
	if funcidx < s.imported {
		return funcidx
	}
	return funcidx + s.Inserted()
}

// check returns an error if funcidx lies outside the index space.
func (s *IndexSpace) check(funcidx uint32, where string, args ...interface{}) error {
	if s.Classify(funcidx) == Invalid {
		return &InvalidFunctionIndexError{FuncIndex: funcidx, Functions: s.Len(), Where: fmt.Sprintf(where, args...)}
	}
	return nil
}
