package rewire

import (
	"github.com/pgavlin/wext/wasm"
)

// patchExports returns a copy of the given export entries with function indices updated for the new index space.
// Exports of replaced functions re-export the new import under the same name.
func patchExports(entries []wasm.ExportEntry, space *IndexSpace) (patched []wasm.ExportEntry, redirected, shifted int, err error) {
	patched = make([]wasm.ExportEntry, len(entries))
	for i, e := range entries {
		patched[i] = e
		if e.Kind != wasm.ExternalFunction {
			continue
		}

		switch space.Classify(e.Index) {
		case Imported:
			continue
		case Replaced:
			redirected++
		case Local:
			shifted++
		default:
			return nil, 0, 0, space.check(e.Index, "export %s", e.FieldStr)
		}
		patched[i].Index = space.Call(e.Index)
	}
	return patched, redirected, shifted, nil
}
