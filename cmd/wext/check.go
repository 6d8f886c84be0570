package main

import (
	"context"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/pgavlin/wext/rewire"
)

// checkModule compiles the encoded module with wazero. Compilation validates the module without instantiating it, so
// the new imports need not be satisfied.
func checkModule(ctx context.Context, data []byte) error {
	r := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer r.Close(ctx)

	compiled, err := r.CompileModule(ctx, data)
	if err != nil {
		return err
	}
	defer compiled.Close(ctx)

	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		rewire.Logger().Debug("import", zap.String("module", module), zap.String("name", name), zap.String("type", def.DebugName()))
	}
	return nil
}
