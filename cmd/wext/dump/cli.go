package dump

import (
	"github.com/spf13/cobra"

	"github.com/pgavlin/wext/load"
	"github.com/pgavlin/wext/wasm"
)

// functionNames returns the debug name of each function. Imports without a debug name are named after their
// field.
func functionNames(m *wasm.Module) map[uint32]string {
	names := map[uint32]string{}
	if section, err := m.Names(); err == nil {
		if fn := section.Functions(); fn != nil {
			for _, n := range fn.Names {
				names[n.Index] = n.Name
			}
		}
	}
	for funcidx, imp := range m.FunctionImports() {
		if _, ok := names[uint32(funcidx)]; !ok {
			names[uint32(funcidx)] = imp.FieldName
		}
	}
	return names
}

func Command() *cobra.Command {
	var targets []string

	command := &cobra.Command{
		Use:   "dump [path to module]",
		Short: "Dump the function index space of a module",
		Long:  "Dump the function index space of a WebAssembly module in CSV format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := load.LoadFile(args[0])
			if err != nil {
				return err
			}
			return dumpFunctions(cmd.OutOrStdout(), m, functionNames(m), targets)
		},
	}

	command.Flags().StringSliceVarP(&targets, "export", "e", nil, "mark the functions behind these exports as replaced")

	return command
}
