package plan

import (
	"encoding/csv"
	"errors"
	"io"

	"github.com/jszwec/csvutil"
	"github.com/spf13/cobra"

	"github.com/pgavlin/wext/load"
	"github.com/pgavlin/wext/rewire"
	"github.com/pgavlin/wext/wasm"
)

type row struct {
	Position  int    `csv:"position"`
	Name      string `csv:"name"`
	FuncIndex uint32 `csv:"funcidx"`
	TypeIndex uint32 `csv:"typeidx"`
	Signature string `csv:"signature"`
	Module    string `csv:"module"`
	Import    int    `csv:"import"`
	CallSites int    `csv:"call sites"`
}

// WritePlan writes the plan for converting the given exports into imports from host to w in CSV format.
func WritePlan(w io.Writer, m *wasm.Module, targets []string, host string) error {
	plan, err := rewire.Locate(m, targets)
	if err != nil {
		return err
	}
	counts, err := rewire.CountCalls(m)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(w)
	encoder := csvutil.NewEncoder(csvWriter)
	if err := encoder.EncodeHeader(row{}); err != nil {
		return err
	}

	imported := m.NumImportedFunctions()
	for p, ins := range plan {
		r := row{
			Position:  p,
			Name:      ins.Name,
			FuncIndex: ins.FuncIndex,
			TypeIndex: ins.TypeIndex,
			Module:    host,
			Import:    imported + p,
			CallSites: counts[ins.FuncIndex],
		}
		if sig, ok := m.FunctionSignature(ins.FuncIndex); ok {
			r.Signature = sig.String()
		}
		if err := encoder.Encode(r); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func Command() *cobra.Command {
	var targets []string
	var host string

	command := &cobra.Command{
		Use:   "plan [path to module]",
		Short: "Print the rewrite plan for a module",
		Long:  "Print the imports that converting the selected exports would add, in CSV format",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one argument")
			}
			mod, err := load.LoadFile(args[0])
			if err != nil {
				return err
			}
			if host == "" {
				host = rewire.DefaultHostModule
			}
			return WritePlan(cmd.OutOrStdout(), mod, targets, host)
		},
	}

	command.Flags().StringSliceVarP(&targets, "export", "e", rewire.DefaultTargets(), "exports to convert into imports, in import order")
	command.Flags().StringVarP(&host, "module", "m", rewire.DefaultHostModule, "module name of the new imports")

	return command
}
