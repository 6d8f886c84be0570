package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/pgavlin/wext/load"
	"github.com/pgavlin/wext/rewire"
	"github.com/pgavlin/wext/wasm/validate"
)

type rewriteOptions struct {
	targets  []string
	host     string
	workers  int
	validate bool
	check    bool
}

func runRewrite(ctx context.Context, stderr io.Writer, input, output string, options rewriteOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	m, err := load.LoadFile(input)
	if err != nil {
		return err
	}

	config := rewire.Config{Targets: options.targets, HostModule: options.host}
	result, err := rewire.Rewrite(m, config, rewire.Workers(options.workers))
	if err != nil {
		return fmt.Errorf("rewriting %s: %w", input, err)
	}

	if options.validate {
		if err := validate.ValidateModule(m, true); err != nil {
			return fmt.Errorf("validating rewritten module: %w", err)
		}
	}

	data, err := m.Encode()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", output, err)
	}
	if options.check {
		if err := checkModule(ctx, data); err != nil {
			return fmt.Errorf("checking rewritten module: %w", err)
		}
	}

	if err := load.WriteBytes(output, data); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	rewire.Logger().Debug("wrote module", zap.String("path", output), zap.Int("size", len(data)))

	printSummary(stderr, input, output, config, result)
	return nil
}

func printSummary(w io.Writer, input, output string, config rewire.Config, result *rewire.Result) {
	host := config.HostModule
	if host == "" {
		host = rewire.DefaultHostModule
	}

	bold := color.New(color.Bold)
	if len(result.Plan) == 0 {
		bold.Fprintf(w, "%s -> %s: ", input, output)
		fmt.Fprintln(w, color.YellowString("no exports selected; module unchanged"))
		return
	}

	bold.Fprintf(w, "%s -> %s\n", input, output)
	for p, ins := range result.Plan {
		fmt.Fprintf(w, "  %s %s.%s: function %d -> import %d\n",
			color.GreenString("imported"), host, ins.Name, ins.FuncIndex, result.ImportedFunctions+p)
	}
	fmt.Fprintf(w, "  %d calls redirected, %d calls shifted in %d of %d bodies\n",
		result.CallsRedirected, result.CallsShifted, result.BodiesRewritten, result.LocalFunctions)
	fmt.Fprintf(w, "  %d exports redirected, %d exports shifted, %d references shifted\n",
		result.ExportsRedirected, result.ExportsShifted, result.ReferencesShifted)
	if result.ReferencesDeclared != 0 {
		fmt.Fprintf(w, "  %d references declared by a new element segment\n", result.ReferencesDeclared)
	}
	if result.NamesDropped {
		fmt.Fprintln(w, color.YellowString("  warning: dropped malformed name section"))
	}
}
