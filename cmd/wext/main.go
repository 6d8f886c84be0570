package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pgavlin/wext/cmd/wext/dump"
	"github.com/pgavlin/wext/cmd/wext/plan"
	"github.com/pgavlin/wext/rewire"
	"github.com/pgavlin/wext/wasm"
)

var version = "<unknown>"

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	config.Encoding = "console"
	return config.Build()
}

func configureCLI() *cobra.Command {
	var cpuProfile string
	var memProfile string
	var verbose bool
	var options rewriteOptions

	rootCommand := &cobra.Command{
		Use:   "wext [flags] <input.wasm> <output.wasm>",
		Short: "Convert exported WebAssembly functions into imports",
		Long: "wext - convert exported WebAssembly functions into host imports\n\n" +
			"Each selected export is replaced by an import with the same signature. Calls to the\n" +
			"function and the export itself are redirected to the import.",
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(verbose)
			if err != nil {
				return err
			}
			wasm.SetLogger(logger)
			rewire.SetLogger(logger)

			if cpuProfile != "" {
				f, err := os.Create(cpuProfile)
				if err != nil {
					return err
				}
				pprof.StartCPUProfile(f)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cpuProfile != "" {
				pprof.StopCPUProfile()
			}

			if memProfile != "" {
				f, err := os.Create(memProfile)
				if err != nil {
					return err
				}
				runtime.GC()
				pprof.WriteHeapProfile(f)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return cmd.Usage()
			}
			return runRewrite(cmd.Context(), cmd.ErrOrStderr(), args[0], args[1], options)
		},
	}

	rootCommand.AddCommand(dump.Command())
	rootCommand.AddCommand(plan.Command())

	flags := rootCommand.Flags()
	flags.StringSliceVarP(&options.targets, "export", "e", rewire.DefaultTargets(), "exports to convert into imports, in import order")
	flags.StringVarP(&options.host, "module", "m", rewire.DefaultHostModule, "module name of the new imports")
	flags.IntVarP(&options.workers, "workers", "j", runtime.NumCPU(), "number of function bodies to rewrite concurrently")
	flags.BoolVar(&options.validate, "validate", true, "validate the rewritten module before writing it")
	flags.BoolVar(&options.check, "check", false, "compile the rewritten module with wazero before writing it")

	rootCommand.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCommand.PersistentFlags().StringVar(&cpuProfile, "cpu", "", "emit Go CPU profile data to this path")
	rootCommand.PersistentFlags().StringVar(&memProfile, "mem", "", "emit Go memory profile data to this path")

	rootCommand.PersistentFlags().MarkHidden("cpu")
	rootCommand.PersistentFlags().MarkHidden("mem")

	return rootCommand
}

func main() {
	rootCommand := configureCLI()

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
