// Command pegc compiles an instruction-graph PEG IR into a state-machine
// parser: it loads the IR, validates and normalizes it, and either emits a
// standalone Go parser or runs it in-process against an input file.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"pegc/codegen"
	"pegc/graph"
	"pegc/runtime"
	"pegc/transform"
)

var log = commonlog.GetLogger("pegc.cmd")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		debug      bool
		outputFile string
		noBuild    bool
		pkgName    string
		importPath string
		runInput   string
	)

	cmd := &cobra.Command{
		Use:   "pegc [IR_FILE]",
		Short: "compile an instruction-graph PEG IR into a state-machine parser",
		Long: `pegc loads a grammar already compiled to the instruction-graph IR, validates
it (rejecting left recursion), normalizes and deduplicates it, and either
emits a standalone Go parser or, with --run, executes it directly against an
input file.

By default pegc reads the IR from stdin and writes the generated parser to
stdout. If IR_FILE is given, the IR is read from that file instead. If -o is
set, the generated code is written there instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				commonlog.Configure(1, nil)
			} else {
				commonlog.Configure(0, nil)
			}

			irFile := ""
			if len(args) == 1 {
				irFile = args[0]
			}
			ir, err := readAll(irFile)
			if err != nil {
				return err
			}

			log.Info("load")
			p, err := graph.Load(ir)
			if err != nil {
				color.Red("load error: %v", err)
				return err
			}

			log.Info("normalize")
			transform.Run(p, transform.Normal())

			if runInput != "" {
				return runParse(p, runInput, debug)
			}

			if noBuild {
				color.Green("✓ grammar loaded and normalized, start=%s", p.Start)
				return nil
			}

			if importPath == "" {
				return fmt.Errorf("--import-path is required unless -x/--no-build is set")
			}

			log.Info("emit")
			src, err := codegen.Emit(p, codegen.EmitOptions{Package: pkgName, ImportPath: importPath})
			if err != nil {
				color.Red("emit error: %v", err)
				return err
			}

			out, closeOut, err := openOutput(outputFile)
			if err != nil {
				return err
			}
			defer closeOut()

			if _, err := out.Write(src); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			color.Green("✓ wrote generated parser (%d bytes)", len(src))
			return nil
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging and match-tree dumps")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file for the generated parser, defaults to stdout")
	cmd.Flags().BoolVarP(&noBuild, "no-build", "x", false, "do not emit a parser, only load/validate/normalize")
	cmd.Flags().StringVar(&pkgName, "package", "main", "package name for the generated parser")
	cmd.Flags().StringVar(&importPath, "import-path", "", "import path of the generated package (required unless -x)")
	cmd.Flags().StringVar(&runInput, "run", "", "parse this input file in-process against the loaded grammar instead of emitting")

	return cmd
}

// runParse enumerates p's state table in memory and runs the interpreter
// over the named input file, reporting the result without ever generating
// source.
func runParse(p *graph.Parser, inputFile string, debug bool) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	table, err := codegen.EnumerateStates(p)
	if err != nil {
		color.Red("enumerate error: %v", err)
		return err
	}

	ctx := runtime.NewContext(table, runtime.NewByteSliceInput(data))
	result := ctx.Parse()

	if !result.Matched() {
		color.Red("✗ no match (scanned %d bytes, work %d)", result.TotalScanDistance(), result.TotalWork())
		return fmt.Errorf("parse failed")
	}

	color.Green("✓ matched %d bytes (scanned %d, work %d)", result.M.Distance, result.TotalScanDistance(), result.TotalWork())
	if debug {
		fmt.Println(runtime.Dump(result.M))
	}
	return nil
}

// readAll gets the IR bytes, from filename if given or stdin otherwise.
func readAll(filename string) ([]byte, error) {
	if filename == "" {
		r := bufio.NewReader(os.Stdin)
		return io.ReadAll(r)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	defer f.Close()
	return io.ReadAll(bufio.NewReader(f))
}

// openOutput gets the writer to write the generated parser to, and a
// closer that is always safe to call (a no-op for stdout).
func openOutput(filename string) (io.Writer, func() error, error) {
	if filename == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", filename, err)
	}
	return f, f.Close, nil
}
