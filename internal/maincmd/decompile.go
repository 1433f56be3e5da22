package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/modestralts/flw0dec/internal/diag"
	"github.com/modestralts/flw0dec/lang/ast"
	"github.com/modestralts/flw0dec/lang/cleanup"
	"github.com/modestralts/flw0dec/lang/container"
	"github.com/modestralts/flw0dec/lang/flow"
	"github.com/modestralts/flw0dec/lang/registry"
	"github.com/modestralts/flw0dec/lang/structure"
)

// Decompile runs the full pipeline (parse, block build, flow
// abstraction, stack-to-AST lifting, control-flow structuring, cleanup)
// over a single .bf container and prints Python-like pseudocode,
// following decompile_ai.py's decompile_ai_main.
func (c *Cmd) Decompile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return printError(stdio, fmt.Errorf("flw0dec: %w", err))
	}

	sink := diag.New(stdio.Stderr, c.HideAlerts)

	f, err := container.Parse(data, sink)
	if err != nil {
		return printError(stdio, fmt.Errorf("flw0dec: %w", err))
	}

	procs, err := flow.BuildBlocks(f, sink)
	if err != nil {
		return printError(stdio, fmt.Errorf("flw0dec: %w", err))
	}

	var natives *registry.Table
	if c.Game != "" {
		if t, ok := registry.Load(c.Game); ok {
			natives = t
		} else {
			sink.Warnf("no native-function registry known for game %q, native calls render as func_0xNN(args)", c.Game)
		}
	}

	var nativeTable flow.NativeTable
	if natives != nil {
		nativeTable = natives
	}
	prog, err := flow.Abstract(procs, sink, nativeTable)
	if err != nil {
		return printError(stdio, fmt.Errorf("flw0dec: %w", err))
	}

	a := ast.Lift(prog, sink)
	structure.Build(a, sink, c.Handwritten)

	opts := cleanup.Options{
		FlattenConditionals: c.FullyOptimize || c.FlattenConditionals,
		FlattenElses:        c.FullyOptimize || c.FlattenElses,
		ConstantFolding:     c.FullyOptimize || c.ConstantFolding,
		SimplifyConditions:  c.FullyOptimize || c.SimplifyConditions,
	}
	if natives != nil {
		opts.Natives = natives
	}
	cleanup.Optimize(a, opts)

	// The original tool writes to a separate --output_file and only prints
	// to stdout when --show_output is also given; this CLI has a single
	// input path and no output-file argument, so stdout is always used and
	// --show_output is accepted but has no further effect.
	var namer ast.NativeNamer
	if natives != nil {
		namer = natives
	}
	fmt.Fprintln(stdio.Stdout, a.Display(nil, namer))
	return nil
}
