package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"
	"github.com/modestralts/flw0dec/internal/diag"
	"github.com/modestralts/flw0dec/lang/container"
	"github.com/modestralts/flw0dec/lang/flow"
)

// Disassemble decodes a single .bf container and prints its instruction
// stream block by block, resolving jump/call operands to label names and
// dropping any block the procedure graph cannot reach from its entry
// block, following unpack_ai.py's Flow_File.display_disassembly.
// --no_dce disables that reachability filter so every block, reachable
// or not, is printed (§8 supplement 2).
func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
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

	var out strings.Builder
	fmt.Fprintf(&out, "Number of allocated storage spaces: %d\n\n", f.Header.StorageSpace)

	var blockStrs []string
	for _, proc := range procs {
		graph := flow.BuildProcedureGraph(proc)
		for _, block := range proc.Blocks {
			if !c.NoDCE && !graph.BlockReachable(block.Label) {
				continue
			}
			var lines []string
			lines = append(lines, block.Label.Name+":")
			for _, instr := range block.Instructions {
				lines = append(lines, instr.FormatRaw(f.ResolveOperand))
			}
			blockStrs = append(blockStrs, strings.Join(lines, "\n"))
		}
	}
	out.WriteString(strings.Join(blockStrs, "\n\n"))

	fmt.Fprintln(stdio.Stdout, out.String())
	return nil
}
