// Package maincmd wires the CLI surface (§4 of SPEC_FULL.md) on top of
// the decompiler pipeline: a Cmd struct with flag:"..." struct tags
// parsed by github.com/mna/mainer, reflection-based dispatch from
// lowercased method names to subcommands, and mainer.CancelOnSignal for
// context cancellation, following the teacher's internal/maincmd.go.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "flw0dec"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <path>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path>
       %[1]s -h|--help
       %[1]s -v|--version

Disassembler and decompiler for FLW0 (.bf) battle-AI bytecode scripts.

The <command> can be one of:
       disassemble               Decode and print the raw instruction
                                  stream, resolving jump/call operands to
                                  label names.
       decompile                 Run the full pipeline (parse, lift,
                                  structure, optimize) and print
                                  Python-like pseudocode.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --game <code>             Game code selecting the native-function
                                  registry (e.g. EO3). Overridable with
                                  the %[1]s_GAME environment variable.
       --hide_alerts             Suppress non-fatal parse warnings.

Valid flag options for the <disassemble> command are:
       --no_dce                  Also list blocks that are unreachable
                                  from their procedure's entry.

Valid flag options for the <decompile> command are:
       --fully_optimize          Enable every optimization pass below.
       --flatten_conditionals    Flatten "else: if" chains into elif.
       --flatten_elses           Move an else branch's statements after
                                  its if when every other branch always
                                  returns.
       --constant_folding        Fold constant-operand expressions.
       --simplify_conditions     Simplify boolean expressions (runs type
                                  inference first).
       --handwritten             Skip the undirected-cycle merge pass,
                                  for scripts not produced by the
                                  original compiler.
       --show_output             Accepted for compatibility; the
                                  pseudocode is always printed to stdout.
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Game       string `flag:"game" env:"FLW0DEC_GAME"`
	HideAlerts bool   `flag:"hide_alerts"`
	NoDCE      bool   `flag:"no_dce"`

	ShowOutput  bool `flag:"show_output"`
	Handwritten bool `flag:"handwritten"`

	FullyOptimize       bool `flag:"fully_optimize"`
	FlattenConditionals bool `flag:"flatten_conditionals"`
	FlattenElses        bool `flag:"flatten_elses"`
	ConstantFolding     bool `flag:"constant_folding"`
	SimplifyConditions  bool `flag:"simplify_conditions"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	if len(c.args[1:]) != 1 {
		return fmt.Errorf("%s: exactly one .bf path must be provided", cmdName)
	}

	if c.flags["no_dce"] && cmdName != "disassemble" {
		return fmt.Errorf("%s: invalid flag 'no_dce'", cmdName)
	}

	decompileOnly := []string{"fully_optimize", "flatten_conditionals", "flatten_elses", "constant_folding", "simplify_conditions", "handwritten", "show_output"}
	if cmdName != "decompile" {
		for _, name := range decompileOnly {
			if c.flags[name] {
				return fmt.Errorf("%s: invalid flag '%s'", cmdName, name)
			}
		}
	}

	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
	}
	return err
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   true,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings
// as input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
