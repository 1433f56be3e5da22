package flow_test

import (
	"testing"

	"github.com/modestralts/flw0dec/lang/container"
	"github.com/modestralts/flw0dec/lang/flow"
	"github.com/modestralts/flw0dec/lang/isa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBlocksSynthesizesFallthrough(t *testing.T) {
	proc := container.Label{Name: "main", TargetLocation: 0, Index: 0, Kind: container.LabelProc}
	jumpEnd := container.Label{Name: "_end", TargetLocation: 1, Index: 0, Kind: container.LabelJump}

	f := &container.File{
		ProcLabels: []container.Label{proc},
		JumpLabels: []container.Label{jumpEnd},
		Instructions: []isa.Instruction{
			{Opcode: isa.PUSHI, Operand: 1, Wide: true, Loc: 0},
			{Opcode: isa.END, Loc: 2},
		},
	}

	procs, err := flow.BuildBlocks(f, container.NopDiagnostics{})
	require.NoError(t, err)
	require.Len(t, procs, 1)
	require.Len(t, procs[0].Blocks, 2)

	first := procs[0].Blocks[0]
	last := first.Instructions[len(first.Instructions)-1]
	assert.Equal(t, isa.GOTO, last.Opcode, "block without an explicit terminator should get a synthesized fallthrough goto")
}

func TestAbstractSimpleProcedure(t *testing.T) {
	proc := container.Label{Name: "main", TargetLocation: 0, Index: 0, Kind: container.LabelProc}
	procs := []flow.RawProcedure{
		{
			Entry: proc,
			Blocks: []flow.RawBlock{
				{
					Label:          proc,
					ProcedureIndex: 0,
					Instructions: []isa.Instruction{
						{Opcode: isa.END, Loc: 0},
					},
				},
			},
		},
	}

	prog, err := flow.Abstract(procs, container.NopDiagnostics{}, nil)
	require.NoError(t, err)
	require.Len(t, prog.Procedures, 1)
	assert.Equal(t, "main", prog.Procedures[0].Name)
	require.Len(t, prog.Blocks, 1)
	require.Len(t, prog.Blocks[0].Operations, 1)
	assert.Equal(t, isa.END, prog.Blocks[0].Operations[0].Opcode)
}
