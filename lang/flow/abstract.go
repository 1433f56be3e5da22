package flow

import (
	"github.com/modestralts/flw0dec/lang/container"
	"github.com/modestralts/flw0dec/lang/isa"
)

// NativeTable is the subset of the native-function registry (lang/registry)
// that arity inference needs: the number of parameters a known native
// function consumes. An unknown native (index not found) leaves the
// corresponding FUNC/SEND's Pops nil, to be recovered later by stack-height
// back-propagation.
type NativeTable interface {
	Lookup(index uint32) (numParams int, ok bool)
}

type nilNatives struct{}

func (nilNatives) Lookup(uint32) (int, bool) { return 0, false }

// Abstract transforms the raw per-procedure basic blocks produced by
// BuildBlocks into an abstracted Program: blocks are renumbered
// (unreachable jump blocks dropped), IF becomes a two-target COND (with
// a block split when the IF isn't the block's last instruction), COMM
// becomes FUNC or SEND depending on whether its result is consumed, JUMP
// becomes CALL followed by END, and every operation's push/pop arity is
// resolved — statically where the opcode table gives it, by procedure
// prologue inspection for CALL, and by stack-height back-propagation for
// calls to natives the registry doesn't know about (§4.5).
func Abstract(procs []RawProcedure, diags Diagnostics, natives NativeTable) (*Program, error) {
	if diags == nil {
		diags = container.NopDiagnostics{}
	}
	if natives == nil {
		natives = nilNatives{}
	}

	type flat struct {
		procIdx  int
		label    container.Label
		instrs   []isa.Instruction // mutable working copy
	}

	var flats []flat
	for pi, p := range procs {
		for _, b := range p.Blocks {
			flats = append(flats, flat{procIdx: pi, label: b.Label, instrs: cloneInstrs(b.Instructions)})
		}
	}

	graphs := make([]ProcedureGraph, len(procs))
	for i, p := range procs {
		graphs[i] = BuildProcedureGraph(p)
	}

	// Pass 1: renumber every retained block, patching every jumper/caller
	// instruction across the whole program that referenced its old id.
	newIDs := make([]int, len(flats))
	var procInfos []ProcedureInfo
	specialLabels := map[int]string{}
	nextID := 0

	for i, fb := range flats {
		if fb.label.Kind == container.LabelJump && !graphs[fb.procIdx].Reachable[fb.label.Index] {
			newIDs[i] = -1
			continue
		}
		oldID := fb.label.Index
		assigned := nextID
		newIDs[i] = assigned
		nextID++

		for j := range flats {
			for k := range flats[j].instrs {
				in := &flats[j].instrs[k]
				switch {
				case (fb.label.Kind == container.LabelJump || fb.label.Kind == container.LabelSpecial) &&
					in.Opcode.Jumper() && int(in.Operand) == oldID:
					in.Operand = uint32(assigned)
				case fb.label.Kind == container.LabelProc && in.Opcode.Caller() && int(in.Operand) == oldID:
					in.Operand = uint32(assigned)
				}
			}
		}

		if fb.label.Kind == container.LabelProc {
			procInfos = append(procInfos, ProcedureInfo{BlockNum: assigned, Name: fb.label.Name})
		}
		if fb.label.Kind == container.LabelSpecial {
			specialLabels[assigned] = fb.label.Name
		}
	}

	// Pass 2: build the abstracted operations, splitting a block whenever
	// an IF is not its final instruction.
	blocks := make([]*Block, nextID)
	for i, fb := range flats {
		if newIDs[i] == -1 {
			continue
		}
		blockIndex := newIDs[i]
		var ops []Operation
		foundNewBlock := false
		needSkip := false

		for idx := 0; idx < len(fb.instrs); idx++ {
			if needSkip {
				needSkip = false
				continue
			}
			instr := fb.instrs[idx]

			switch {
			case instr.Opcode == isa.IF:
				ops = append(ops, Operation{
					Opcode: isa.COND,
					Args:   []int64{int64(nextID), int64(instr.Operand)},
					Pushes: staticPush(isa.COND),
					Pops:   staticPop(isa.COND),
				})
				if foundNewBlock {
					blocks = appendBlock(blocks, blockIndex, ops)
				} else {
					blocks = setBlock(blocks, blockIndex, ops)
					foundNewBlock = true
				}
				if idx < len(fb.instrs)-1 {
					ops = nil
					blockIndex = nextID
					nextID++
				} else {
					foundNewBlock = false
				}

			case instr.Opcode == isa.COMM:
				var next isa.Instruction
				if idx+1 < len(fb.instrs) {
					next = fb.instrs[idx+1]
				}
				if next.Opcode == isa.PUSHREG {
					needSkip = true
					pushes := intp(1)
					var pops *int
					if n, ok := natives.Lookup(instr.Operand); ok {
						pops = intp(n)
					}
					ops = append(ops, Operation{Opcode: isa.FUNC, Args: []int64{int64(instr.Operand)}, Pushes: pushes, Pops: pops})
				} else {
					pushes := intp(0)
					var pops *int
					if n, ok := natives.Lookup(instr.Operand); ok {
						pops = intp(n)
					}
					ops = append(ops, Operation{Opcode: isa.SEND, Args: []int64{int64(instr.Operand)}, Pushes: pushes, Pops: pops})
				}

			case instr.Opcode == isa.JUMP:
				ops = append(ops, Operation{Opcode: isa.CALL, Args: []int64{int64(instr.Operand)}, Pushes: intp(0)})
				ops = append(ops, Operation{Opcode: isa.END, Pushes: staticPush(isa.END), Pops: staticPop(isa.END)})

			case instr.Opcode.NoOperand():
				ops = append(ops, Operation{Opcode: instr.Opcode, Pushes: staticPush(instr.Opcode), Pops: staticPop(instr.Opcode)})

			default:
				ops = append(ops, Operation{
					Opcode: instr.Opcode,
					Args:   []int64{int64(instr.Operand)},
					Pushes: staticPush(instr.Opcode),
					Pops:   staticPop(instr.Opcode),
				})
			}
		}

		if foundNewBlock {
			blocks = appendBlock(blocks, blockIndex, ops)
		} else {
			blocks = setBlock(blocks, blockIndex, ops)
		}
	}

	resolveArity(blocks, procInfos, diags)

	out := make([]Block, len(blocks))
	for i, b := range blocks {
		if b != nil {
			out[i] = *b
		} else {
			out[i] = Block{ID: i}
		}
	}

	return &Program{Blocks: out, Procedures: procInfos, SpecialLabels: specialLabels}, nil
}

func staticPush(op isa.Opcode) *int {
	if eff, ok := isa.StackEffect[op]; ok {
		return intp(eff[0])
	}
	return nil
}

func staticPop(op isa.Opcode) *int {
	if eff, ok := isa.StackEffect[op]; ok {
		return intp(eff[1])
	}
	return nil
}

func setBlock(blocks []*Block, id int, ops []Operation) []*Block {
	blocks = growBlocks(blocks, id)
	blocks[id] = &Block{ID: id, Operations: append([]Operation{}, ops...)}
	return blocks
}

func appendBlock(blocks []*Block, id int, ops []Operation) []*Block {
	blocks = growBlocks(blocks, id)
	blocks = append(blocks, &Block{ID: id, Operations: append([]Operation{}, ops...)})
	return blocks
}

func growBlocks(blocks []*Block, id int) []*Block {
	if id < len(blocks) {
		return blocks
	}
	grown := make([]*Block, id+1)
	copy(grown, blocks)
	return grown
}

func cloneInstrs(in []isa.Instruction) []isa.Instruction {
	return append([]isa.Instruction{}, in...)
}

// resolveArity computes each procedure's calling arity from its entry
// block's prologue, copies it onto every CALL of that procedure, then
// back-propagates stack height through every block to recover the arity
// of operations whose pop count is still unknown, such as calls to
// natives missing from the registry (find_low_after in decompile_ai.py).
func resolveArity(blocks []*Block, procInfos []ProcedureInfo, diags Diagnostics) {
	popMap := make(map[int]int, len(procInfos))
	for i := range procInfos {
		proc := &procInfos[i]
		if proc.BlockNum >= len(blocks) || blocks[proc.BlockNum] == nil {
			continue
		}
		proc.Pops = prologuePops(blocks[proc.BlockNum].Operations, diags)
		proc.Pushes = 0
		popMap[proc.BlockNum] = proc.Pops
	}

	for _, b := range blocks {
		if b == nil {
			continue
		}
		for i, op := range b.Operations {
			if op.Opcode != isa.CALL {
				continue
			}
			target := int(op.Args[0])
			for _, proc := range procInfos {
				if proc.BlockNum == target {
					b.Operations[i].Pops = intp(proc.Pops)
				}
			}
		}
	}

	for blockNum, b := range blocks {
		if b == nil {
			continue
		}
		height := 0
		if p, ok := popMap[blockNum]; ok {
			height = p
		}
		for idx := range b.Operations {
			op := &b.Operations[idx]
			if op.Pops == nil {
				*op = withPops(*op, findLowAfter(b.Operations, idx, height))
			}
			height -= derefOr(op.Pops, 0)
			if height < 0 {
				diags.Warnf("stack underflowed in block %d", blockNum)
			}
			height += derefOr(op.Pushes, 0)
		}
	}
}

func withPops(op Operation, pops int) Operation {
	op.Pops = intp(pops)
	return op
}

func derefOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// prologuePops scans a procedure entry block's leading operations to
// infer how many arguments the caller must have pushed: each pop-one
// opcode (POPIX/POPFX/POPLIX/POPLFX/IF) or known-arity FUNC/SEND adds to
// the count, PROC is transparent, and anything else stops the scan.
func prologuePops(ops []Operation, diags Diagnostics) int {
	pops := 0
	for _, op := range ops {
		switch op.Opcode {
		case isa.POPIX, isa.POPFX, isa.POPLIX, isa.POPLFX, isa.IF:
			pops++
		case isa.PROC:
			// transparent
		case isa.FUNC, isa.SEND:
			if op.Pops != nil {
				pops += *op.Pops
			} else {
				diags.Warnf("an unknown native function begins a procedure; cannot determine its arity")
				return pops
			}
		default:
			return pops
		}
	}
	return pops
}

// findLowAfter mirrors decompile_ai.py's nested find_low_after: it walks
// forward from idx within a single block, tracking the lowest stack
// height reached, to recover the pop count of an operation whose arity
// isn't statically or structurally known (an unknown native call).
func findLowAfter(ops []Operation, idx, height int) int {
	lowest := height
	height += derefOr(ops[idx].Pushes, 0)
	for _, op := range ops[idx+1:] {
		if op.Pops != nil {
			height -= *op.Pops
		}
		if height < lowest {
			lowest = height
		}
		height += derefOr(op.Pushes, 0)
	}
	return lowest
}
