package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/modestralts/flw0dec/lang/isa"
)

// Formatter renders a native function call (FUNC/SEND node) as a
// domain-specific line, overriding the generic func_0xNN(args) fallback.
// It returns (rendered, true) to accept the override, or ("", false) to
// fall through to the default rendering, mirroring decompile_ai.py's
// func_display(vals[0], children, param_strs) -> (bool, str) contract.
type Formatter func(nativeIndex int64, params []*Node, paramStrs []string) (string, bool)

// NativeNamer resolves a native function index to its declared name, for
// the default (non-Formatter) rendering path, following
// decompile_ai.py's native_functions table lookup in display_native_name.
type NativeNamer interface {
	Name(index int64) (string, bool)
}

// Display renders every procedure in the ABST as Python-like pseudocode,
// following decompile_ai.py's display_decompilation. formatter and namer
// may both be nil, in which case native calls render as func_0xNN(args).
func (a *ABST) Display(formatter Formatter, namer NativeNamer) string {
	p := &printer{abst: a, formatter: formatter, namer: namer}

	var procStrs []string
	for _, blockID := range sortedProcedureBlocks(a) {
		meta := a.ProcedureInfo[blockID]
		argStrs := make([]string, meta.Pops)
		for i := 0; i < meta.Pops; i++ {
			argStrs[i] = displayVarName(int64(-1 - i))
		}
		body := indent(p.displayStmt(a.Block(BlockID(blockID))))
		procStr := meta.Name + "(" + strings.Join(argStrs, ",") + "):\n" + body
		procStrs = append(procStrs, unindentLabels(procStr))
	}
	return strings.Join(procStrs, "\n\n")
}

func sortedProcedureBlocks(a *ABST) []int {
	ids := make([]int, 0, len(a.ProcedureInfo))
	for id := range a.ProcedureInfo {
		ids = append(ids, id)
	}
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

// indent prepends four spaces to every line of s.
func indent(s string) string {
	const ws = "    "
	return ws + strings.ReplaceAll(s, "\n", "\n"+ws)
}

// unindentLabels strips the leading indentation back off any line holding
// a "--label:" marker, so labels read flush with the procedure they sit
// in rather than nested inside whichever block happens to contain them.
func unindentLabels(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.Contains(line, "--label:") {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

func displayVarName(index int64) string {
	if index >= 0 {
		return "r" + strconv.FormatInt(index, 10)
	}
	return "p" + strconv.FormatInt(-1-index, 10)
}

type printer struct {
	abst      *ABST
	formatter Formatter
	namer     NativeNamer
}

func (p *printer) displayNativeName(index int64) string {
	if p.namer != nil {
		if name, ok := p.namer.Name(index); ok {
			name = strings.TrimPrefix(name, "_")
			return name
		}
	}
	return fmt.Sprintf("func_%#04x", index)
}

func (p *printer) displayFuncOrSend(n *Node) string {
	paramNodes := make([]*Node, len(n.Children))
	paramStrs := make([]string, len(n.Children))
	for i, c := range n.Children {
		paramNodes[i] = p.abst.Node(c)
		paramStrs[i] = p.displayExp(paramNodes[i])
	}
	if p.formatter != nil {
		if rendered, ok := p.formatter(n.Vals[0], paramNodes, paramStrs); ok {
			return rendered
		}
	}
	return p.displayNativeName(n.Vals[0]) + "(" + strings.Join(paramStrs, ", ") + ")"
}

// displayStmt renders a block as a "seq": "pass" if empty, otherwise its
// statements newline-joined, following display_stmt_node's "seq" case.
func (p *printer) displayStmt(block *Block) string {
	if len(block.Children) == 0 {
		return "pass"
	}
	lines := make([]string, len(block.Children))
	for i, c := range block.Children {
		lines[i] = p.displayStmtNode(p.abst.Node(c))
	}
	return strings.Join(lines, "\n")
}

func (p *printer) displayStmtNode(n *Node) string {
	switch n.Tag {
	case "assign":
		return displayVarName(n.Vals[0]) + " = " + p.displayExp(p.abst.Node(n.Children[0]))

	case "return", "break", "continue":
		return n.Tag

	case "goto":
		return p.displayStmt(p.abst.Block(BlockID(n.Vals[0])))

	case "label":
		return "--label: " + p.abst.SpecialLabels[int(n.Vals[0])]

	case "reallygoto":
		return "goto " + p.abst.SpecialLabels[int(n.Vals[0])]

	case "call":
		name := p.abst.ProcedureInfo[int(n.Vals[0])].Name
		params := make([]string, len(n.Children))
		for i, c := range n.Children {
			params[i] = p.displayExp(p.abst.Node(c))
		}
		return name + "(" + strings.Join(params, ", ") + ")"

	case "send":
		return p.displayFuncOrSend(n)

	case "if":
		var condLines []string
		for i, c := range n.Children {
			kw := "elif"
			if i == 0 {
				kw = "if"
			}
			condLines = append(condLines, kw+" "+p.displayExp(p.abst.Node(c))+":")
		}
		blocks := make([]string, len(n.Vals))
		for i, loc := range n.Vals {
			blocks[i] = indent(p.displayStmt(p.abst.Block(BlockID(loc))))
		}
		if len(condLines) == len(blocks) {
			return interleave(condLines, blocks)
		}
		return interleave(condLines, blocks[:len(blocks)-1]) + "\nelse:\n" + blocks[len(blocks)-1]

	case "loop":
		condStr := p.displayExp(p.abst.Node(n.Children[0]))
		branchStrs := make([]string, len(n.Vals))
		for i, loc := range n.Vals {
			branchStrs[i] = p.displayStmt(p.abst.Block(BlockID(loc)))
		}
		innerStr := indent(branchStrs[0])
		topLine := "while " + condStr + ":"
		if len(n.Vals) == 3 {
			updateStr := strings.ReplaceAll(branchStrs[2], "\n", ", ")
			topLine = "for(; " + condStr + "; " + updateStr + " ):"
		}
		return strings.Join([]string{topLine, innerStr, branchStrs[1]}, "\n")

	default:
		return p.displayExp(n)
	}
}

func interleave(a, b []string) string {
	pairs := make([]string, 0, len(a)+len(b))
	for i := range a {
		pairs = append(pairs, a[i], b[i])
	}
	return strings.Join(pairs, "\n")
}

func (p *printer) displayExp(n *Node) string {
	if sym, ok := isa.BinOpSymbol[n.Tag]; ok {
		lhs := p.displayExp(p.abst.Node(n.Children[0]))
		rhs := p.displayExp(p.abst.Node(n.Children[1]))
		return "(" + lhs + " " + sym + " " + rhs + ")"
	}
	if sym, ok := isa.UnOpSymbol[n.Tag]; ok {
		return sym + p.displayExp(p.abst.Node(n.Children[0]))
	}

	switch n.Tag {
	case "var":
		return displayVarName(n.Vals[0])
	case "lit":
		return strconv.FormatInt(n.Vals[0], 10)
	case "func":
		return p.displayFuncOrSend(n)
	default:
		return ""
	}
}
