package registry

import (
	"strconv"

	"github.com/modestralts/flw0dec/lang/ast"
)

// EnemyAIFormatter renders a fixed set of well-known enemy-AI native
// calls as natural-language lines instead of func_0xNN(args), grounded on
// decompile_ai.py's get_enemy_function_formater. Calls it doesn't
// recognize, or whose arguments aren't literal where a literal is
// required, fall through to the generic rendering.
type EnemyAIFormatter struct {
	table      *Table
	enemyNames map[int64]string
	skillNames map[int64]string
}

// NewEnemyAIFormatter builds a Formatter for table, resolving skill and
// enemy literal ids through the supplied name tables.
func NewEnemyAIFormatter(table *Table, enemyNames, skillNames map[int64]string) *EnemyAIFormatter {
	return &EnemyAIFormatter{table: table, enemyNames: enemyNames, skillNames: skillNames}
}

func litOf(n *ast.Node) (int64, bool) {
	if n.Tag != "lit" {
		return 0, false
	}
	return n.Vals[0], true
}

// Format implements lang/ast.Formatter.
func (f *EnemyAIFormatter) Format(nativeIndex int64, params []*ast.Node, paramStrs []string) (string, bool) {
	fn, ok := f.table.functions[uint32(nativeIndex)]
	if !ok {
		return "", false
	}
	name := fn.Name
	if len(name) > 0 && name[0] == '_' {
		name = name[1:]
	}

	switch name {
	case "set_action_attack":
		return "Use a normal attack.", true
	case "set_action_skill":
		if lit, ok := litOf(params[0]); ok {
			skill := f.skillNames[lit]
			return "Use " + skill + " (skill " + strconv.FormatInt(lit, 10) + ").", true
		}
	case "set_action_flee":
		return "Attempt to escape.", true
	case "set_action_defend":
		return "Defend.", true
	case "set_action_leveled_skill":
		skillLit, skillOK := litOf(params[0])
		levelLit, levelOK := litOf(params[1])
		if skillOK && levelOK {
			skill := f.skillNames[skillLit]
			return "Use level " + strconv.FormatInt(levelLit, 10) + " " + skill +
				" (skill " + strconv.FormatInt(skillLit, 10) + ").", true
		}
	case "set_targeting_standard":
		return "Use standard targeting.", true
	case "set_targeting_self":
		return "Targets itself.", true
	case "retrieve":
		if lit, ok := litOf(params[0]); ok {
			return "v" + strconv.FormatInt(lit, 10), true
		}
	case "store":
		if lit, ok := litOf(params[1]); ok {
			return "v" + strconv.FormatInt(lit, 10) + " = " + paramStrs[0], true
		}
	case "get_flag":
		if lit, ok := litOf(params[0]); ok {
			return "flag" + strconv.FormatInt(lit, 10), true
		}
	case "set_flag":
		if lit, ok := litOf(params[0]); ok {
			return "flag" + strconv.FormatInt(lit, 10) + " = True", true
		}
	case "unset_flag":
		if lit, ok := litOf(params[0]); ok {
			return "flag" + strconv.FormatInt(lit, 10) + " = False", true
		}
	case "enemy_exists":
		if lit, ok := litOf(params[0]); ok {
			enemy := f.enemyNames[lit]
			return "there is a(n) " + enemy + " (enemy " + strconv.FormatInt(lit, 10) + ") in the fight", true
		}
	case "hp_check":
		return "HP% <= " + paramStrs[0], true
	}
	return "", false
}
