package ir

import (
	"fmt"
	"strings"
)

// Print renders fn as text. Values are numbered in emission order at print
// time, so equal functions print identically.
func Print(fn *Function) string {
	p := &printer{names: make(map[Value]string)}
	for i, param := range fn.params {
		p.names[param] = fmt.Sprintf("%%arg%d", i)
	}
	n := 0
	for _, b := range fn.blocks {
		for _, in := range b.instrs {
			if in.typ != nil {
				p.names[in] = fmt.Sprintf("%%%d", n)
				n++
			}
		}
	}

	var sb strings.Builder
	params := make([]string, len(fn.params))
	for i, param := range fn.params {
		params[i] = param.typ.String() + " " + p.names[param]
	}
	fmt.Fprintf(&sb, "define %s @%s(%s) {\n", resultList(fn.results), fn.name, strings.Join(params, ", "))

	for i, b := range fn.blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s:\n", b.name)
		origin := ""
		for _, in := range b.instrs {
			if in.origin != origin {
				origin = in.origin
				if origin != "" {
					fmt.Fprintf(&sb, "  ; %s\n", origin)
				}
			}
			sb.WriteString("  ")
			sb.WriteString(p.instr(in))
			sb.WriteByte('\n')
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}

func resultList(results []Type) string {
	switch len(results) {
	case 0:
		return "void"
	case 1:
		return results[0].String()
	}
	parts := make([]string, len(results))
	for i, t := range results {
		parts[i] = t.String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

type printer struct {
	names map[Value]string
}

func (p *printer) ref(v Value) string {
	if name, ok := p.names[v]; ok {
		return name
	}
	return "<foreign>"
}

func (p *printer) refs(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.Type().String() + " " + p.ref(v)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) instr(in *Instr) string {
	lhs := ""
	if in.typ != nil {
		lhs = p.names[in] + " = "
	}
	switch in.op {
	case OpConst:
		return fmt.Sprintf("%sconst %s %s", lhs, in.typ, formatConst(in.typ, in.konst))
	case OpCmp:
		return fmt.Sprintf("%scmp %s %s", lhs, in.pred, p.refs(in.args))
	case OpExtract:
		return fmt.Sprintf("%sextract %s, %d", lhs, p.refs(in.args), in.lane)
	case OpLoad:
		return fmt.Sprintf("%sload %s, cell", lhs, in.typ)
	case OpStore:
		return fmt.Sprintf("store %s, cell", p.refs(in.args))
	case OpPhi:
		parts := make([]string, len(in.args))
		for i, a := range in.args {
			parts[i] = fmt.Sprintf("[%s, %%%s]", p.ref(a), in.incoming[i].name)
		}
		return fmt.Sprintf("%sphi %s %s", lhs, in.typ, strings.Join(parts, ", "))
	case OpBr:
		return fmt.Sprintf("br label %%%s", in.targets[0].name)
	case OpCondBr:
		return fmt.Sprintf("condbr %s, label %%%s, label %%%s", p.refs(in.args), in.targets[0].name, in.targets[1].name)
	case OpRet:
		if len(in.args) == 0 {
			return "ret void"
		}
		return "ret " + p.refs(in.args)
	}
	return fmt.Sprintf("%s%s %s", lhs, in.op, p.refs(in.args))
}
