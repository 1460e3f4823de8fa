package main

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/randalmurphal/flowjit/pkg/flowjit"
	"github.com/randalmurphal/flowjit/pkg/flowjit/ir"
)

var errUnsupportedArg = errors.New("type cannot be given on the command line")

// parseArgs converts command line words into call arguments for a
// function with the given input types.
func parseArgs(types []flowjit.Type, args []string) ([]any, error) {
	if len(args) != len(types) {
		return nil, fmt.Errorf("function takes %d arguments, got %d", len(types), len(args))
	}
	out := make([]any, len(args))
	for i, arg := range args {
		v, err := parseArg(types[i].IR(), arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, types[i].Name(), err)
		}
		out[i] = v
	}
	return out, nil
}

func parseArg(t ir.Type, s string) (any, error) {
	switch t := t.(type) {
	case ir.IntType:
		n, err := strconv.ParseInt(s, 10, t.Bits)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(n).Convert(t.GoType()).Interface(), nil
	case ir.FloatType:
		f, err := strconv.ParseFloat(s, t.Bits)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(f).Convert(t.GoType()).Interface(), nil
	case ir.BoolType:
		return strconv.ParseBool(s)
	case ir.VectorType:
		parts := strings.Split(s, ",")
		if len(parts) != t.Len {
			return nil, fmt.Errorf("want %d comma separated components, got %d", t.Len, len(parts))
		}
		vec := reflect.New(t.GoType()).Elem()
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
			if err != nil {
				return nil, err
			}
			vec.Index(i).SetFloat(f)
		}
		return vec.Interface(), nil
	}
	return nil, errUnsupportedArg
}

// formatValue renders a call result for printing.
func formatValue(v any) string {
	switch v := v.(type) {
	case [3]float32:
		return fmt.Sprintf("%g,%g,%g", v[0], v[1], v[2])
	case [4]float32:
		return fmt.Sprintf("%g,%g,%g,%g", v[0], v[1], v[2], v[3])
	case ir.Handle:
		if v.IsNil() {
			return "nil"
		}
		return fmt.Sprintf("%v", v.Pointer())
	case *ir.List:
		items := make([]string, v.Len())
		for i := range items {
			items[i] = formatValue(v.At(i))
		}
		return "[" + strings.Join(items, " ") + "]"
	}
	return fmt.Sprint(v)
}
