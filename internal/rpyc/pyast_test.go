package rpyc

import (
	"errors"
	"testing"

	"github.com/grindlemire/go-unrpyc/internal/pickle"
)

func pyExprStmt(value any) *pobj {
	return pyAST("Expr", kv{"value", value})
}

func pyModule(body ...any) *pobj {
	return pyAST("Module", kv{"body", []any(body)})
}

func pyBinOp(left any, op string, right any) *pobj {
	return pyAST("BinOp", kv{"left", left}, kv{"op", pyAST(op)}, kv{"right", right})
}

func TestPySource(t *testing.T) {
	type tc struct {
		module  any
		want    string
		wantErr bool
	}

	tests := map[string]tc{
		"if elif else": {
			module: pyModule(pyAST("If",
				kv{"test", pyName("a")},
				kv{"body", []any{pyAST("Pass")}},
				kv{"orelse", []any{pyAST("If",
					kv{"test", pyName("b")},
					kv{"body", []any{pyAST("Pass")}},
					kv{"orelse", []any{pyExprStmt(pyName("c"))}},
				)}},
			)),
			want: "if a:\n    pass\nelif b:\n    pass\nelse:\n    c\n",
		},
		"for with tuple target and counter": {
			module: pyModule(pyAST("For",
				kv{"target", pyAST("Tuple", kv{"elts", []any{pyName("k"), pyName("v")}})},
				kv{"iter", pyAST("Call", kv{"func", pyName("items")}, kv{"args", []any{}}, kv{"keywords", []any{}})},
				kv{"body", []any{pyAST("AugAssign", kv{"target", pyName("_1")}, kv{"op", pyAST("Add")}, kv{"value", pyAST("Num", kv{"n", 1})})}},
				kv{"orelse", []any{}},
			)),
			want: "for (k, v) in items():\n    _1 += 1\n",
		},
		"nested operators are parenthesized": {
			module: pyModule(pyExprStmt(pyBinOp(pyBinOp(pyName("a"), "Add", pyName("b")), "Mult", pyAST("UnaryOp", kv{"op", pyAST("USub")}, kv{"operand", pyName("c")})))),
			want:   "(a + b) * (-c)\n",
		},
		"comparison and boolean": {
			module: pyModule(pyExprStmt(pyAST("BoolOp",
				kv{"op", pyAST("And")},
				kv{"values", []any{
					pyAST("Compare", kv{"left", pyName("x")}, kv{"ops", []any{pyAST("NotIn")}}, kv{"comparators", []any{pyName("s")}}),
					pyAST("UnaryOp", kv{"op", pyAST("Not")}, kv{"operand", pyName("y")}),
				}},
			))),
			want: "(x not in s) and (not y)\n",
		},
		"literals": {
			module: pyModule(pyExprStmt(pyAST("List", kv{"elts", []any{
				pyAST("Str", kv{"s", "it's"}),
				pyAST("Str", kv{"s", []byte("a\tb")}),
				pyAST("Str", kv{"s", "caf\u00e9\n"}),
				pyAST("Tuple", kv{"elts", []any{pyAST("Num", kv{"n", 1})}}),
				pyAST("Dict", kv{"keys", []any{pyAST("Str", kv{"s", "k"})}}, kv{"values", []any{pyName("None")}}),
			}}))),
			want: "[u\"it's\", 'a\\tb', u'caf\\xe9\\n', (1,), {u'k': None}]\n",
		},
		"subscripts, conditionals and lambdas": {
			module: pyModule(pyAST("Assign",
				kv{"targets", []any{pyName("f")}},
				kv{"value", pyAST("Lambda",
					kv{"args", pyAST("arguments", kv{"args", []any{pyName("i")}}, kv{"defaults", []any{}}, kv{"vararg", nil}, kv{"kwarg", nil})},
					kv{"body", pyAST("IfExp",
						kv{"test", pyName("i")},
						kv{"body", pyAST("Subscript", kv{"value", pyName("xs")}, kv{"slice", pyAST("Index", kv{"value", pyName("i")})})},
						kv{"orelse", pyAST("Subscript", kv{"value", pyName("xs")}, kv{"slice", pyAST("Slice", kv{"lower", nil}, kv{"upper", pyAST("Num", kv{"n", 2})}, kv{"step", nil})})},
					)},
				)},
			)),
			want: "f = lambda i: xs[i] if i else xs[:2]\n",
		},
		"call with star arguments": {
			module: pyModule(pyExprStmt(pyAST("Call",
				kv{"func", pyName("f")},
				kv{"args", []any{pyName("a")}},
				kv{"keywords", []any{pyKeyword("k", pyName("v"))}},
				kv{"starargs", pyName("rest")},
				kv{"kwargs", pyName("kw")},
			))),
			want: "f(a, k=v, *rest, **kw)\n",
		},
		"unsupported statement": {
			module:  pyModule(pyAST("While", kv{"test", pyName("x")})),
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			v, err := pickle.Loads(encodePickle(t, tt.module))
			if err != nil {
				t.Fatalf("Loads() error: %v", err)
			}
			got, err := pySource(v)
			if tt.wantErr {
				if !errors.Is(err, errUnknownPyNode) {
					t.Fatalf("pySource() error = %v, want errUnknownPyNode", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("pySource() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("pySource() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPyFloat(t *testing.T) {
	tests := map[string]struct {
		in   float64
		want string
	}{
		"whole":  {in: 3, want: "3.0"},
		"half":   {in: 0.5, want: "0.5"},
		"large":  {in: 1e16, want: "1e+16"},
		"small":  {in: 0.00001, want: "1e-05"},
		"zero":   {in: 0, want: "0.0"},
		"negate": {in: -2.25, want: "-2.25"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := pyFloat(tt.in); got != tt.want {
				t.Errorf("pyFloat(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
