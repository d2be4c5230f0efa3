package rpyc

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// The helpers below assemble protocol 2 pickles the way Ren'Py writes
// them, so tests need no binary fixtures.

// pobj is an instance built with NEWOBJ, given constructor args and a
// state dict.
type pobj struct {
	module, name string
	args         ptuple
	state        []kv
	// stateValue replaces the state dict for classes with a custom
	// __getstate__.
	stateValue any
}

type kv struct {
	k string
	v any
}

type ptuple []any

type pglobal struct{ module, name string }

func node(name string, line int, attrs ...kv) *pobj {
	state := append([]kv{{"filename", "game/script.rpy"}, {"linenumber", line}}, attrs...)
	return &pobj{module: "renpy.ast", name: name, state: state}
}

func pyExpr(text string, line int) *pobj {
	return &pobj{module: "renpy.ast", name: "PyExpr", args: ptuple{text, "game/script.rpy", line}}
}

func pyCode(source any, line int) *pobj {
	return &pobj{module: "renpy.ast", name: "PyCode", stateValue: ptuple{1, source, ptuple{"game/script.rpy", line}, "exec"}}
}

func encodePickle(t *testing.T, v any) []byte {
	t.Helper()
	var b bytes.Buffer
	b.Write([]byte{0x80, 0x02})
	encodeValue(t, &b, v)
	b.WriteByte('.')
	return b.Bytes()
}

func encodeValue(t *testing.T, b *bytes.Buffer, v any) {
	t.Helper()
	switch v := v.(type) {
	case nil:
		b.WriteByte('N')
	case bool:
		if v {
			b.WriteByte(0x88)
		} else {
			b.WriteByte(0x89)
		}
	case int:
		b.WriteByte('J')
		binary.Write(b, binary.LittleEndian, int32(v))
	case string:
		b.WriteByte('X')
		binary.Write(b, binary.LittleEndian, uint32(len(v)))
		b.WriteString(v)
	case []byte:
		b.WriteByte('T')
		binary.Write(b, binary.LittleEndian, uint32(len(v)))
		b.Write(v)
	case ptuple:
		b.WriteByte('(')
		for _, item := range v {
			encodeValue(t, b, item)
		}
		b.WriteByte('t')
	case []any:
		b.WriteString("](")
		for _, item := range v {
			encodeValue(t, b, item)
		}
		b.WriteByte('e')
	case []kv:
		b.WriteString("}(")
		for _, e := range v {
			encodeValue(t, b, e.k)
			encodeValue(t, b, e.v)
		}
		b.WriteByte('u')
	case pglobal:
		b.WriteString("c" + v.module + "\n" + v.name + "\n")
	case *pobj:
		encodeValue(t, b, pglobal{v.module, v.name})
		args := v.args
		if args == nil {
			args = ptuple{}
		}
		encodeValue(t, b, args)
		b.WriteByte(0x81)
		switch {
		case v.stateValue != nil:
			encodeValue(t, b, v.stateValue)
			b.WriteByte('b')
		case v.state != nil:
			encodeValue(t, b, v.state)
			b.WriteByte('b')
		}
	default:
		t.Fatalf("cannot encode %T", v)
	}
}

func compress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var b bytes.Buffer
	zw := zlib.NewWriter(&b)
	if _, err := zw.Write(raw); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	return b.Bytes()
}

// rpc2 frames payload as slot 1 of a slotted archive.
func rpc2(payload []byte) []byte {
	var b bytes.Buffer
	b.WriteString(Magic)
	start := uint32(len(Magic) + 2*12)
	binary.Write(&b, binary.LittleEndian, [3]uint32{1, start, uint32(len(payload))})
	binary.Write(&b, binary.LittleEndian, [3]uint32{0, 0, 0})
	b.Write(payload)
	return b.Bytes()
}

// archive builds a complete slotted archive holding stmts.
func archive(t *testing.T, stmts ...any) []byte {
	t.Helper()
	top := ptuple{[]kv{{"version", 5003000}, {"key", "unlocked"}}, stmts}
	return rpc2(compress(t, encodePickle(t, top)))
}
