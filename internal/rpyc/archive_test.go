package rpyc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/grindlemire/go-unrpyc/internal/rpyast"
)

func TestDecodeFormats(t *testing.T) {
	say := node("Say", 1, kv{"who", nil}, kv{"what", "Hello"}, kv{"with_", nil}, kv{"interact", true})
	top := ptuple{[]kv{{"version", 5003000}, {"key", "unlocked"}}, []any{say}}
	payload := compress(t, encodePickle(t, top))

	type tc struct {
		data       []byte
		wantFormat Format
	}

	tests := map[string]tc{
		"slotted": {
			data:       rpc2(payload),
			wantFormat: FormatRPC2,
		},
		"legacy": {
			data:       payload,
			wantFormat: FormatLegacy,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			meta, stmts, err := Decode(tt.data)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if meta.Format != tt.wantFormat {
				t.Errorf("Format = %v, want %v", meta.Format, tt.wantFormat)
			}
			if meta.Version != 5003000 || meta.Key != "unlocked" {
				t.Errorf("Metadata = %+v, want version 5003000 and key unlocked", meta)
			}
			if len(stmts) != 1 {
				t.Fatalf("Decode() returned %d statements, want 1", len(stmts))
			}
			got, ok := stmts[0].(*rpyast.Say)
			if !ok {
				t.Fatalf("statement is %T, want *rpyast.Say", stmts[0])
			}
			if got.What != "Hello" || got.Who != "" || !got.Interact || got.Line() != 1 {
				t.Errorf("Say = %+v", got)
			}
		})
	}
}

func TestDecodeSkipsOtherSlots(t *testing.T) {
	payload := compress(t, encodePickle(t, ptuple{[]kv{}, []any{}}))
	junk := []byte("not a statement slot")

	var b bytes.Buffer
	b.WriteString(Magic)
	start := uint32(len(Magic) + 3*12)
	binary.Write(&b, binary.LittleEndian, [3]uint32{2, start, uint32(len(junk))})
	binary.Write(&b, binary.LittleEndian, [3]uint32{1, start + uint32(len(junk)), uint32(len(payload))})
	binary.Write(&b, binary.LittleEndian, [3]uint32{0, 0, 0})
	b.Write(junk)
	b.Write(payload)

	meta, stmts, err := Decode(b.Bytes())
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if meta.Format != FormatRPC2 || len(stmts) != 0 {
		t.Errorf("Decode() = %+v, %d statements", meta, len(stmts))
	}
}

func TestDecodeErrors(t *testing.T) {
	type tc struct {
		data    func(t *testing.T) []byte
		wantErr error
	}

	tests := map[string]tc{
		"truncated slot table": {
			data:    func(*testing.T) []byte { return []byte(Magic + "\x01\x00") },
			wantErr: ErrBadArchive,
		},
		"slot past the end": {
			data: func(*testing.T) []byte {
				var b bytes.Buffer
				b.WriteString(Magic)
				binary.Write(&b, binary.LittleEndian, [3]uint32{1, 34, 1000})
				binary.Write(&b, binary.LittleEndian, [3]uint32{0, 0, 0})
				return b.Bytes()
			},
			wantErr: ErrBadArchive,
		},
		"no statement slot": {
			data: func(*testing.T) []byte {
				var b bytes.Buffer
				b.WriteString(Magic)
				binary.Write(&b, binary.LittleEndian, [3]uint32{0, 0, 0})
				return b.Bytes()
			},
			wantErr: ErrBadArchive,
		},
		"not compressed": {
			data:    func(*testing.T) []byte { return []byte("label start:\n") },
			wantErr: ErrBadArchive,
		},
		"bad pickle": {
			data:    func(t *testing.T) []byte { return rpc2(compress(t, []byte{0x80, 0x02, 0xff})) },
			wantErr: ErrDecode,
		},
		"top level not a pair": {
			data:    func(t *testing.T) []byte { return rpc2(compress(t, encodePickle(t, []any{}))) },
			wantErr: ErrDecode,
		},
		"statement not an object": {
			data: func(t *testing.T) []byte {
				return rpc2(compress(t, encodePickle(t, ptuple{[]kv{}, []any{"say"}})))
			},
			wantErr: ErrDecode,
		},
		"image specifier of the wrong size": {
			data: func(t *testing.T) []byte {
				return archive(t, node("Hide", 1, kv{"imspec", ptuple{ptuple{"x"}, nil}}))
			},
			wantErr: ErrDecode,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode(tt.data(t))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
