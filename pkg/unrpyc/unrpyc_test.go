package unrpyc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func unicode(b *bytes.Buffer, s string) {
	b.WriteByte('X')
	binary.Write(b, binary.LittleEndian, uint32(len(s)))
	b.WriteString(s)
}

// passArchive is a legacy archive holding a single pass statement on
// line 1.
func passArchive(t *testing.T) []byte {
	t.Helper()

	var p bytes.Buffer
	p.Write([]byte{0x80, 0x02})
	p.WriteString("}]")
	p.WriteString("(crenpy.ast\nPass\n)\x81}(")
	unicode(&p, "filename")
	unicode(&p, "game/script.rpy")
	unicode(&p, "linenumber")
	p.Write([]byte{'K', 1})
	p.WriteString("ube")
	p.WriteByte(0x86)
	p.WriteByte('.')

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(p.Bytes()); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	return z.Bytes()
}

func TestDecompile(t *testing.T) {
	type tc struct {
		setup func(d *Decompiler)
		want  string
	}

	tests := map[string]tc{
		"banner": {
			want: Banner + "\npass\n",
		},
		"no banner": {
			setup: func(d *Decompiler) { d.NoBanner = true },
			want:  "pass\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			d := New()
			if tt.setup != nil {
				tt.setup(d)
			}
			res, err := d.Decompile("script.rpyc", passArchive(t))
			if err != nil {
				t.Fatalf("Decompile() error: %v", err)
			}
			if res.Source != tt.want {
				t.Errorf("Source = %q, want %q", res.Source, tt.want)
			}
			if res.Metadata.Format.String() != "legacy" {
				t.Errorf("Format = %s, want legacy", res.Metadata.Format)
			}
		})
	}
}

func TestDecompileLineFidelityDropsBanner(t *testing.T) {
	d := New()
	d.Options.LineFidelity = true

	res, err := d.Decompile("script.rpyc", passArchive(t))
	if err != nil {
		t.Fatalf("Decompile() error: %v", err)
	}
	if strings.Contains(res.Source, Banner) {
		t.Errorf("Source = %q, want no banner", res.Source)
	}
}

func TestDecompileMalformed(t *testing.T) {
	type tc struct {
		data    []byte
		wantErr error
	}

	tests := map[string]tc{
		"not compressed": {
			data:    []byte("label start:\n"),
			wantErr: ErrBadArchive,
		},
		"truncated slot table": {
			data:    []byte("RENPY RPC2\x01\x00"),
			wantErr: ErrBadArchive,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := New().Decompile("broken.rpyc", tt.data)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if !IsMalformed(err) {
				t.Errorf("IsMalformed(%v) = false", err)
			}
			if !strings.HasPrefix(err.Error(), "broken.rpyc: ") {
				t.Errorf("error %q does not name the file", err)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	type tc struct {
		in   string
		want string
	}

	tests := map[string]tc{
		"script": {in: "game/script.rpyc", want: "game/script.rpy"},
		"module": {in: "game/lib.rpymc", want: "game/lib.rpym"},
		"dotted": {in: "game/v1.2/ch.1.rpyc", want: "game/v1.2/ch.1.rpy"},
		"no ext": {in: "game/script", want: "game/script.rpy"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := OutputPath(tt.in); got != tt.want {
				t.Errorf("OutputPath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsArchive(t *testing.T) {
	for path, want := range map[string]bool{
		"a.rpyc":  true,
		"a.rpymc": true,
		"a.rpy":   false,
		"a.rpyb":  false,
	} {
		if got := IsArchive(path); got != want {
			t.Errorf("IsArchive(%q) = %v, want %v", path, got, want)
		}
	}
}
