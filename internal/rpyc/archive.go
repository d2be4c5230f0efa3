// Package rpyc reads compiled Ren'Py script archives (.rpyc and .rpymc)
// and converts the pickled statement tree they carry into rpyast nodes.
package rpyc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/grindlemire/go-unrpyc/internal/pickle"
	"github.com/grindlemire/go-unrpyc/internal/rpyast"
	"github.com/klauspost/compress/zlib"
)

var (
	// ErrBadArchive means the file is not a readable archive: a broken
	// slot table or a payload that does not inflate.
	ErrBadArchive = errors.New("bad archive")
	// ErrDecode means the payload inflated but its object graph is not
	// a statement tree this decoder understands.
	ErrDecode = errors.New("cannot decode statement tree")
)

// Magic starts every archive written by Ren'Py 6.18 and later.
const Magic = "RENPY RPC2"

// Format is the container layout of an archive.
type Format int

const (
	// FormatLegacy is a bare zlib stream.
	FormatLegacy Format = iota
	// FormatRPC2 is the slotted container.
	FormatRPC2
)

func (f Format) String() string {
	if f == FormatRPC2 {
		return "RPC2"
	}
	return "legacy"
}

// Metadata is the information stored next to the statement tree.
type Metadata struct {
	Format Format
	// Version is the script version recorded by the compiler, 0 when
	// absent.
	Version int64
	Key     string
}

// slotHeader is one entry of the RPC2 slot table.
type slotHeader struct {
	Slot   uint32
	Start  uint32
	Length uint32
}

// Payload returns the compressed pickle of an archive: slot 1 of an RPC2
// container, or the whole file for the legacy format.
func Payload(data []byte) ([]byte, Format, error) {
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return data, FormatLegacy, nil
	}

	slots := map[uint32][]byte{}
	r := bytes.NewReader(data[len(Magic):])
	for {
		var h slotHeader
		if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
			return nil, FormatRPC2, fmt.Errorf("%w: reading slot table: %v", ErrBadArchive, err)
		}
		if h.Slot == 0 {
			break
		}
		end := uint64(h.Start) + uint64(h.Length)
		if end > uint64(len(data)) {
			return nil, FormatRPC2, fmt.Errorf("%w: slot %d runs past the end of the file", ErrBadArchive, h.Slot)
		}
		slots[h.Slot] = data[h.Start:end]
	}

	payload, ok := slots[1]
	if !ok {
		return nil, FormatRPC2, fmt.Errorf("%w: no statement slot", ErrBadArchive)
	}
	return payload, FormatRPC2, nil
}

// Inflate decompresses an archive payload.
func Inflate(payload []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: inflating: %v", ErrBadArchive, err)
	}
	return raw, nil
}

// Load reads an archive down to its raw object graph: the (data,
// statements) pair Ren'Py pickled.
func Load(data []byte) (pickle.Value, Format, error) {
	payload, format, err := Payload(data)
	if err != nil {
		return nil, format, err
	}
	raw, err := Inflate(payload)
	if err != nil {
		return nil, format, err
	}
	v, err := pickle.Loads(raw)
	if err != nil {
		return nil, format, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return v, format, nil
}

// Decode reads an archive and converts its statements.
func Decode(data []byte) (Metadata, []rpyast.Node, error) {
	v, format, err := Load(data)
	meta := Metadata{Format: format}
	if err != nil {
		return meta, nil, err
	}

	top, ok := v.(pickle.Tuple)
	if !ok || len(top) != 2 {
		return meta, nil, fmt.Errorf("%w: top level is a %s, want a (data, statements) pair", ErrDecode, pickle.TypeName(v))
	}
	readMetadata(&meta, top[0])

	stmts, err := Statements(top[1])
	if err != nil {
		return meta, nil, err
	}
	return meta, stmts, nil
}

func readMetadata(meta *Metadata, v pickle.Value) {
	entries, ok := pickle.AsDict(v)
	if !ok {
		return
	}
	for _, e := range entries {
		key, _ := pickle.AsString(e.Key)
		switch key {
		case "version":
			meta.Version, _ = pickle.AsInt(e.Value)
		case "key":
			meta.Key, _ = pickle.AsString(e.Value)
		}
	}
}

// Statements converts a pickled statement list.
func Statements(v pickle.Value) ([]rpyast.Node, error) {
	c := &converter{}
	block := c.block(v)
	if c.err != nil {
		return nil, c.err
	}
	return block, nil
}
