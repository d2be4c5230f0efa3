package pickle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

var (
	// ErrUnsupportedOpcode is returned for opcodes that need outside
	// state: persistent ids, the extension registry and out of band
	// buffers.
	ErrUnsupportedOpcode = errors.New("unsupported pickle opcode")
	// ErrMalformed is returned for streams that are truncated or that
	// manipulate the stack inconsistently.
	ErrMalformed = errors.New("malformed pickle stream")
)

const (
	opMark           = '('
	opStop           = '.'
	opPop            = '0'
	opPopMark        = '1'
	opDup            = '2'
	opFloat          = 'F'
	opInt            = 'I'
	opBinInt         = 'J'
	opBinInt1        = 'K'
	opLong           = 'L'
	opBinInt2        = 'M'
	opNone           = 'N'
	opPersID         = 'P'
	opBinPersID      = 'Q'
	opReduce         = 'R'
	opString         = 'S'
	opBinString      = 'T'
	opShortBinString = 'U'
	opUnicode        = 'V'
	opBinUnicode     = 'X'
	opAppend         = 'a'
	opBuild          = 'b'
	opGlobal         = 'c'
	opDict           = 'd'
	opEmptyDict      = '}'
	opAppends        = 'e'
	opGet            = 'g'
	opBinGet         = 'h'
	opInst           = 'i'
	opLongBinGet     = 'j'
	opList           = 'l'
	opEmptyList      = ']'
	opObj            = 'o'
	opPut            = 'p'
	opBinPut         = 'q'
	opLongBinPut     = 'r'
	opSetItem        = 's'
	opTuple          = 't'
	opEmptyTuple     = ')'
	opSetItems       = 'u'
	opBinFloat       = 'G'

	// protocol 2
	opProto    = 0x80
	opNewObj   = 0x81
	opExt1     = 0x82
	opExt2     = 0x83
	opExt4     = 0x84
	opTuple1   = 0x85
	opTuple2   = 0x86
	opTuple3   = 0x87
	opNewTrue  = 0x88
	opNewFalse = 0x89
	opLong1    = 0x8a
	opLong4    = 0x8b

	// protocol 3
	opBinBytes      = 'B'
	opShortBinBytes = 'C'

	// protocol 4
	opShortBinUnicode = 0x8c
	opBinUnicode8     = 0x8d
	opBinBytes8       = 0x8e
	opEmptySet        = 0x8f
	opAddItems        = 0x90
	opFrozenSet       = 0x91
	opNewObjEx        = 0x92
	opStackGlobal     = 0x93
	opMemoize         = 0x94
	opFrame           = 0x95

	// protocol 5
	opByteArray8     = 0x96
	opNextBuffer     = 0x97
	opReadOnlyBuffer = 0x98
)

// HighestProtocol is the newest protocol whose opcodes are understood.
const HighestProtocol = 5

// Loads decodes a single pickled value.
func Loads(data []byte) (Value, error) {
	d := &decoder{data: data, memo: map[int]Value{}}
	return d.run()
}

type decoder struct {
	data  []byte
	pos   int
	stack []Value
	marks []int
	memo  map[int]Value
}

// opError ties a failure to the opcode and offset it happened at.
func (d *decoder) opError(op byte, offset int, err error) error {
	return fmt.Errorf("opcode %#02x at offset %d: %w", op, offset, err)
}

func (d *decoder) run() (Value, error) {
	for {
		offset := d.pos
		op, err := d.readByte()
		if err != nil {
			return nil, err
		}
		if op == opStop {
			v, err := d.pop()
			if err != nil {
				return nil, d.opError(op, offset, err)
			}
			return v, nil
		}
		if err := d.step(op); err != nil {
			return nil, d.opError(op, offset, err)
		}
	}
}

func (d *decoder) step(op byte) error {
	switch op {
	case opProto:
		proto, err := d.readByte()
		if err != nil {
			return err
		}
		if proto > HighestProtocol {
			return fmt.Errorf("%w: protocol %d", ErrUnsupportedOpcode, proto)
		}
	case opFrame:
		_, err := d.read(8)
		return err

	case opMark:
		d.marks = append(d.marks, len(d.stack))
	case opPop:
		if len(d.marks) > 0 && d.marks[len(d.marks)-1] == len(d.stack) {
			// POP right after MARK discards the mark.
			d.marks = d.marks[:len(d.marks)-1]
			return nil
		}
		_, err := d.pop()
		return err
	case opPopMark:
		_, err := d.popMark()
		return err
	case opDup:
		v, err := d.top()
		if err != nil {
			return err
		}
		d.push(v)

	case opNone:
		d.push(None{})
	case opNewTrue:
		d.push(true)
	case opNewFalse:
		d.push(false)
	case opInt:
		line, err := d.readLine()
		if err != nil {
			return err
		}
		switch line {
		case "00":
			d.push(false)
		case "01":
			d.push(true)
		default:
			v, err := parseInt(line)
			if err != nil {
				return err
			}
			d.push(v)
		}
	case opBinInt:
		b, err := d.read(4)
		if err != nil {
			return err
		}
		d.push(int64(int32(binary.LittleEndian.Uint32(b))))
	case opBinInt1:
		b, err := d.readByte()
		if err != nil {
			return err
		}
		d.push(int64(b))
	case opBinInt2:
		b, err := d.read(2)
		if err != nil {
			return err
		}
		d.push(int64(binary.LittleEndian.Uint16(b)))
	case opLong:
		line, err := d.readLine()
		if err != nil {
			return err
		}
		v, err := parseInt(strings.TrimSuffix(line, "L"))
		if err != nil {
			return err
		}
		d.push(v)
	case opLong1, opLong4:
		var n int
		if op == opLong1 {
			b, err := d.readByte()
			if err != nil {
				return err
			}
			n = int(b)
		} else {
			var err error
			if n, err = d.readLen32(); err != nil {
				return err
			}
		}
		b, err := d.read(n)
		if err != nil {
			return err
		}
		d.push(decodeLong(b))
	case opFloat:
		line, err := d.readLine()
		if err != nil {
			return err
		}
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		d.push(f)
	case opBinFloat:
		b, err := d.read(8)
		if err != nil {
			return err
		}
		d.push(math.Float64frombits(binary.BigEndian.Uint64(b)))

	case opString:
		line, err := d.readLine()
		if err != nil {
			return err
		}
		s, err := unquoteRepr(line)
		if err != nil {
			return err
		}
		d.push(Bytes(s))
	case opBinString, opBinBytes:
		n, err := d.readLen32()
		if err != nil {
			return err
		}
		return d.pushBytes(n)
	case opShortBinString, opShortBinBytes:
		n, err := d.readByte()
		if err != nil {
			return err
		}
		return d.pushBytes(int(n))
	case opBinBytes8, opByteArray8:
		n, err := d.readLen64()
		if err != nil {
			return err
		}
		return d.pushBytes(n)
	case opUnicode:
		line, err := d.readLine()
		if err != nil {
			return err
		}
		s, err := unescapeRawUnicode(line)
		if err != nil {
			return err
		}
		d.push(s)
	case opBinUnicode:
		n, err := d.readLen32()
		if err != nil {
			return err
		}
		return d.pushString(n)
	case opShortBinUnicode:
		n, err := d.readByte()
		if err != nil {
			return err
		}
		return d.pushString(int(n))
	case opBinUnicode8:
		n, err := d.readLen64()
		if err != nil {
			return err
		}
		return d.pushString(n)

	case opEmptyTuple:
		d.push(Tuple{})
	case opTuple:
		items, err := d.popMark()
		if err != nil {
			return err
		}
		d.push(Tuple(items))
	case opTuple1, opTuple2, opTuple3:
		n := int(op-opTuple1) + 1
		if len(d.stack) < n {
			return fmt.Errorf("%w: stack underflow", ErrMalformed)
		}
		items := make(Tuple, n)
		copy(items, d.stack[len(d.stack)-n:])
		d.stack = d.stack[:len(d.stack)-n]
		d.push(items)

	case opEmptyList:
		d.push(&List{})
	case opList:
		items, err := d.popMark()
		if err != nil {
			return err
		}
		d.push(&List{Items: items})
	case opAppend:
		v, err := d.pop()
		if err != nil {
			return err
		}
		return d.extend([]Value{v})
	case opAppends:
		items, err := d.popMark()
		if err != nil {
			return err
		}
		return d.extend(items)

	case opEmptyDict:
		d.push(&Dict{})
	case opDict:
		items, err := d.popMark()
		if err != nil {
			return err
		}
		dict := &Dict{}
		if err := setItems(dict, items); err != nil {
			return err
		}
		d.push(dict)
	case opSetItem:
		if len(d.stack) < 2 {
			return fmt.Errorf("%w: stack underflow", ErrMalformed)
		}
		items := d.stack[len(d.stack)-2:]
		d.stack = d.stack[:len(d.stack)-2]
		return d.setItems(items)
	case opSetItems:
		items, err := d.popMark()
		if err != nil {
			return err
		}
		return d.setItems(items)

	case opEmptySet:
		d.push(&Set{})
	case opAddItems:
		items, err := d.popMark()
		if err != nil {
			return err
		}
		switch target := d.peek().(type) {
		case *Set:
			target.Items = append(target.Items, items...)
		case *Object:
			target.ListItems = append(target.ListItems, items...)
		default:
			return fmt.Errorf("%w: ADDITEMS to %s", ErrMalformed, TypeName(target))
		}
	case opFrozenSet:
		items, err := d.popMark()
		if err != nil {
			return err
		}
		d.push(&Set{Items: items, Frozen: true})

	case opGet, opBinGet, opLongBinGet:
		idx, err := d.memoIndex(op)
		if err != nil {
			return err
		}
		v, ok := d.memo[idx]
		if !ok {
			return fmt.Errorf("%w: memo key %d not found", ErrMalformed, idx)
		}
		d.push(v)
	case opPut, opBinPut, opLongBinPut:
		idx, err := d.memoIndex(op)
		if err != nil {
			return err
		}
		v, err := d.top()
		if err != nil {
			return err
		}
		d.memo[idx] = v
	case opMemoize:
		v, err := d.top()
		if err != nil {
			return err
		}
		d.memo[len(d.memo)] = v

	case opGlobal:
		module, err := d.readLine()
		if err != nil {
			return err
		}
		name, err := d.readLine()
		if err != nil {
			return err
		}
		d.push(&Global{Module: module, Name: name})
	case opStackGlobal:
		nameV, err := d.pop()
		if err != nil {
			return err
		}
		moduleV, err := d.pop()
		if err != nil {
			return err
		}
		module, ok1 := AsString(moduleV)
		name, ok2 := AsString(nameV)
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: STACK_GLOBAL needs two strings", ErrMalformed)
		}
		d.push(&Global{Module: module, Name: name})

	case opReduce:
		args, err := d.pop()
		if err != nil {
			return err
		}
		callable, err := d.pop()
		if err != nil {
			return err
		}
		argList, ok := AsList(args)
		if !ok {
			return fmt.Errorf("%w: REDUCE arguments are a %s", ErrMalformed, TypeName(args))
		}
		d.push(reduce(callable, argList))
	case opNewObj, opNewObjEx:
		if op == opNewObjEx {
			// keyword arguments are not needed by any known class
			if _, err := d.pop(); err != nil {
				return err
			}
		}
		args, err := d.pop()
		if err != nil {
			return err
		}
		cls, err := d.pop()
		if err != nil {
			return err
		}
		argList, _ := AsList(args)
		d.push(newObject(cls, argList))
	case opInst:
		module, err := d.readLine()
		if err != nil {
			return err
		}
		name, err := d.readLine()
		if err != nil {
			return err
		}
		args, err := d.popMark()
		if err != nil {
			return err
		}
		d.push(&Object{Class: &Global{Module: module, Name: name}, Args: args})
	case opObj:
		items, err := d.popMark()
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("%w: OBJ without a class", ErrMalformed)
		}
		d.push(newObject(items[0], items[1:]))
	case opBuild:
		state, err := d.pop()
		if err != nil {
			return err
		}
		switch target := d.peek().(type) {
		case *Object:
			target.State = state
		case *Set:
			// set subclasses restore their items from state
			items, _ := AsList(state)
			target.Items = append(target.Items, items...)
		default:
			return fmt.Errorf("%w: BUILD on %s", ErrMalformed, TypeName(target))
		}

	case opPersID, opBinPersID, opExt1, opExt2, opExt4, opNextBuffer, opReadOnlyBuffer:
		return ErrUnsupportedOpcode
	default:
		return fmt.Errorf("%w: unknown opcode", ErrMalformed)
	}
	return nil
}

func (d *decoder) push(v Value) {
	d.stack = append(d.stack, v)
}

func (d *decoder) pop() (Value, error) {
	if len(d.stack) == 0 || (len(d.marks) > 0 && d.marks[len(d.marks)-1] >= len(d.stack)) {
		return nil, fmt.Errorf("%w: stack underflow", ErrMalformed)
	}
	v := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]
	return v, nil
}

func (d *decoder) top() (Value, error) {
	if len(d.stack) == 0 {
		return nil, fmt.Errorf("%w: stack underflow", ErrMalformed)
	}
	return d.stack[len(d.stack)-1], nil
}

// peek returns the top of the stack or nil.
func (d *decoder) peek() Value {
	v, _ := d.top()
	return v
}

// popMark pops everything above the most recent mark.
func (d *decoder) popMark() ([]Value, error) {
	if len(d.marks) == 0 {
		return nil, fmt.Errorf("%w: no mark on the stack", ErrMalformed)
	}
	mark := d.marks[len(d.marks)-1]
	d.marks = d.marks[:len(d.marks)-1]
	items := make([]Value, len(d.stack)-mark)
	copy(items, d.stack[mark:])
	d.stack = d.stack[:mark]
	return items, nil
}

func (d *decoder) extend(items []Value) error {
	switch target := d.peek().(type) {
	case *List:
		target.Items = append(target.Items, items...)
	case *Object:
		target.ListItems = append(target.ListItems, items...)
	default:
		return fmt.Errorf("%w: APPEND to %s", ErrMalformed, TypeName(target))
	}
	return nil
}

func (d *decoder) setItems(items []Value) error {
	switch target := d.peek().(type) {
	case *Dict:
		return setItems(target, items)
	case *Object:
		dict := &Dict{Entries: target.DictItems}
		if err := setItems(dict, items); err != nil {
			return err
		}
		target.DictItems = dict.Entries
	default:
		return fmt.Errorf("%w: SETITEM on %s", ErrMalformed, TypeName(target))
	}
	return nil
}

func setItems(dict *Dict, items []Value) error {
	if len(items)%2 != 0 {
		return fmt.Errorf("%w: odd number of dict items", ErrMalformed)
	}
	for i := 0; i < len(items); i += 2 {
		dict.Set(items[i], items[i+1])
	}
	return nil
}

func (d *decoder) memoIndex(op byte) (int, error) {
	switch op {
	case opGet, opPut:
		line, err := d.readLine()
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return n, nil
	case opBinGet, opBinPut:
		b, err := d.readByte()
		return int(b), err
	default:
		return d.readLen32()
	}
}

func (d *decoder) readByte() (byte, error) {
	if d.pos >= len(d.data) {
		return 0, fmt.Errorf("%w: unexpected end of data", ErrMalformed)
	}
	b := d.data[d.pos]
	d.pos++
	return b, nil
}

func (d *decoder) read(n int) ([]byte, error) {
	if n < 0 || len(d.data)-d.pos < n {
		return nil, fmt.Errorf("%w: unexpected end of data", ErrMalformed)
	}
	b := d.data[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// readLine reads up to the next newline, which is consumed. A carriage
// return before it is dropped too.
func (d *decoder) readLine() (string, error) {
	i := bytes.IndexByte(d.data[d.pos:], '\n')
	if i < 0 {
		return "", fmt.Errorf("%w: unterminated line", ErrMalformed)
	}
	line := d.data[d.pos : d.pos+i]
	d.pos += i + 1
	return string(bytes.TrimSuffix(line, []byte("\r"))), nil
}

func (d *decoder) readLen32() (int, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return int(binary.LittleEndian.Uint32(b)), nil
}

func (d *decoder) readLen64() (int, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	n := binary.LittleEndian.Uint64(b)
	if n > uint64(len(d.data)) {
		return 0, fmt.Errorf("%w: length %d exceeds data", ErrMalformed, n)
	}
	return int(n), nil
}

func (d *decoder) pushBytes(n int) error {
	b, err := d.read(n)
	if err != nil {
		return err
	}
	d.push(Bytes(bytes.Clone(b)))
	return nil
}

func (d *decoder) pushString(n int) error {
	b, err := d.read(n)
	if err != nil {
		return err
	}
	d.push(string(b))
	return nil
}

// parseInt returns an int64 when the value fits and a *big.Int otherwise.
func parseInt(s string) (Value, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%w: bad integer %q", ErrMalformed, s)
	}
	return n, nil
}

// decodeLong decodes a little endian two's complement integer.
func decodeLong(b []byte) Value {
	if len(b) == 0 {
		return int64(0)
	}
	be := make([]byte, len(b))
	for i, c := range b {
		be[len(b)-1-i] = c
	}
	n := new(big.Int).SetBytes(be)
	if b[len(b)-1]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(8*len(b))))
	}
	if n.IsInt64() {
		return n.Int64()
	}
	return n
}

// reduce applies callable to args for the few callables whose result is
// a plain value. Everything else becomes an Object.
func reduce(callable Value, args []Value) Value {
	g, ok := callable.(*Global)
	if !ok {
		return &Object{Args: args}
	}

	switch g.Module + "." + g.Name {
	case "copy_reg._reconstructor", "copyreg._reconstructor":
		// _reconstructor(cls, base, state) builds a bare instance of cls.
		if len(args) > 0 {
			if cls, ok := args[0].(*Global); ok {
				return &Object{Class: cls}
			}
		}
	case "__builtin__.set", "builtins.set", "__builtin__.frozenset", "builtins.frozenset":
		set := &Set{Frozen: g.Name == "frozenset"}
		if len(args) > 0 {
			set.Items, _ = AsList(args[0])
		}
		return set
	case "_codecs.encode":
		// python 3 writes bytes for protocol 2 as encode(text, "latin1").
		if len(args) == 2 {
			text, ok1 := AsString(args[0])
			encoding, ok2 := AsString(args[1])
			if ok1 && ok2 && (encoding == "latin1" || encoding == "latin-1") {
				if b, err := charmap.ISO8859_1.NewEncoder().String(text); err == nil {
					return Bytes(b)
				}
			}
		}
	}
	return &Object{Class: g, Args: args}
}

func newObject(cls Value, args []Value) Value {
	g, _ := cls.(*Global)
	return &Object{Class: g, Args: args}
}

// unquoteRepr decodes the python 2 repr of a byte string.
func unquoteRepr(s string) (string, error) {
	if len(s) < 2 || (s[0] != '\'' && s[0] != '"') || s[len(s)-1] != s[0] {
		return "", fmt.Errorf("%w: bad string literal %q", ErrMalformed, s)
	}
	s = s[1 : len(s)-1]

	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case 'x':
			if i+3 > len(s) {
				return "", fmt.Errorf("%w: truncated \\x escape", ErrMalformed)
			}
			n, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("%w: bad \\x escape", ErrMalformed)
			}
			sb.WriteByte(byte(n))
			i += 2
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+3 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			n, _ := strconv.ParseUint(s[i:j], 8, 16)
			sb.WriteByte(byte(n))
			i = j - 1
		default:
			// \\, \', \" and unknown escapes
			if e != '\\' && e != '\'' && e != '"' {
				sb.WriteByte('\\')
			}
			sb.WriteByte(e)
		}
	}
	return sb.String(), nil
}

// unescapeRawUnicode decodes python's raw-unicode-escape, where only
// \uXXXX and \UXXXXXXXX are escapes.
func unescapeRawUnicode(s string) (string, error) {
	if !strings.Contains(s, `\u`) && !strings.Contains(s, `\U`) {
		return latin1(s), nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == 'u' || s[i+1] == 'U') {
			width := 4
			if s[i+1] == 'U' {
				width = 8
			}
			if i+2+width > len(s) {
				return "", fmt.Errorf("%w: truncated unicode escape", ErrMalformed)
			}
			n, err := strconv.ParseUint(s[i+2:i+2+width], 16, 32)
			if err != nil {
				return "", fmt.Errorf("%w: bad unicode escape", ErrMalformed)
			}
			sb.WriteRune(rune(n))
			i += 1 + width
			continue
		}
		sb.WriteString(latin1(s[i : i+1]))
	}
	return sb.String(), nil
}

// latin1 maps each byte to the code point of the same value, which is
// how raw-unicode-escape treats unescaped bytes.
func latin1(s string) string {
	out, err := charmap.ISO8859_1.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}
