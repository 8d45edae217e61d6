package rpc

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	sdkmath "cosmossdk.io/math"
)

// ParamKind identifies which variant of Param is populated.
type ParamKind int

const (
	ParamAbsent ParamKind = iota
	ParamBool
	ParamInt
	ParamFloat
	ParamDecimal
	ParamString
	ParamMessage
	ParamObject
	ParamArray
)

var paramKindNames = map[ParamKind]string{
	ParamAbsent:  "absent",
	ParamBool:    "bool",
	ParamInt:     "int",
	ParamFloat:   "float",
	ParamDecimal: "decimal",
	ParamString:  "string",
	ParamMessage: "message",
	ParamObject:  "object",
	ParamArray:   "array",
}

func (k ParamKind) String() string {
	if name, ok := paramKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ParamKind(%d)", int(k))
}

// Param is one positional argument of a client call. It is a closed union:
// values are only built through the constructors below, so the encoder can
// switch over every kind.
type Param struct {
	kind  ParamKind
	b     bool
	i     int64
	f     float64
	d     sdkmath.LegacyDec
	s     string
	obj   any
	items []Param
}

// Absent marks an optional argument that was not supplied.
func Absent() Param { return Param{kind: ParamAbsent} }

func Bool(v bool) Param { return Param{kind: ParamBool, b: v} }

func Int(v int64) Param { return Param{kind: ParamInt, i: v} }

func Float(v float64) Param { return Param{kind: ParamFloat, f: v} }

// Decimal is an exact amount, e.g. a native currency quantity.
func Decimal(v sdkmath.LegacyDec) Param { return Param{kind: ParamDecimal, d: v} }

func String(v string) Param { return Param{kind: ParamString, s: v} }

// Message is signed-message text. Its spaces are replaced by the client's
// space sentinel to match how the node parses message arguments.
func Message(v string) Param { return Param{kind: ParamMessage, s: v} }

// Object is any value that serializes to JSON: structs, maps, raw JSON.
func Object(v any) Param { return Param{kind: ParamObject, obj: v} }

// Array is a JSON array built from other params.
func Array(items ...Param) Param {
	return Param{kind: ParamArray, items: append([]Param(nil), items...)}
}

// Strings is shorthand for an Array of String params.
func Strings(values ...string) Param {
	items := make([]Param, len(values))
	for i, v := range values {
		items[i] = String(v)
	}
	return Param{kind: ParamArray, items: items}
}

// Kind returns the populated variant.
func (p Param) Kind() ParamKind { return p.kind }

// IsAbsent reports whether p is an unsupplied optional argument.
func (p Param) IsAbsent() bool { return p.kind == ParamAbsent }

// token renders p as one command-line argument.
func (p Param) token(sentinel string) (string, error) {
	switch p.kind {
	case ParamAbsent:
		return "", nil
	case ParamBool:
		return strconv.FormatBool(p.b), nil
	case ParamInt:
		return strconv.FormatInt(p.i, 10), nil
	case ParamFloat:
		return formatFloat(p.f)
	case ParamDecimal:
		return formatDecimal(p.d)
	case ParamString:
		return p.s, nil
	case ParamMessage:
		return strings.ReplaceAll(p.s, " ", sentinel), nil
	case ParamObject, ParamArray:
		v, err := p.jsonValue()
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("cannot serialize %s parameter: %w", p.kind, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown parameter kind %s", p.kind)
	}
}

// jsonValue returns the value p takes inside a JSON document.
func (p Param) jsonValue() (any, error) {
	switch p.kind {
	case ParamAbsent:
		return nil, nil
	case ParamBool:
		return p.b, nil
	case ParamInt:
		return p.i, nil
	case ParamFloat:
		s, err := formatFloat(p.f)
		if err != nil {
			return nil, err
		}
		return json.Number(s), nil
	case ParamDecimal:
		s, err := formatDecimal(p.d)
		if err != nil {
			return nil, err
		}
		return json.Number(s), nil
	case ParamString, ParamMessage:
		return p.s, nil
	case ParamObject:
		data, err := json.Marshal(p.obj)
		if err != nil {
			return nil, fmt.Errorf("cannot serialize object parameter: %w", err)
		}
		return json.RawMessage(data), nil
	case ParamArray:
		values := make([]any, len(p.items))
		for i, item := range p.items {
			v, err := item.jsonValue()
			if err != nil {
				return nil, fmt.Errorf("array item %d: %w", i, err)
			}
			values[i] = v
		}
		return values, nil
	default:
		return nil, fmt.Errorf("unknown parameter kind %s", p.kind)
	}
}

func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("float parameter %v is not representable", f)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// formatDecimal prints d without trailing fractional zeros.
func formatDecimal(d sdkmath.LegacyDec) (string, error) {
	if d.IsNil() {
		return "", fmt.Errorf("decimal parameter is nil")
	}
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s, nil
}
