package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SyntaxError reports malformed input together with its position when the
// underlying decoder exposes one.
type SyntaxError struct {
	Pos Pos
	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	if e.Pos.IsZero() {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// DecodeJSON decodes a JSON document. Object key order is preserved, which
// encoding/json does not do when unmarshalling into maps, so the decoder
// walks the token stream directly.
func DecodeJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeJSONValue(dec, data)
	if err != nil {
		return nil, jsonSyntaxError(err, dec, data)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &SyntaxError{Pos: offsetPos(data, dec.InputOffset()), Msg: "unexpected data after top-level value"}
	}
	return root, nil
}

func decodeJSONValue(dec *json.Decoder, data []byte) (*Node, error) {
	pos := valuePos(data, dec.InputOffset())
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			m := NewMap(pos)
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key must be a string")
				}
				val, err := decodeJSONValue(dec, data)
				if err != nil {
					return nil, err
				}
				m.Set(key, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			l := NewList(pos)
			for dec.More() {
				item, err := decodeJSONValue(dec, data)
				if err != nil {
					return nil, err
				}
				l.Items = append(l.Items, item)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return l, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", v)
	case string:
		return NewScalar(KindString, v, pos), nil
	case json.Number:
		return NewScalar(KindNumber, v.String(), pos), nil
	case bool:
		return NewScalar(KindBool, strconv.FormatBool(v), pos), nil
	case nil:
		return NewNull(pos), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func jsonSyntaxError(err error, dec *json.Decoder, data []byte) error {
	var se *json.SyntaxError
	if errors.As(err, &se) {
		return &SyntaxError{Pos: offsetPos(data, se.Offset), Msg: se.Error(), Err: err}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &SyntaxError{Pos: offsetPos(data, int64(len(data))), Msg: "unexpected end of JSON input", Err: err}
	}
	return &SyntaxError{Pos: offsetPos(data, dec.InputOffset()), Msg: err.Error(), Err: err}
}

// valuePos returns the position of the next value after offset, skipping
// the whitespace and separators the decoder has not consumed yet.
func valuePos(data []byte, offset int64) Pos {
	for offset < int64(len(data)) && strings.ContainsRune(" \t\r\n,:", rune(data[offset])) {
		offset++
	}
	return offsetPos(data, offset)
}

// offsetPos converts a byte offset into a 1-based line and column.
func offsetPos(data []byte, offset int64) Pos {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	head := data[:offset]
	line := bytes.Count(head, []byte{'\n'}) + 1
	col := int(offset) - bytes.LastIndexByte(head, '\n')
	return Pos{Line: line, Column: col}
}

// DecodeYAML decodes the first document of a YAML stream. Keys are taken
// from the raw scalar text so numeric keys such as 500 stay strings.
func DecodeYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SyntaxError{Msg: strings.TrimPrefix(err.Error(), "yaml: "), Err: err}
	}
	if doc.Kind == 0 {
		return NewNull(Pos{}), nil
	}
	return convertYAML(&doc, nil)
}

func convertYAML(n *yaml.Node, seen map[*yaml.Node]bool) (*Node, error) {
	pos := Pos{Line: n.Line, Column: n.Column}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewNull(pos), nil
		}
		return convertYAML(n.Content[0], seen)
	case yaml.AliasNode:
		if seen == nil {
			seen = make(map[*yaml.Node]bool)
		}
		if seen[n.Alias] {
			return nil, &SyntaxError{Pos: pos, Msg: "recursive alias"}
		}
		seen[n.Alias] = true
		defer delete(seen, n.Alias)
		return convertYAML(n.Alias, seen)
	case yaml.MappingNode:
		m := NewMap(pos)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind != yaml.ScalarNode {
				return nil, &SyntaxError{Pos: Pos{Line: k.Line, Column: k.Column}, Msg: "mapping key must be a scalar"}
			}
			val, err := convertYAML(v, seen)
			if err != nil {
				return nil, err
			}
			if k.ShortTag() == "!!merge" {
				Merge(m, val)
				continue
			}
			m.Set(k.Value, val)
		}
		return m, nil
	case yaml.SequenceNode:
		l := NewList(pos)
		for _, c := range n.Content {
			item, err := convertYAML(c, seen)
			if err != nil {
				return nil, err
			}
			l.Items = append(l.Items, item)
		}
		return l, nil
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return NewNull(pos), nil
		case "!!bool":
			return NewScalar(KindBool, strings.ToLower(n.Value), pos), nil
		case "!!int", "!!float":
			return NewScalar(KindNumber, n.Value, pos), nil
		default:
			return NewScalar(KindString, n.Value, pos), nil
		}
	}
	return nil, &SyntaxError{Pos: pos, Msg: fmt.Sprintf("unsupported YAML node kind %d", n.Kind)}
}

// DecodeTOML decodes a TOML document. TOML tables are unordered once
// decoded, so keys are sorted with numeric keys in numeric order.
func DecodeTOML(data []byte) (*Node, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, &SyntaxError{Pos: Pos{Line: row, Column: col}, Msg: de.Error(), Err: err}
		}
		return nil, &SyntaxError{Msg: err.Error(), Err: err}
	}
	return FromValue(raw), nil
}

// FromValue converts a generic decoded value (maps, slices, scalars) into a
// Node. Positions are unknown.
func FromValue(v any) *Node {
	switch x := v.(type) {
	case nil:
		return NewNull(Pos{})
	case map[string]any:
		m := NewMap(Pos{})
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		SortKeys(keys)
		for _, k := range keys {
			m.Set(k, FromValue(x[k]))
		}
		return m
	case []any:
		l := NewList(Pos{})
		for _, item := range x {
			l.Items = append(l.Items, FromValue(item))
		}
		return l
	case []map[string]any:
		l := NewList(Pos{})
		for _, item := range x {
			l.Items = append(l.Items, FromValue(item))
		}
		return l
	case string:
		return NewScalar(KindString, x, Pos{})
	case bool:
		return NewScalar(KindBool, strconv.FormatBool(x), Pos{})
	case int64:
		return NewScalar(KindNumber, strconv.FormatInt(x, 10), Pos{})
	case int:
		return NewScalar(KindNumber, strconv.Itoa(x), Pos{})
	case float64:
		return NewScalar(KindNumber, strconv.FormatFloat(x, 'g', -1, 64), Pos{})
	default:
		return NewExpr(fmt.Sprint(x), "", Pos{})
	}
}

// SortKeys orders keys so that numeric keys come first in numeric order,
// followed by the remaining keys lexically. This keeps shade palettes in
// their natural 50, 100, ... 900 order.
func SortKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		ni, ei := strconv.Atoi(keys[i])
		nj, ej := strconv.Atoi(keys[j])
		switch {
		case ei == nil && ej == nil:
			return ni < nj
		case ei == nil:
			return true
		case ej == nil:
			return false
		}
		return keys[i] < keys[j]
	})
}
