package questionnaire

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueNumber
	ValueText
	ValueStringList
	ValueBool
)

// Value is the closed union of answer payloads: number, text, string list or
// bool. The zero Value means "not answered".
type Value struct {
	kind ValueKind
	num  float64
	str  string
	list []string
	b    bool
}

func Number(n float64) Value {
	return Value{kind: ValueNumber, num: n}
}

func Text(s string) Value {
	return Value{kind: ValueText, str: s}
}

func StringList(items ...string) Value {
	list := make([]string, len(items))
	copy(list, items)
	return Value{kind: ValueStringList, list: list}
}

func Bool(v bool) Value {
	return Value{kind: ValueBool, b: v}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) Number() (float64, bool) {
	return v.num, v.kind == ValueNumber
}

func (v Value) Text() (string, bool) {
	return v.str, v.kind == ValueText
}

func (v Value) StringList() ([]string, bool) {
	if v.kind != ValueStringList {
		return nil, false
	}
	list := make([]string, len(v.list))
	copy(list, v.list)
	return list, true
}

func (v Value) Bool() (bool, bool) {
	return v.b, v.kind == ValueBool
}

// IsEmpty reports whether the value counts as "not answered" for required
// checks: unset, empty string or empty list.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case ValueEmpty:
		return true
	case ValueText:
		return strings.TrimSpace(v.str) == ""
	case ValueStringList:
		return len(v.list) == 0
	default:
		return false
	}
}

// AsNumber coerces the value to a float: numbers pass through, numeric text
// is parsed. Lists and bools are never numbers.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case ValueNumber:
		return v.num, true
	case ValueText:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// Equal compares two values by kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueNumber:
		return v.num == other.num
	case ValueText:
		return v.str == other.str
	case ValueBool:
		return v.b == other.b
	case ValueStringList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if v.list[i] != other.list[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueEmpty:
		return []byte("null"), nil
	case ValueNumber:
		return json.Marshal(v.num)
	case ValueText:
		return json.Marshal(v.str)
	case ValueStringList:
		return json.Marshal(v.list)
	case ValueBool:
		return json.Marshal(v.b)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, err := fromInterface(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func (v Value) MarshalYAML() (interface{}, error) {
	switch v.kind {
	case ValueEmpty:
		return nil, nil
	case ValueNumber:
		return v.num, nil
	case ValueText:
		return v.str, nil
	case ValueStringList:
		return v.list, nil
	case ValueBool:
		return v.b, nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	val, err := fromInterface(raw)
	if err != nil {
		return err
	}
	*v = val
	return nil
}

func fromInterface(raw interface{}) (Value, error) {
	switch t := raw.(type) {
	case nil:
		return Value{}, nil
	case float64:
		return Number(t), nil
	case int:
		return Number(float64(t)), nil
	case int64:
		return Number(float64(t)), nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	case []interface{}:
		list := make([]string, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return Value{}, fmt.Errorf("answer lists may only contain strings, got %T", item)
			}
			list[i] = s
		}
		return Value{kind: ValueStringList, list: list}, nil
	default:
		return Value{}, fmt.Errorf("unsupported answer value type %T", raw)
	}
}

// Answers maps question ids to answer values. It is owned by the session
// filling it out; the engine only ever reads it.
type Answers map[string]Value

// Text is a convenience lookup for conditions keyed on choice answers.
func (a Answers) Text(id string) string {
	s, _ := a[id].Text()
	return s
}

// Contains reports whether a string-list answer includes item.
func (a Answers) Contains(id, item string) bool {
	list, ok := a[id].StringList()
	if !ok {
		return false
	}
	for _, s := range list {
		if s == item {
			return true
		}
	}
	return false
}
