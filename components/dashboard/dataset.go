package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DataType selects which agricultural dataset a visualization shows.
type DataType string

const (
	DataTypeCrops     DataType = "crops"
	DataTypeLivestock DataType = "livestock"
	DataTypeMarket    DataType = "market"
	DataTypeWeather   DataType = "weather"
)

var errInvalidDataType = errors.New("dashboard: unknown data type")

// DataTypes lists the supported dataset selectors in display order.
func DataTypes() []DataType {
	return []DataType{DataTypeCrops, DataTypeLivestock, DataTypeMarket, DataTypeWeather}
}

// ParseDataType validates a transport value. Empty input selects crops.
func ParseDataType(value string) (DataType, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return DataTypeCrops, nil
	}
	for _, dt := range DataTypes() {
		if string(dt) == value {
			return dt, nil
		}
	}
	return "", fmt.Errorf("%w: %q", errInvalidDataType, value)
}

// ValueKind distinguishes string cells from numeric ones.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindNumber
)

// Value is a dataset cell: either a string or a number.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
}

// StringValue wraps s.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// NumberValue wraps n.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// IsNumber reports whether the value holds a number.
func (v Value) IsNumber() bool { return v.Kind == KindNumber }

// String renders numbers with the shortest exact representation and strings verbatim.
// Negative zero renders as "0".
func (v Value) String() string {
	if v.Kind == KindNumber {
		if v.Num == 0 {
			return "0"
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.Str
}

// Interface returns the value as a plain Go value for templates and JSON.
func (v Value) Interface() any {
	if v.Kind == KindNumber {
		return v.Num
	}
	return v.Str
}

// MarshalJSON emits a JSON number or string.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON accepts JSON numbers and strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	converted, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = converted
	return nil
}

// UnmarshalYAML maps int/float scalars to numbers and every other scalar to a string.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("dashboard: line %d: dataset value must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!int", "!!float":
		n, err := strconv.ParseFloat(strings.TrimPrefix(node.Value, "+"), 64)
		if err != nil {
			return fmt.Errorf("dashboard: line %d: %w", node.Line, err)
		}
		*v = NumberValue(n)
	default:
		*v = StringValue(node.Value)
	}
	return nil
}

// ValueOf converts driver and decoder output into a Value.
func ValueOf(raw any) (Value, error) {
	switch val := raw.(type) {
	case nil:
		return StringValue(""), nil
	case string:
		return StringValue(val), nil
	case []byte:
		return StringValue(string(val)), nil
	case json.Number:
		n, err := val.Float64()
		if err != nil {
			return Value{}, err
		}
		return NumberValue(n), nil
	case float64:
		return NumberValue(val), nil
	case float32:
		return NumberValue(float64(val)), nil
	case int:
		return NumberValue(float64(val)), nil
	case int32:
		return NumberValue(float64(val)), nil
	case int64:
		return NumberValue(float64(val)), nil
	case uint64:
		return NumberValue(float64(val)), nil
	case bool:
		return StringValue(strconv.FormatBool(val)), nil
	case fmt.Stringer:
		return StringValue(val.String()), nil
	default:
		return Value{}, fmt.Errorf("dashboard: unsupported dataset value %T", raw)
	}
}

// Field is a named cell inside a record.
type Field struct {
	Name  string
	Value Value
}

// Record is an ordered list of fields. Field order is significant: it defines table columns.
type Record struct {
	Fields []Field
}

// NewRecord builds a record from the given fields.
func NewRecord(fields ...Field) Record {
	return Record{Fields: append([]Field(nil), fields...)}
}

// Get returns the named field value.
func (r Record) Get(name string) (Value, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Names returns field names in record order.
func (r Record) Names() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

// Map flattens the record for templates. Ordering is lost.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.Fields))
	for _, f := range r.Fields {
		out[f.Name] = f.Value.Interface()
	}
	return out
}

// UnmarshalYAML decodes a mapping node keeping key order.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("dashboard: line %d: dataset record must be a mapping", node.Line)
	}
	fields := make([]Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var value Value
		if err := node.Content[i+1].Decode(&value); err != nil {
			return err
		}
		fields = append(fields, Field{Name: node.Content[i].Value, Value: value})
	}
	r.Fields = fields
	return nil
}

// MarshalJSON writes the record as an object preserving field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("dashboard: dataset record must be a JSON object")
	}
	var fields []Field
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		value, err := ValueOf(raw)
		if err != nil {
			return fmt.Errorf("dashboard: field %s: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Value: value})
	}
	r.Fields = fields
	return nil
}

// Dataset is an ordered list of records of (nominally) the same shape.
type Dataset struct {
	Type    DataType
	Records []Record
}

// Len returns the record count.
func (d Dataset) Len() int { return len(d.Records) }

// Clone returns a deep copy so callers cannot mutate shared fixtures.
func (d Dataset) Clone() Dataset {
	out := Dataset{Type: d.Type, Records: make([]Record, len(d.Records))}
	for i, rec := range d.Records {
		out.Records[i] = Record{Fields: append([]Field(nil), rec.Fields...)}
	}
	return out
}
