package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnsupportedShape is returned when a payload is neither an object nor a list
var ErrUnsupportedShape = errors.New("unsupported payload shape")

// Item is one object from an upstream feed
type Item map[string]any

// Payload is the decoded form of a feed response. It is closed: the only
// implementations are Wrapped, List and Single.
type Payload interface {
	// Items returns the object entries in upstream order; non-objects are dropped
	Items() []Item
	isPayload()
}

// Wrapped is a {"data": [...]} response
type Wrapped struct {
	Data []any
}

// List is a bare JSON array response
type List []any

// Single is a bare JSON object response, treated as a one-item list
type Single struct {
	Item Item
}

func (Wrapped) isPayload() {}
func (List) isPayload()    {}
func (Single) isPayload()  {}

// Items implements Payload
func (w Wrapped) Items() []Item { return objects(w.Data) }

// Items implements Payload
func (l List) Items() []Item { return objects(l) }

// Items implements Payload
func (s Single) Items() []Item { return []Item{s.Item} }

// DecodePayload parses raw JSON into one of the three payload shapes
func DecodePayload(raw []byte) (Payload, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrap(err, "decode payload")
	}
	return FromValue(v)
}

// FromValue classifies an already decoded JSON value
func FromValue(v any) (Payload, error) {
	switch t := v.(type) {
	case map[string]any:
		if data, ok := t["data"].([]any); ok {
			return Wrapped{Data: data}, nil
		}
		return Single{Item: Item(t)}, nil
	case []any:
		return List(t), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedShape, "%T", v)
	}
}

// Normalize returns the uniform item list for any decoded value; unsupported shapes yield nil
func Normalize(v any) []Item {
	if v == nil {
		return nil
	}
	p, err := FromValue(v)
	if err != nil {
		return nil
	}
	return p.Items()
}

func objects(vs []any) []Item {
	out := make([]Item, 0, len(vs))
	for _, v := range vs {
		if m, ok := v.(map[string]any); ok {
			out = append(out, Item(m))
		}
	}
	return out
}

// String renders the value at key as text. Missing and null values are "".
func (it Item) String(key string) string {
	return stringify(it[key])
}

// First returns the first non-empty value among keys, stringified. Numeric
// zero and boolean false count as empty; the strings "0" and "false" do not.
func (it Item) First(keys ...string) string {
	for _, k := range keys {
		if isZero(it[k]) {
			continue
		}
		if s := it.String(k); s != "" {
			return s
		}
	}
	return ""
}

func isZero(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	case json.Number:
		f, err := v.Float64()
		return err == nil && f == 0
	default:
		return false
	}
}

// Int64 parses the value at key as an integer; anything unparsable is 0
func (it Item) Int64(key string) int64 {
	switch v := it[key].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Lower returns the trimmed, lowercased string value at key
func (it Item) Lower(key string) string {
	return strings.ToLower(strings.TrimSpace(it.String(key)))
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
