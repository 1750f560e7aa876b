package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/dropdown/internal/domain"
)

// Flag is a boolean parameter that also accepts 0/1 and their string forms,
// as sent by HTML forms.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return f.UnmarshalText([]byte(s))
	}
	return f.UnmarshalText(data)
}

func (f *Flag) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "0", "false", "null", "off", "no":
		*f = false
	case "1", "true", "on", "yes":
		*f = true
	default:
		return fmt.Errorf("%w: %q is not a boolean", domain.ErrInvalidRequest, text)
	}
	return nil
}

// EntityRestrict narrows a listing to explicit entities. The zero value
// means "the active entities of the session".
type EntityRestrict struct {
	IDs []int64
	// Default selects the default entity of the session.
	Default bool
}

// ParseEntityRestrict accepts an integer, a JSON list such as "[1,2]", a
// comma separated list, or "default". Negative values and the empty string
// leave the restriction unset.
func ParseEntityRestrict(raw string) (EntityRestrict, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return EntityRestrict{}, nil
	case strings.EqualFold(raw, "default"):
		return EntityRestrict{Default: true}, nil
	case strings.HasPrefix(raw, "["):
		var items []json.RawMessage
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return EntityRestrict{}, fmt.Errorf("%w: entity_restrict %q", domain.ErrInvalidRequest, raw)
		}
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = strings.Trim(string(it), `" `)
		}
		return entityList(raw, parts)
	}
	return entityList(raw, strings.Split(raw, ","))
}

func entityList(raw string, parts []string) (EntityRestrict, error) {
	var ids []int64
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return EntityRestrict{}, fmt.Errorf("%w: entity_restrict %q", domain.ErrInvalidRequest, raw)
		}
		if id >= 0 && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return EntityRestrict{IDs: ids}, nil
}

// IsSet reports whether the restriction overrides the session entities.
func (e EntityRestrict) IsSet() bool {
	return e.Default || len(e.IDs) > 0
}

// Multi reports whether more than one entity was requested.
func (e EntityRestrict) Multi() bool {
	return len(e.IDs) > 1
}

// String returns the canonical form IDOR tokens are bound to.
func (e EntityRestrict) String() string {
	switch {
	case e.Default:
		return "default"
	case len(e.IDs) == 0:
		return ""
	}
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (e *EntityRestrict) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*e = EntityRestrict{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}
	parsed, err := ParseEntityRestrict(raw)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

func (e EntityRestrict) MarshalJSON() ([]byte, error) {
	if !e.IsSet() {
		return []byte("null"), nil
	}
	return json.Marshal(e.String())
}

func (e *EntityRestrict) UnmarshalText(text []byte) error {
	parsed, err := ParseEntityRestrict(string(text))
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// Condition restricts a listing either with inline filters or with the key
// of filters stored in the session.
type Condition struct {
	Filters []domain.Filter
	Key     string
}

// IsZero reports whether no condition was given.
func (c Condition) IsZero() bool {
	return len(c.Filters) == 0 && c.Key == ""
}

// ParseCondition decodes a JSON list or map of filters, or treats raw as a
// session key.
func ParseCondition(raw string) (Condition, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Condition{}, nil
	}
	if raw[0] != '[' && raw[0] != '{' {
		return Condition{Key: raw}, nil
	}
	var c Condition
	if err := c.UnmarshalJSON([]byte(raw)); err != nil {
		return Condition{}, err
	}
	return c, nil
}

func (c *Condition) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = Condition{}
		return nil
	}
	switch data[0] {
	case '"':
		var key string
		if err := json.Unmarshal(data, &key); err != nil {
			return err
		}
		*c = Condition{Key: strings.TrimSpace(key)}
	case '[':
		var filters []domain.Filter
		if err := json.Unmarshal(data, &filters); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidCondition, err)
		}
		*c = Condition{Filters: filters}
	case '{':
		var m map[string]any
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidCondition, err)
		}
		*c = Condition{Filters: filtersFromMap(m)}
	default:
		return fmt.Errorf("%w: unsupported condition %s", domain.ErrInvalidCondition, data)
	}
	return nil
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if c.Key != "" {
		return json.Marshal(c.Key)
	}
	if c.Filters == nil {
		return []byte("null"), nil
	}
	return json.Marshal(c.Filters)
}

// filtersFromMap converts the column-keyed form: {"name": ["LIKE", "%3%"]}
// applies an operator, {"id": [1, 2]} is a list match and a scalar is an
// equality. Columns are visited in sorted order.
func filtersFromMap(m map[string]any) []domain.Filter {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)

	filters := make([]domain.Filter, 0, len(cols))
	for _, col := range cols {
		switch v := m[col].(type) {
		case []any:
			if len(v) == 2 {
				if op, ok := v[0].(string); ok && isOperator(op) {
					filters = append(filters, domain.Filter{Field: col, Operator: domain.Operator(strings.ToUpper(op)), Value: v[1]})
					continue
				}
			}
			filters = append(filters, domain.Filter{Field: col, Operator: domain.OpIn, Value: v})
		default:
			filters = append(filters, domain.Filter{Field: col, Operator: domain.OpEq, Value: v})
		}
	}
	return filters
}

func isOperator(op string) bool {
	f := domain.Filter{Operator: domain.Operator(op)}.Normalized()
	switch f.Operator {
	case domain.OpEq, domain.OpNeq, domain.OpLt, domain.OpLte, domain.OpGt, domain.OpGte,
		domain.OpLike, domain.OpNotLike, domain.OpIn, domain.OpNotIn:
		return true
	}
	return false
}

// Extra is a synthetic entry listed before the rows of a dropdown.
type Extra struct {
	ID   any    `json:"id"`
	Text string `json:"text"`
}

// Extras keeps the order the entries were given in. It decodes from an
// object ({"key": "label"}) or a list of {id, text}.
type Extras []Extra

func (x *Extras) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*x = nil
		return nil
	}
	if data[0] == '[' {
		var list []Extra
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("%w: toadd: %v", domain.ErrInvalidRequest, err)
		}
		for i := range list {
			list[i].ID = normalizeID(list[i].ID)
		}
		*x = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return fmt.Errorf("%w: toadd must be an object or a list", domain.ErrInvalidRequest)
	}
	var out Extras
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: toadd: %v", domain.ErrInvalidRequest, err)
		}
		key, _ := tok.(string)
		var label any
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("%w: toadd: %v", domain.ErrInvalidRequest, err)
		}
		out = append(out, Extra{ID: keyID(key), Text: fmt.Sprint(label)})
	}
	*x = out
	return nil
}

// Has reports whether an entry with the given numeric id exists.
func (x Extras) Has(id float64) bool {
	for _, e := range x {
		switch v := e.ID.(type) {
		case int64:
			if float64(v) == id {
				return true
			}
		case float64:
			if v == id {
				return true
			}
		}
	}
	return false
}

// keyID turns an object key into an integer ID when it looks like one.
func keyID(key string) any {
	if n, err := strconv.ParseInt(key, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(key, 64); err == nil {
		return f
	}
	return key
}

func normalizeID(v any) any {
	switch n := v.(type) {
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n)
		}
	case string:
		return keyID(n)
	}
	return v
}
