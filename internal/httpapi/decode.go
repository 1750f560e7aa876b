package httpapi

import (
	"encoding"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/domain"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// decode fills req from a JSON body when the request carries one, and from
// the query string and form values otherwise. req keeps the defaults it
// was initialised with for every parameter left out. The result is
// validated against its struct tags.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, req any, fromForm func(*form)) error {
	if isJSON(r) {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(req); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		f := &form{values: r.Form}
		fromForm(f)
		if f.err != nil {
			return f.err
		}
	}
	return s.validate.Struct(req)
}

func isJSON(r *http.Request) bool {
	if r.Method == http.MethodGet || r.Body == nil || r.ContentLength == 0 {
		return false
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}

// form reads typed parameters from url.Values, keeping the first error.
// A parameter is looked up under its name and under "name[]", the way
// HTML forms send lists.
type form struct {
	values url.Values
	err    error
}

func (f *form) lookup(key string) ([]string, bool) {
	if v, ok := f.values[key]; ok && len(v) > 0 {
		return v, true
	}
	v, ok := f.values[key+"[]"]
	return v, ok && len(v) > 0
}

func (f *form) first(key string) (string, bool) {
	v, ok := f.lookup(key)
	if !ok {
		return "", false
	}
	return v[0], true
}

func (f *form) fail(key, raw string, err error) {
	if f.err == nil {
		f.err = fmt.Errorf("%w: %s=%q: %v", domain.ErrInvalidRequest, key, raw, err)
	}
}

func (f *form) str(key string, dst *string) {
	if v, ok := f.first(key); ok {
		*dst = v
	}
}

func (f *form) int(key string, dst *int) {
	v, ok := f.first(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		f.fail(key, v, err)
		return
	}
	*dst = n
}

func (f *form) int64(key string, dst *int64) {
	v, ok := f.first(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		f.fail(key, v, err)
		return
	}
	*dst = n
}

func (f *form) optInt64(key string, dst **int64) {
	if v, ok := f.first(key); !ok || strings.TrimSpace(v) == "" {
		return
	}
	var n int64
	f.int64(key, &n)
	*dst = &n
}

func (f *form) optInt(key string, dst **int) {
	if v, ok := f.first(key); !ok || strings.TrimSpace(v) == "" {
		return
	}
	var n int
	f.int(key, &n)
	*dst = &n
}

func (f *form) optBool(key string, dst **bool) {
	v, ok := f.first(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		f.fail(key, v, err)
		return
	}
	*dst = &b
}

func (f *form) float(key string, dst *float64) {
	v, ok := f.first(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		f.fail(key, v, err)
		return
	}
	*dst = n
}

// text decodes a scalar parameter through its TextUnmarshaler.
func (f *form) text(key string, dst encoding.TextUnmarshaler) {
	v, ok := f.first(key)
	if !ok {
		return
	}
	if err := dst.UnmarshalText([]byte(v)); err != nil {
		f.fail(key, v, err)
	}
}

// json decodes a parameter holding a JSON document.
func (f *form) json(key string, dst any) {
	v, ok := f.first(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	if err := json.Unmarshal([]byte(v), dst); err != nil {
		f.fail(key, v, err)
	}
}

// list returns the items of a list parameter given as repeated values, a
// comma separated string or a JSON array.
func (f *form) list(key string) []string {
	values, ok := f.lookup(key)
	if !ok {
		return nil
	}
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if strings.HasPrefix(v, "[") {
			var items []any
			if err := json.Unmarshal([]byte(v), &items); err != nil {
				f.fail(key, v, err)
				return nil
			}
			for _, it := range items {
				out = append(out, fmt.Sprint(it))
			}
			continue
		}
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func (f *form) strs(key string, dst *[]string) {
	if items := f.list(key); items != nil {
		*dst = items
	}
}

func (f *form) int64s(key string, dst *[]int64) {
	items := f.list(key)
	if items == nil {
		return
	}
	out := make([]int64, 0, len(items))
	for _, it := range items {
		n, err := strconv.ParseInt(it, 10, 64)
		if err != nil {
			f.fail(key, it, err)
			return
		}
		out = append(out, n)
	}
	*dst = out
}

func (f *form) floats(key string, dst *[]float64) {
	items := f.list(key)
	if items == nil {
		return
	}
	out := make([]float64, 0, len(items))
	for _, it := range items {
		n, err := strconv.ParseFloat(it, 64)
		if err != nil {
			f.fail(key, it, err)
			return
		}
		out = append(out, n)
	}
	*dst = out
}

func (f *form) condition(key string, dst *contract.Condition) {
	v, ok := f.first(key)
	if !ok {
		return
	}
	c, err := contract.ParseCondition(v)
	if err != nil {
		if f.err == nil {
			f.err = err
		}
		return
	}
	*dst = c
}
