package repository

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/alexanderramin/dropdown/internal/domain"
)

// boolToInt converts a Go bool to an integer (0 or 1) for storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a stored integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// nullableString stores an empty string as SQL NULL.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableID stores a nil parent as SQL NULL.
func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

func stringOrEmpty(s sql.NullString) string {
	if !s.Valid {
		return ""
	}
	return s.String
}

// makeTextSearchValue turns user search text into a LIKE pattern. A
// leading "^" anchors the match at the start and a trailing "$" at the
// end; otherwise the text may appear anywhere. LIKE wildcards typed by the
// user are escaped with a backslash.
func makeTextSearchValue(text string) string {
	text = strings.TrimSpace(text)
	prefix, suffix := "%", "%"
	if strings.HasPrefix(text, "^") {
		text = text[1:]
		prefix = ""
	}
	if strings.HasSuffix(text, "$") {
		text = text[:len(text)-1]
		suffix = ""
	}
	return prefix + escapeLike(text) + suffix
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// isIntegerText reports whether s is a plain integer, so it may be matched
// against ID columns.
func isIntegerText(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

// placeholders returns "?, ?, ?" for n values.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
