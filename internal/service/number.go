package service

import (
	"context"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/alexanderramin/dropdown/internal/format"
	"github.com/alexanderramin/dropdown/internal/session"
)

// maxNumberSteps bounds the values scanned for one page.
const maxNumberSteps = 1_000_000

// Number lists the values from req.Min to req.Max by req.Step. Without a
// maximum the range stops after the display maximum count of steps. When
// nothing matches, a single value clamped to the range is offered.
func (s *dropdownService) Number(ctx context.Context, sess *session.Session, req contract.NumberRequest) (res *contract.Results, err error) {
	defer observe(ctx, s.observer, "dropdown-number", time.Now(), map[string]any{"unit": req.Unit}, &err)

	step := req.Step
	if step <= 0 {
		step = 1
	}
	upper := req.Max
	if upper == 0 {
		upper = float64(s.settings.Max) * step
	}
	page, limit, start := s.pageBounds(req.Page, req.PageLimit)
	search := strings.TrimSpace(req.SearchText)
	decimals := max(format.DecimalCount(step), format.DecimalCount(req.Min))

	var values []float64
	for k := 0; k < maxNumberSteps && len(values) < start+limit; k++ {
		v := format.Round(req.Min+float64(k)*step, decimals)
		if v > upper {
			break
		}
		if search != "" && !strings.Contains(format.Trim(v), search) {
			continue
		}
		if slices.Contains(req.Used, v) {
			continue
		}
		values = append(values, v)
	}

	results := []contract.Option{}
	if page == 1 {
		results = append(results, extraOptions(req.ToAdd)...)
	}
	count := 0
	switch {
	case len(values) > 0:
		if start < len(values) {
			for _, v := range values[start:] {
				results = append(results, contract.Option{ID: v, Text: s.numberText(sess, v, req.Unit, step)})
				count++
			}
		}
	case !req.ToAdd.Has(-1):
		v := -1.0
		if v < req.Min {
			v = req.Min
		} else if v > upper {
			v = upper
		}
		results = append(results, contract.Option{ID: v, Text: s.numberText(sess, v, req.Unit, step)})
		count++
	}
	return &contract.Results{Results: results, Count: count}, nil
}

func (s *dropdownService) numberText(sess *session.Session, v float64, unit string, step float64) string {
	if unit == "" {
		return format.Trim(v)
	}
	decimals := 0
	if v != math.Trunc(v) {
		decimals = format.DecimalCount(step)
	}
	return format.FloatWithUnit(v, unit, decimals, numberFormat(sess))
}
