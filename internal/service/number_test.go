package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/dropdown/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber(t *testing.T) {
	env := setupEnv(t)
	sess := env.login(t, "_test_user")

	tests := []struct {
		name      string
		req       func(*contract.NumberRequest)
		want      []contract.Option
		wantCount int
	}{
		{
			name: "plain range",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max = 1, 4 },
			want: []contract.Option{
				{ID: 1.0, Text: "1"}, {ID: 2.0, Text: "2"}, {ID: 3.0, Text: "3"}, {ID: 4.0, Text: "4"},
			},
			wantCount: 4,
		},
		{
			name: "fractional step",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.Step = 10, 20, 2.5 },
			want: []contract.Option{
				{ID: 10.0, Text: "10"}, {ID: 12.5, Text: "12.5"}, {ID: 15.0, Text: "15"},
				{ID: 17.5, Text: "17.5"}, {ID: 20.0, Text: "20"},
			},
			wantCount: 5,
		},
		{
			name: "step without rounding noise",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.Step = 0, 0.3, 0.1 },
			want: []contract.Option{
				{ID: 0.0, Text: "0"}, {ID: 0.1, Text: "0.1"}, {ID: 0.2, Text: "0.2"}, {ID: 0.3, Text: "0.3"},
			},
			wantCount: 4,
		},
		{
			name: "search",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.SearchText = 1, 20, "2" },
			want: []contract.Option{
				{ID: 2.0, Text: "2"}, {ID: 12.0, Text: "12"}, {ID: 20.0, Text: "20"},
			},
			wantCount: 3,
		},
		{
			name: "used values are skipped",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.Used = 1, 3, []float64{1, 2} },
			want: []contract.Option{
				{ID: 3.0, Text: "3"},
			},
			wantCount: 1,
		},
		{
			name: "toadd comes first",
			req: func(r *contract.NumberRequest) {
				r.Min, r.Max = 1, 2
				r.ToAdd = contract.Extras{{ID: int64(-1), Text: "Unlimited"}}
			},
			want: []contract.Option{
				{ID: int64(-1), Text: "Unlimited"}, {ID: 1.0, Text: "1"}, {ID: 2.0, Text: "2"},
			},
			wantCount: 2,
		},
		{
			name: "time unit",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.Unit = 1, 3, "second" },
			want: []contract.Option{
				{ID: 1.0, Text: "1 second"}, {ID: 2.0, Text: "2 seconds"}, {ID: 3.0, Text: "3 seconds"},
			},
			wantCount: 3,
		},
		{
			name: "fractional unit value",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.Step, r.Unit = 1, 2, 0.5, "hour" },
			want: []contract.Option{
				{ID: 1.0, Text: "1 hour"}, {ID: 1.5, Text: "1.5 hours"}, {ID: 2.0, Text: "2 hours"},
			},
			wantCount: 3,
		},
		{
			name: "auto unit",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.Step, r.Unit = 1024, 2048, 1024, "auto" },
			want: []contract.Option{
				{ID: 1024.0, Text: "1024 Mio"}, {ID: 2048.0, Text: "2 Gio"},
			},
			wantCount: 2,
		},
		{
			name: "no match falls back to the minimum",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.SearchText = 1, 10, "abc" },
			want: []contract.Option{
				{ID: 1.0, Text: "1"},
			},
			wantCount: 1,
		},
		{
			name: "no fallback when -1 is already offered",
			req: func(r *contract.NumberRequest) {
				r.Min, r.Max, r.SearchText = 1, 10, "abc"
				r.ToAdd = contract.Extras{{ID: int64(-1), Text: "Never"}}
			},
			want: []contract.Option{
				{ID: int64(-1), Text: "Never"},
			},
			wantCount: 0,
		},
		{
			name: "second page",
			req:  func(r *contract.NumberRequest) { r.Min, r.Max, r.Page, r.PageLimit = 1, 20, 2, 5 },
			want: []contract.Option{
				{ID: 6.0, Text: "6"}, {ID: 7.0, Text: "7"}, {ID: 8.0, Text: "8"}, {ID: 9.0, Text: "9"}, {ID: 10.0, Text: "10"},
			},
			wantCount: 5,
		},
		{
			name:      "page past the end",
			req:       func(r *contract.NumberRequest) { r.Min, r.Max, r.Page, r.PageLimit = 1, 3, 2, 5 },
			want:      []contract.Option{},
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := contract.NewNumberRequest()
			tt.req(&req)
			res, err := env.dropdown.Number(context.Background(), sess, req)
			require.NoError(t, err)
			requireOptions(t, tt.want, res.Results)
			assert.Equal(t, tt.wantCount, res.Count)
		})
	}
}

func TestNumber_OpenRangeStopsAtDisplayMaximum(t *testing.T) {
	env := setupEnv(t)
	env.settings.Max = 10
	svc := NewDropdownService(env.repos, env.settings)

	req := contract.NewNumberRequest()
	req.Step = 5
	res, err := svc.Number(context.Background(), nil, req)
	require.NoError(t, err)
	require.Len(t, res.Results, 10)
	assert.Equal(t, 1.0, res.Results[0].ID)
	assert.Equal(t, 46.0, res.Results[9].ID)
}
