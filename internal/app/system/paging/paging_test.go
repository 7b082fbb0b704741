package paging

import (
	"net/http/httptest"
	"testing"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		name  string
		total int
		size  int
		want  int
	}{
		{"empty list has one page", 0, PageSize, 1},
		{"negative total has one page", -3, PageSize, 1},
		{"one row", 1, PageSize, 1},
		{"exactly one page", PageSize, PageSize, 1},
		{"one over", PageSize + 1, PageSize, 2},
		{"thirty rows", 30, 25, 2},
		{"exact multiple", 75, 25, 3},
		{"zero size uses default", 26, 0, 2},
		{"oversized is capped", 250, 1000, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TotalPages(tt.total, tt.size); got != tt.want {
				t.Errorf("TotalPages(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
			}
		})
	}
}

func TestTotalPages_CeilProperty(t *testing.T) {
	for size := 1; size <= 30; size++ {
		for total := 0; total <= 200; total++ {
			got := TotalPages(total, size)
			if got < 1 {
				t.Fatalf("TotalPages(%d, %d) = %d, want >= 1", total, size, got)
			}
			if total > 0 {
				want := (total + size - 1) / size
				if got != want {
					t.Fatalf("TotalPages(%d, %d) = %d, want %d", total, size, got, want)
				}
			}
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		page, totalPages, want int
	}{
		{0, 1, 0},
		{-1, 3, 0},
		{2, 3, 2},
		{3, 3, 2},
		{99, 3, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := Clamp(tt.page, tt.totalPages); got != tt.want {
			t.Errorf("Clamp(%d, %d) = %d, want %d", tt.page, tt.totalPages, got, tt.want)
		}
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		total int
		page  int
		want  Window
	}{
		{
			name:  "empty group",
			total: 0,
			page:  0,
			want:  Window{Page: 0, PageSize: 25, Total: 0, TotalPages: 1, Last: 0},
		},
		{
			name:  "first of two",
			total: 30,
			page:  0,
			want: Window{Page: 0, PageSize: 25, Total: 30, TotalPages: 2,
				HasNext: true, Prev: 0, Next: 1, Last: 1, Start: 1, End: 25},
		},
		{
			name:  "second of two",
			total: 30,
			page:  1,
			want: Window{Page: 1, PageSize: 25, Total: 30, TotalPages: 2,
				HasPrev: true, Prev: 0, Next: 1, Last: 1, Start: 26, End: 30},
		},
		{
			name:  "past the end clamps to last",
			total: 30,
			page:  7,
			want: Window{Page: 1, PageSize: 25, Total: 30, TotalPages: 2,
				HasPrev: true, Prev: 0, Next: 1, Last: 1, Start: 26, End: 30},
		},
		{
			name:  "middle page",
			total: 80,
			page:  1,
			want: Window{Page: 1, PageSize: 25, Total: 80, TotalPages: 4,
				HasPrev: true, HasNext: true, Prev: 0, Next: 2, Last: 3, Start: 26, End: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.total, tt.page, PageSize)
			if got != tt.want {
				t.Errorf("Compute(%d, %d) = %+v, want %+v", tt.total, tt.page, got, tt.want)
			}
		})
	}
}

func TestSlice_LengthsAndRoundTrip(t *testing.T) {
	for _, size := range []int{1, 7, 25} {
		for total := 0; total <= 60; total++ {
			rows := make([]int, total)
			for i := range rows {
				rows[i] = i
			}

			pages := TotalPages(total, size)
			var joined []int
			for p := 0; p < pages; p++ {
				w := Compute(total, p, size)
				got := Slice(rows, w)

				want := size
				if p == pages-1 {
					want = total - p*size
				}
				if len(got) != want {
					t.Fatalf("size=%d total=%d page=%d: len = %d, want %d", size, total, p, len(got), want)
				}
				joined = append(joined, got...)
			}

			if len(joined) != total {
				t.Fatalf("size=%d total=%d: joined %d rows, want %d", size, total, len(joined), total)
			}
			for i, v := range joined {
				if v != i {
					t.Fatalf("size=%d total=%d: joined[%d] = %d, want %d", size, total, i, v, i)
				}
			}
		}
	}
}

func TestWindow_CurrentPage(t *testing.T) {
	w := Compute(60, 2, PageSize)
	if got := w.CurrentPage(); got != 3 {
		t.Errorf("CurrentPage() = %d, want 3", got)
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/x", 0},
		{"/x?page=3", 3},
		{"/x?page=-2", 0},
		{"/x?page=abc", 0},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.target, nil)
		if got := ParseIndex(r, "page"); got != tt.want {
			t.Errorf("ParseIndex(%q) = %d, want %d", tt.target, got, tt.want)
		}
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/x", PageSize},
		{"/x?perpage=10", 10},
		{"/x?perpage=0", PageSize},
		{"/x?perpage=5000", MaxPageSize},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", tt.target, nil)
		if got := ParseSize(r, "perpage"); got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.target, got, tt.want)
		}
	}
}
