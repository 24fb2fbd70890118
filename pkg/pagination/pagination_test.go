package pagination

import "testing"

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		fallback int
		want     int
	}{
		{name: "zeroUsesFallback", limit: 0, fallback: 20, want: 20},
		{name: "negativeUsesFallback", limit: -5, fallback: 20, want: 20},
		{name: "zeroNoFallbackUsesDefault", limit: 0, fallback: 0, want: DefaultLimit},
		{name: "capped", limit: 500, fallback: 20, want: MaxLimit},
		{name: "passthrough", limit: 12, fallback: 20, want: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLimit(tt.limit, tt.fallback); got != tt.want {
				t.Fatalf("NormalizeLimit(%d, %d) = %d, want %d", tt.limit, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestNormalizePageAndOffset(t *testing.T) {
	if got := NormalizePage(0); got != 1 {
		t.Fatalf("page 0 should clamp to 1, got %d", got)
	}
	if got := NormalizePage(-3); got != 1 {
		t.Fatalf("negative page should clamp to 1, got %d", got)
	}
	if got := Offset(1, 12); got != 0 {
		t.Fatalf("first page offset should be 0, got %d", got)
	}
	if got := Offset(3, 12); got != 24 {
		t.Fatalf("page 3 offset should be 24, got %d", got)
	}
}

func TestTotalPages(t *testing.T) {
	if got := TotalPages(0, 12); got != 0 {
		t.Fatalf("zero total should produce zero pages, got %d", got)
	}
	if got := TotalPages(12, 12); got != 1 {
		t.Fatalf("exact fit should produce 1 page, got %d", got)
	}
	if got := TotalPages(13, 12); got != 2 {
		t.Fatalf("overflow should round up to 2 pages, got %d", got)
	}
}

func TestNewBlock(t *testing.T) {
	block := NewBlock(25, 2, 12)
	if block.TotalPages != 3 || block.CurrentPage != 2 || block.TotalCount != 25 {
		t.Fatalf("unexpected block %+v", block)
	}
}
