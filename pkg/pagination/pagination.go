package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 12
	// MaxLimit caps how many rows any page query can request.
	MaxLimit = 100
)

// Params holds offset pagination inputs from controllers or services.
// Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// Block is the pagination section returned alongside every list payload.
type Block struct {
	TotalPages  int   `json:"totalPages"`
	CurrentPage int   `json:"currentPage"`
	TotalCount  int64 `json:"totalCount"`
}

// NormalizeLimit clamps the limit to [1, MaxLimit], substituting fallback
// (or DefaultLimit) when the input is zero or negative.
func NormalizeLimit(limit, fallback int) int {
	if limit <= 0 {
		if fallback > 0 {
			limit = fallback
		} else {
			limit = DefaultLimit
		}
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// NormalizePage clamps the page number to at least 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// Offset derives the row offset for the normalized page/limit pair.
func Offset(page, limit int) int {
	return (NormalizePage(page) - 1) * limit
}

// TotalPages computes ceil(total/limit); a zero total yields zero pages.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return int(pages)
}

// NewBlock assembles the pagination block for a result set.
func NewBlock(total int64, page, limit int) Block {
	return Block{
		TotalPages:  TotalPages(total, limit),
		CurrentPage: NormalizePage(page),
		TotalCount:  total,
	}
}
