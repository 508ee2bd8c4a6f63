package pagination

import (
	"strconv"
	"strings"
)

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Page is offset/limit pagination where Number counts pages, not rows.
type Page struct {
	Number int
	Size   int
}

// Parse builds a Page from raw query values ("offset" page number, "limit"
// page size). Garbage or out-of-range values fall back to the first page of
// DefaultSize rows; sizes are capped at MaxSize.
func Parse(offset, limit string) Page {
	p := Page{Number: atoi(offset, 0), Size: atoi(limit, DefaultSize)}
	return p.Normalize()
}

// Normalize clamps the page into a valid range.
func (p Page) Normalize() Page {
	if p.Number < 0 {
		p.Number = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	n := p.Normalize()
	return n.Number * n.Size
}

// Limit is the number of rows to return.
func (p Page) Limit() int { return p.Normalize().Size }

func atoi(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}
