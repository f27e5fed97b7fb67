package behavioral

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/harrison/teachtree/internal/models"
)

// DefaultPageSize is the number of pattern rows shown per page
const DefaultPageSize = 20

// Paginator manages pagination state for a pattern table
type Paginator struct {
	items       []models.PatternRecord
	pageSize    int
	currentPage int
	totalPages  int
}

// NewPaginator creates a paginator with the given items and page size
func NewPaginator(items []models.PatternRecord, pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	totalPages := len(items) / pageSize
	if len(items)%pageSize != 0 {
		totalPages++
	}

	return &Paginator{
		items:       items,
		pageSize:    pageSize,
		currentPage: 1,
		totalPages:  totalPages,
	}
}

// NextPage advances to the next page if available
func (p *Paginator) NextPage() bool {
	if p.currentPage < p.totalPages {
		p.currentPage++
		return true
	}
	return false
}

// PrevPage goes back to the previous page if available
func (p *Paginator) PrevPage() bool {
	if p.currentPage > 1 {
		p.currentPage--
		return true
	}
	return false
}

// GoTo jumps to page (1-based), clamped to the valid range
func (p *Paginator) GoTo(page int) {
	if page > p.totalPages {
		page = p.totalPages
	}
	if page < 1 {
		page = 1
	}
	p.currentPage = page
}

// GetCurrentPage returns the items for the current page
func (p *Paginator) GetCurrentPage() []models.PatternRecord {
	start := (p.currentPage - 1) * p.pageSize
	if start >= len(p.items) {
		return []models.PatternRecord{}
	}

	end := start + p.pageSize
	if end > len(p.items) {
		end = len(p.items)
	}
	return p.items[start:end]
}

// GetCurrentPageNum returns the current page number
func (p *Paginator) GetCurrentPageNum() int {
	return p.currentPage
}

// GetTotalPages returns the total number of pages
func (p *Paginator) GetTotalPages() int {
	return p.totalPages
}

// GetTotalItems returns the number of rows across all pages
func (p *Paginator) GetTotalItems() int {
	return len(p.items)
}

// FormatPatternTable formats pattern rows as an aligned table.
// With colour on, rows are tinted by score: green for >= 0.8, red below 0.5.
func FormatPatternTable(patterns []models.PatternRecord, colorOutput bool) []string {
	if len(patterns) == 0 {
		return []string{"No patterns found"}
	}

	patternWidth := len("Pattern")
	for _, p := range patterns {
		if w := displayWidth(p.Key()); w > patternWidth {
			patternWidth = w
		}
	}

	header := fmt.Sprintf("%-6s  %-5s  %-5s  %s", "Length", "Count", "Score", "Pattern")
	rows := []string{header, strings.Repeat("-", len(header)+patternWidth-len("Pattern"))}

	for _, p := range patterns {
		score := "-"
		if p.HasScore() {
			score = fmt.Sprintf("%.2f", p.Score())
		}

		row := fmt.Sprintf("%-6d  %-5d  %-5s  %s", p.Length, p.Count, score, p.Key())

		if colorOutput && p.HasScore() {
			switch {
			case p.Score() >= 0.8:
				row = color.GreenString(row)
			case p.Score() < 0.5:
				row = color.RedString(row)
			}
		}
		rows = append(rows, row)
	}

	return rows
}

// PrintNavigationBar returns the page footer, or "" for a single page
func PrintNavigationBar(currentPage, totalPages, totalItems int, colorOutput bool) string {
	if totalPages <= 1 {
		return ""
	}

	nav := fmt.Sprintf("\nPage %d of %d (%d patterns)", currentPage, totalPages, totalItems)
	if colorOutput {
		nav = color.CyanString(nav)
	}

	var hints []string
	if currentPage > 1 {
		hints = append(hints, "← --page "+fmt.Sprint(currentPage-1))
	}
	if currentPage < totalPages {
		hints = append(hints, "--page "+fmt.Sprint(currentPage+1)+" →")
	}
	if len(hints) > 0 {
		nav += " | " + strings.Join(hints, " | ")
	}

	return nav
}

// displayWidth is the terminal column width of s; CJK labels that pass
// through the vocabulary occupy two columns per rune.
func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
