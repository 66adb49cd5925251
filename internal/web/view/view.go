// Package view holds the helpers the web templates call.
package view

import (
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultPageSize = 9
	PageNeighbors   = 2
)

// Ellipsis marks a gap in a page window.
const Ellipsis = 0

// SkipTake converts a 1-based page number into an offset and limit.
// Pages below 1 are treated as 1 and a non-positive size as DefaultPageSize.
func SkipTake(page, size int) (skip, take int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	if page < 1 {
		page = 1
	}
	return (page - 1) * size, size
}

// TotalPages is the number of pages needed for total items.
func TotalPages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// PageNumbers returns the page links to show around current. The first and
// last pages are always present; Ellipsis stands in for skipped runs.
func PageNumbers(current, total, neighbors int) []int {
	if total < 1 {
		total = 1
	}
	totalNumbers := neighbors*2 + 3
	totalBlocks := totalNumbers + 2

	if total <= totalBlocks {
		return pageRange(1, total)
	}

	start := max(2, current-neighbors)
	end := min(total-1, current+neighbors)

	pages := []int{1}
	if start > 2 {
		pages = append(pages, Ellipsis)
	}
	pages = append(pages, pageRange(start, end)...)
	if end < total-1 {
		pages = append(pages, Ellipsis)
	}
	return append(pages, total)
}

// Pager is what the pagination partial renders.
type Pager struct {
	Current int
	Total   int
	Pages   []int
}

func NewPager(current, total int) Pager {
	if total < 1 {
		total = 1
	}
	current = min(max(current, 1), total)
	return Pager{Current: current, Total: total, Pages: PageNumbers(current, total, PageNeighbors)}
}

func (p Pager) HasPrev() bool { return p.Current > 1 }
func (p Pager) HasNext() bool { return p.Current < p.Total }
func (p Pager) Prev() int     { return p.Current - 1 }
func (p Pager) Next() int     { return p.Current + 1 }

func pageRange(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

// Truncate cuts s to at most n characters and appends "..." when it did.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}

// TruncateWords keeps the first n space-separated words.
func TruncateWords(s string, n int) string {
	words := strings.Split(s, " ")
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + "..."
}

// Paragraphs splits text on blank lines.
func Paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(s, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatDate renders t like "Jan 2, 2006".
func FormatDate(t time.Time) string {
	return t.Format("Jan 2, 2006")
}

var units = []struct {
	name    string
	seconds int64
}{
	{"year", 31536000},
	{"month", 2592000},
	{"week", 604800},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// RelativeTime describes how long before now t was, e.g. "3 days ago".
func RelativeTime(t, now time.Time) string {
	diff := int64(now.Sub(t) / time.Second)
	for _, u := range units {
		if n := diff / u.seconds; n >= 1 {
			if n == 1 {
				return fmt.Sprintf("1 %s ago", u.name)
			}
			return fmt.Sprintf("%d %ss ago", n, u.name)
		}
	}
	return "just now"
}

// Initials returns up to two uppercase initials for an avatar placeholder.
func Initials(name string) string {
	var out []rune
	for _, f := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(f)
		out = append(out, r)
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

// Funcs is the template function map shared by every page.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"truncate":      Truncate,
		"truncateWords": TruncateWords,
		"formatDate":    FormatDate,
		"ago":           func(t time.Time) string { return RelativeTime(t, time.Now()) },
		"initials":      Initials,
		"paragraphs":    Paragraphs,
		"add":           func(a, b int) int { return a + b },
		"sub":           func(a, b int) int { return a - b },
	}
}
