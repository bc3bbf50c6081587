package pagination

import (
	"math"
	"net/http"
	"strconv"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Request is a zero-based page request.
type Request struct {
	Page int
	Size int
}

// NewRequest clamps page and size to sane bounds.
func NewRequest(page, size int) Request {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	// keep Offset within a Postgres INTEGER
	if maxPage := math.MaxInt32 / size; page > maxPage {
		page = maxPage
	}
	return Request{Page: page, Size: size}
}

// FromQuery reads ?page=&size= from r. Unparseable values fall back to defaults.
func FromQuery(r *http.Request) Request {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("size"))
	return NewRequest(page, size)
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

// Page is a slice of results plus the metadata clients use to navigate.
type Page[T any] struct {
	Content          []T   `json:"content"`
	TotalElements    int64 `json:"totalElements"`
	TotalPages       int   `json:"totalPages"`
	Size             int   `json:"size"`
	Number           int   `json:"number"`
	NumberOfElements int   `json:"numberOfElements"`
	First            bool  `json:"first"`
	Last             bool  `json:"last"`
	Empty            bool  `json:"empty"`
}

func New[T any](content []T, req Request, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page[T]{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Size:             req.Size,
		Number:           req.Page,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page+1 >= totalPages,
		Empty:            len(content) == 0,
	}
}

// Map converts the content of p, keeping its metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(p.Content))
	for _, item := range p.Content {
		out = append(out, fn(item))
	}
	return Page[U]{
		Content:          out,
		TotalElements:    p.TotalElements,
		TotalPages:       p.TotalPages,
		Size:             p.Size,
		Number:           p.Number,
		NumberOfElements: p.NumberOfElements,
		First:            p.First,
		Last:             p.Last,
		Empty:            p.Empty,
	}
}
