package course

import (
	"errors"
	"sort"
	"strings"
)

// Domain errors
var (
	ErrEmptyID   = errors.New("course id is required")
	ErrEmptyName = errors.New("course name is required")
)

// Chapter is one unit of a course syllabus.
type Chapter struct {
	ID    string
	Title string
	Order int
}

// Course holds state for the Course concept.
type Course struct {
	ID          string
	Name        string
	Description string // markdown
	Price       float64
	Category    string
	Image       string
	Module      string
	AcademyID   string
	AcademyName string
	Chapters    []Chapter
}

// Validate checks if the Course has the fields every view relies on.
// PRE: Course struct is populated
// POST: Returns nil if valid, error otherwise
func (c *Course) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// GetName returns the course name for list filtering.
func (c Course) GetName() string {
	return c.Name
}

// IsFree reports whether the course has no price.
// INVARIANT: Course fields are not mutated
func (c Course) IsFree() bool {
	return c.Price <= 0
}

// SortedChapters returns the chapters ordered by Order, keeping API order for ties.
// INVARIANT: Course fields are not mutated
func (c Course) SortedChapters() []Chapter {
	out := make([]Chapter, len(c.Chapters))
	copy(out, c.Chapters)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}
