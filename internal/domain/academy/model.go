package academy

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrEmptyID   = errors.New("academy id is required")
	ErrEmptyName = errors.New("academy name is required")
)

// GroupRef is the group a student or teacher belongs to, as embedded in the academy payload.
type GroupRef struct {
	ID   string
	Name string
}

// Participant is a student or teacher listed on an academy.
type Participant struct {
	ID           string
	FirstName    string
	LastName     string
	ProfilePhoto string
	Group        *GroupRef // nil when the participant is not assigned to a group
}

// FullName returns "First Last" with empty parts dropped.
// INVARIANT: Participant fields are not mutated
func (p Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Academy holds state for the Academy concept.
type Academy struct {
	ID           string
	Name         string
	Logo         string
	Location     string
	Description  string
	StudentCount int
	CourseCount  int
	Students     []Participant
	Teachers     []Participant
}

// Validate checks if the Academy has the fields every view relies on.
// PRE: Academy struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Academy) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ApplyDefaults fills counters the API left out from the embedded collections.
// PRE: Students and Teachers are decoded
// POST: StudentCount is at least len(Students)
func (a *Academy) ApplyDefaults() {
	if a.StudentCount == 0 {
		a.StudentCount = len(a.Students)
	}
}

// GetName returns the academy name for list filtering.
func (a Academy) GetName() string {
	return a.Name
}

// UniqueGroupIDs scans students then teachers and returns every referenced group id once,
// in first-seen order. Participants without a group, or with an empty group id, are skipped.
// PRE: none
// POST: Result contains no duplicates
// INVARIANT: Academy fields are not mutated
func UniqueGroupIDs(a Academy) []string {
	seen := make(map[string]bool)
	var ids []string
	collect := func(people []Participant) {
		for _, p := range people {
			if p.Group == nil || p.Group.ID == "" {
				continue
			}
			if seen[p.Group.ID] {
				continue
			}
			seen[p.Group.ID] = true
			ids = append(ids, p.Group.ID)
		}
	}
	collect(a.Students)
	collect(a.Teachers)
	return ids
}
