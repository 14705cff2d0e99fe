package group

import "strings"

// Group is a cohort of enrolled members tied to one course.
type Group struct {
	ID       string
	Name     string
	CourseID string
	Active   bool
}

// Member is a user belonging to a group.
type Member struct {
	ID           string
	FirstName    string
	LastName     string
	ProfilePhoto string
	Role         string
}

// FullName returns "First Last" with empty parts dropped.
// INVARIANT: Member fields are not mutated
func (m Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// Initials returns up to two upper-case initials for avatar placeholders.
// INVARIANT: Member fields are not mutated
func (m Member) Initials() string {
	var b strings.Builder
	for _, part := range []string{m.FirstName, m.LastName} {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(string([]rune(part)[0])))
	}
	return b.String()
}
