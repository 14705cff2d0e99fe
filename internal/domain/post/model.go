package post

import (
	"strings"
	"time"
)

// Post is a marketing/news article shown on the home page.
type Post struct {
	ID        string
	Title     string
	Content   string // markdown
	Image     string
	Author    string
	CreatedAt time.Time
}

// Excerpt returns the first n runes of the content with markdown headings and emphasis
// markers stripped, for use on cards.
// INVARIANT: Post fields are not mutated
func (p Post) Excerpt(n int) string {
	text := strings.NewReplacer("#", "", "*", "", "_", "", "`", "").Replace(p.Content)
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}

// GetName returns the post title for list filtering.
func (p Post) GetName() string {
	return p.Title
}

// FindByID returns the post with the given id, or false.
// PRE: none
// POST: Linear scan over posts
func FindByID(posts []Post, id string) (Post, bool) {
	for _, p := range posts {
		if p.ID == id {
			return p, true
		}
	}
	return Post{}, false
}
