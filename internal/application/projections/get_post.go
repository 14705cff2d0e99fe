package projections

import (
	"context"
	"errors"

	"academyhub/internal/domain/post"
)

// ErrPostNotFound is returned when no post has the requested id.
var ErrPostNotFound = errors.New("post not found")

// GetPostQuery carries query parameters.
type GetPostQuery struct {
	PostID string
}

// GetPostDeps holds dependencies for GetPost.
type GetPostDeps struct {
	Posts PostReader
}

// QueryGetPost finds one post. The marketplace has no single-post endpoint,
// so the full list is fetched and searched.
// PRE: query.PostID is non-empty
func QueryGetPost(ctx context.Context, query GetPostQuery, deps GetPostDeps) (post.Post, error) {
	posts, err := deps.Posts.ListPosts(ctx)
	if err != nil {
		return post.Post{}, err
	}
	p, ok := post.FindByID(posts, query.PostID)
	if !ok {
		return post.Post{}, ErrPostNotFound
	}
	return p, nil
}
