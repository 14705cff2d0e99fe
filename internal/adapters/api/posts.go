package api

import (
	"context"
	"time"

	"academyhub/internal/domain/post"
)

type postWire struct {
	ID        string    `mapstructure:"id"`
	MongoID   string    `mapstructure:"_id"`
	Title     string    `mapstructure:"title"`
	Content   string    `mapstructure:"content"`
	Body      string    `mapstructure:"body"`
	Image     string    `mapstructure:"image"`
	Author    any       `mapstructure:"author"`
	CreatedAt time.Time `mapstructure:"createdAt"`
}

func toPost(item any) (post.Post, error) {
	var w postWire
	if err := decode(item, &w); err != nil {
		return post.Post{}, err
	}
	return post.Post{
		ID:        firstNonEmpty(w.ID, w.MongoID),
		Title:     w.Title,
		Content:   firstNonEmpty(w.Content, w.Body),
		Image:     w.Image,
		Author:    refName(w.Author),
		CreatedAt: w.CreatedAt,
	}, nil
}

// ListPosts returns every blog post (GET /post/all).
// There is no single-post endpoint; callers look posts up in this list.
func (c *Client) ListPosts(ctx context.Context) ([]post.Post, error) {
	const path = "/post/all"
	items, err := c.getList(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeEach(items, toPost)
	if err != nil {
		return nil, decodeFailure(path, err)
	}
	return out, nil
}
