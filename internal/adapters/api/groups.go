package api

import (
	"context"

	"academyhub/internal/domain/group"
)

type groupWire struct {
	ID       string `mapstructure:"id"`
	MongoID  string `mapstructure:"_id"`
	Name     string `mapstructure:"name"`
	CourseID string `mapstructure:"courseId"`
	Course   any    `mapstructure:"course"`
	Active   *bool  `mapstructure:"active"`
	IsActive *bool  `mapstructure:"isActive"`
}

type memberWire struct {
	ID           string         `mapstructure:"id"`
	MongoID      string         `mapstructure:"_id"`
	FirstName    string         `mapstructure:"firstName"`
	LastName     string         `mapstructure:"lastName"`
	ProfilePhoto string         `mapstructure:"profilePhoto"`
	Role         string         `mapstructure:"role"`
	User         map[string]any `mapstructure:"user"`
}

func toGroup(item any) (group.Group, error) {
	var w groupWire
	if err := decode(item, &w); err != nil {
		return group.Group{}, err
	}
	// groups are active unless the API says otherwise
	active := true
	if w.Active != nil {
		active = *w.Active
	} else if w.IsActive != nil {
		active = *w.IsActive
	}
	return group.Group{
		ID:       firstNonEmpty(w.ID, w.MongoID),
		Name:     w.Name,
		CourseID: firstNonEmpty(w.CourseID, refID(w.Course)),
		Active:   active,
	}, nil
}

func toMember(item any) (group.Member, error) {
	var w memberWire
	if err := decode(item, &w); err != nil {
		return group.Member{}, err
	}
	if w.User != nil {
		var inner memberWire
		if err := decode(w.User, &inner); err != nil {
			return group.Member{}, err
		}
		w.ID = firstNonEmpty(inner.ID, inner.MongoID, w.ID, w.MongoID)
		w.FirstName = firstNonEmpty(w.FirstName, inner.FirstName)
		w.LastName = firstNonEmpty(w.LastName, inner.LastName)
		w.ProfilePhoto = firstNonEmpty(w.ProfilePhoto, inner.ProfilePhoto)
		w.Role = firstNonEmpty(w.Role, inner.Role)
	}
	return group.Member{
		ID:           firstNonEmpty(w.ID, w.MongoID),
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		ProfilePhoto: w.ProfilePhoto,
		Role:         w.Role,
	}, nil
}

// GetGroup returns one group (GET /group/:id).
func (c *Client) GetGroup(ctx context.Context, id string) (group.Group, error) {
	path := "/group/" + pathID(id)
	obj, err := c.getObject(ctx, path, nil)
	if err != nil {
		return group.Group{}, err
	}
	g, err := toGroup(obj)
	if err != nil {
		return group.Group{}, decodeFailure(path, err)
	}
	return g, nil
}

// ListGroupsByCourse returns the cohorts of a course (GET /group/by-course).
func (c *Client) ListGroupsByCourse(ctx context.Context, courseID string) ([]group.Group, error) {
	const path = "/group/by-course"
	items, err := c.getList(ctx, path, map[string]string{"courseId": courseID})
	if err != nil {
		return nil, err
	}
	out, err := decodeEach(items, toGroup)
	if err != nil {
		return nil, decodeFailure(path, err)
	}
	return out, nil
}

// ListGroupMembers returns the members of a group (GET /group/:id/members).
func (c *Client) ListGroupMembers(ctx context.Context, groupID string) ([]group.Member, error) {
	path := "/group/" + pathID(groupID) + "/members"
	items, err := c.getList(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeEach(items, toMember)
	if err != nil {
		return nil, decodeFailure(path, err)
	}
	return out, nil
}
