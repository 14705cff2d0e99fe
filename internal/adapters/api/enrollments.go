package api

import (
	"context"
	"time"

	"academyhub/internal/domain/enrollment"
)

type enrollmentWire struct {
	ID        string    `mapstructure:"id"`
	MongoID   string    `mapstructure:"_id"`
	UserID    string    `mapstructure:"userId"`
	User      any       `mapstructure:"user"`
	GroupID   string    `mapstructure:"groupId"`
	Group     any       `mapstructure:"group"`
	CourseID  string    `mapstructure:"courseId"`
	Course    any       `mapstructure:"course"`
	Status    string    `mapstructure:"status"`
	CreatedAt time.Time `mapstructure:"createdAt"`
}

func toEnrollment(item any) (enrollment.Request, error) {
	var w enrollmentWire
	if err := decode(item, &w); err != nil {
		return enrollment.Request{}, err
	}
	return enrollment.Request{
		ID:        firstNonEmpty(w.ID, w.MongoID),
		UserID:    firstNonEmpty(w.UserID, refID(w.User)),
		GroupID:   firstNonEmpty(w.GroupID, refID(w.Group)),
		CourseID:  firstNonEmpty(w.CourseID, refID(w.Course)),
		Status:    w.Status,
		CreatedAt: w.CreatedAt,
	}, nil
}

type createEnrollmentBody struct {
	CourseID string `json:"courseId"`
	GroupID  string `json:"groupId"`
	UserID   string `json:"userId"`
}

// CreateEnrollmentRequest asks for a seat in a group (POST /enrollment-request/create).
// The returned request echoes the input when the API replies with an empty body.
// PRE: req.Validate() == nil
func (c *Client) CreateEnrollmentRequest(ctx context.Context, req enrollment.Request) (enrollment.Request, error) {
	const path = "/enrollment-request/create"
	obj, err := c.postObject(ctx, path, createEnrollmentBody{
		CourseID: req.CourseID,
		GroupID:  req.GroupID,
		UserID:   req.UserID,
	})
	if err != nil {
		return enrollment.Request{}, err
	}
	created, err := toEnrollment(obj)
	if err != nil {
		return enrollment.Request{}, decodeFailure(path, err)
	}
	created.UserID = firstNonEmpty(created.UserID, req.UserID)
	created.GroupID = firstNonEmpty(created.GroupID, req.GroupID)
	created.CourseID = firstNonEmpty(created.CourseID, req.CourseID)
	created.Status = firstNonEmpty(created.Status, enrollment.StatusPending)
	return created, nil
}

func (c *Client) listEnrollments(ctx context.Context, path string, query map[string]string) ([]enrollment.Request, error) {
	items, err := c.getList(ctx, path, query)
	if err != nil {
		return nil, err
	}
	out, err := decodeEach(items, toEnrollment)
	if err != nil {
		return nil, decodeFailure(path, err)
	}
	return out, nil
}

// ListEnrollmentRequestsByGroup returns every request for a group.
func (c *Client) ListEnrollmentRequestsByGroup(ctx context.Context, groupID string) ([]enrollment.Request, error) {
	return c.listEnrollments(ctx, "/enrollment-request/by-group", map[string]string{"groupId": groupID})
}

// ListEnrollmentRequestsByUser returns every request a user has made.
func (c *Client) ListEnrollmentRequestsByUser(ctx context.Context, userID string) ([]enrollment.Request, error) {
	return c.listEnrollments(ctx, "/enrollment-request/by-user", map[string]string{"userId": userID})
}
