package api

import (
	"context"

	"academyhub/internal/domain/academy"
)

type participantWire struct {
	ID           string `mapstructure:"id"`
	MongoID      string `mapstructure:"_id"`
	FirstName    string `mapstructure:"firstName"`
	LastName     string `mapstructure:"lastName"`
	ProfilePhoto string `mapstructure:"profilePhoto"`
	Group        any    `mapstructure:"group"`
	GroupID      string `mapstructure:"groupId"`
	// some payloads nest the person under "user"
	User map[string]any `mapstructure:"user"`
}

type academyWire struct {
	ID           string `mapstructure:"id"`
	MongoID      string `mapstructure:"_id"`
	Name         string `mapstructure:"name"`
	Logo         string `mapstructure:"logo"`
	Location     string `mapstructure:"location"`
	Description  string `mapstructure:"description"`
	StudentCount int    `mapstructure:"studentCount"`
	CourseCount  int    `mapstructure:"courseCount"`
	Students     []any  `mapstructure:"students"`
	Teachers     []any  `mapstructure:"teachers"`
}

func toParticipant(item any) (academy.Participant, error) {
	var w participantWire
	if err := decode(item, &w); err != nil {
		return academy.Participant{}, err
	}
	if w.User != nil {
		var inner participantWire
		if err := decode(w.User, &inner); err != nil {
			return academy.Participant{}, err
		}
		w.FirstName = firstNonEmpty(w.FirstName, inner.FirstName)
		w.LastName = firstNonEmpty(w.LastName, inner.LastName)
		w.ProfilePhoto = firstNonEmpty(w.ProfilePhoto, inner.ProfilePhoto)
		w.ID = firstNonEmpty(inner.ID, inner.MongoID, w.ID, w.MongoID)
	}
	p := academy.Participant{
		ID:           firstNonEmpty(w.ID, w.MongoID),
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		ProfilePhoto: w.ProfilePhoto,
	}
	if gid := firstNonEmpty(refID(w.Group), w.GroupID); gid != "" {
		name := ""
		if _, isObj := w.Group.(map[string]any); isObj {
			name = refName(w.Group)
		}
		p.Group = &academy.GroupRef{ID: gid, Name: name}
	}
	return p, nil
}

func toAcademy(item any) (academy.Academy, error) {
	var w academyWire
	if err := decode(item, &w); err != nil {
		return academy.Academy{}, err
	}
	students, err := decodeEach(w.Students, toParticipant)
	if err != nil {
		return academy.Academy{}, err
	}
	teachers, err := decodeEach(w.Teachers, toParticipant)
	if err != nil {
		return academy.Academy{}, err
	}
	a := academy.Academy{
		ID:           firstNonEmpty(w.ID, w.MongoID),
		Name:         w.Name,
		Logo:         w.Logo,
		Location:     w.Location,
		Description:  w.Description,
		StudentCount: w.StudentCount,
		CourseCount:  w.CourseCount,
		Students:     students,
		Teachers:     teachers,
	}
	a.ApplyDefaults()
	return a, nil
}

// ListAcademies returns every academy (GET /academy/all).
func (c *Client) ListAcademies(ctx context.Context) ([]academy.Academy, error) {
	const path = "/academy/all"
	items, err := c.getList(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeEach(items, toAcademy)
	if err != nil {
		return nil, decodeFailure(path, err)
	}
	return out, nil
}

// GetAcademy returns one academy with its students and teachers (GET /academy/:id).
func (c *Client) GetAcademy(ctx context.Context, id string) (academy.Academy, error) {
	path := "/academy/" + pathID(id)
	obj, err := c.getObject(ctx, path, nil)
	if err != nil {
		return academy.Academy{}, err
	}
	a, err := toAcademy(obj)
	if err != nil {
		return academy.Academy{}, decodeFailure(path, err)
	}
	return a, nil
}
