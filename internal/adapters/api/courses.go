package api

import (
	"context"

	"academyhub/internal/domain/course"
)

type chapterWire struct {
	ID      string `mapstructure:"id"`
	MongoID string `mapstructure:"_id"`
	Title   string `mapstructure:"title"`
	Name    string `mapstructure:"name"`
	Order   int    `mapstructure:"order"`
}

type courseWire struct {
	ID          string        `mapstructure:"id"`
	MongoID     string        `mapstructure:"_id"`
	Name        string        `mapstructure:"name"`
	Title       string        `mapstructure:"title"`
	Description string        `mapstructure:"description"`
	Price       float64       `mapstructure:"price"`
	Category    any           `mapstructure:"category"`
	Image       string        `mapstructure:"image"`
	Module      string        `mapstructure:"module"`
	Academy     any           `mapstructure:"academy"`
	AcademyID   string        `mapstructure:"academyId"`
	Chapters    []chapterWire `mapstructure:"chapters"`
}

func toCourse(item any) (course.Course, error) {
	var w courseWire
	if err := decode(item, &w); err != nil {
		return course.Course{}, err
	}
	c := course.Course{
		ID:          firstNonEmpty(w.ID, w.MongoID),
		Name:        firstNonEmpty(w.Name, w.Title),
		Description: w.Description,
		Price:       w.Price,
		Category:    refName(w.Category),
		Image:       w.Image,
		Module:      w.Module,
		AcademyID:   firstNonEmpty(w.AcademyID, refID(w.Academy)),
	}
	if _, isObj := w.Academy.(map[string]any); isObj {
		c.AcademyName = refName(w.Academy)
	}
	for i, ch := range w.Chapters {
		order := ch.Order
		if order == 0 {
			order = i + 1
		}
		c.Chapters = append(c.Chapters, course.Chapter{
			ID:    firstNonEmpty(ch.ID, ch.MongoID),
			Title: firstNonEmpty(ch.Title, ch.Name),
			Order: order,
		})
	}
	return c, nil
}

func (c *Client) listCourses(ctx context.Context, path string, query map[string]string) ([]course.Course, error) {
	items, err := c.getList(ctx, path, query)
	if err != nil {
		return nil, err
	}
	out, err := decodeEach(items, toCourse)
	if err != nil {
		return nil, decodeFailure(path, err)
	}
	return out, nil
}

// ListCourses returns the full catalogue (GET /course/all).
func (c *Client) ListCourses(ctx context.Context) ([]course.Course, error) {
	return c.listCourses(ctx, "/course/all", nil)
}

// ListCoursesByAcademy returns the courses an academy offers (GET /course/by-academy).
func (c *Client) ListCoursesByAcademy(ctx context.Context, academyID string) ([]course.Course, error) {
	return c.listCourses(ctx, "/course/by-academy", map[string]string{"academyId": academyID})
}

// GetCourse returns one course (GET /course/:id).
func (c *Client) GetCourse(ctx context.Context, id string) (course.Course, error) {
	path := "/course/" + pathID(id)
	obj, err := c.getObject(ctx, path, nil)
	if err != nil {
		return course.Course{}, err
	}
	out, err := toCourse(obj)
	if err != nil {
		return course.Course{}, decodeFailure(path, err)
	}
	return out, nil
}
