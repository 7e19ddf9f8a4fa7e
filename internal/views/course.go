// Package views shapes persisted entities into the structures the API
// returns. Shaping is pure: callers load and compute, views only project.
package views

import (
	"time"

	"github.com/google/uuid"

	"github.com/opencourse/opencourse-backend/internal/types"
)

// UserSummary is the embedding of a user inside course views.
type UserSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// LookupRef is the opaque embedding of a tag or topic.
type LookupRef struct {
	ID   uuid.UUID `json:"id"`
	Slug string    `json:"slug"`
}

// LessonEmbed restricts lessons inside a course tree to the fields that keep
// the payload bounded.
type LessonEmbed struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Slug     string    `json:"slug"`
	Position int       `json:"order"`
}

type ModuleEmbed struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Position    int           `json:"order"`
	Lessons     []LessonEmbed `json:"lessons"`
}

// CourseFull is the complete nested shape. CompletionRate is nil unless the
// requesting identity was known when the view was built.
type CourseFull struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Slug           string        `json:"slug"`
	Description    string        `json:"description"`
	Published      bool          `json:"published"`
	Position       int           `json:"order"`
	Tags           []LookupRef   `json:"tags"`
	Topics         []LookupRef   `json:"topics"`
	Instructors    []UserSummary `json:"instructors"`
	Modules        []ModuleEmbed `json:"modules"`
	TotalLessons   int64         `json:"total_lessons"`
	CompletionRate *float64      `json:"completion_rate"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type CourseMinimal struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// NewCourseFull projects a preloaded course tree. totalLessons is computed by
// the caller (derived count); completion may be nil for anonymous requests.
func NewCourseFull(course *types.Course, totalLessons int64, completion *float64) CourseFull {
	view := CourseFull{
		ID:             course.ID,
		Name:           course.Name,
		Slug:           course.Slug,
		Description:    course.Description,
		Published:      course.Published,
		Position:       course.Position,
		Tags:           make([]LookupRef, 0, len(course.Tags)),
		Topics:         make([]LookupRef, 0, len(course.Topics)),
		Instructors:    make([]UserSummary, 0, len(course.Instructors)),
		Modules:        make([]ModuleEmbed, 0, len(course.Modules)),
		TotalLessons:   totalLessons,
		CompletionRate: completion,
		CreatedAt:      course.CreatedAt,
		UpdatedAt:      course.UpdatedAt,
	}
	for _, tag := range course.Tags {
		view.Tags = append(view.Tags, LookupRef{ID: tag.ID, Slug: tag.Slug})
	}
	for _, topic := range course.Topics {
		view.Topics = append(view.Topics, LookupRef{ID: topic.ID, Slug: topic.Slug})
	}
	for _, instructor := range course.Instructors {
		view.Instructors = append(view.Instructors, NewUserSummary(instructor))
	}
	for _, module := range course.Modules {
		view.Modules = append(view.Modules, NewModuleEmbed(module))
	}
	return view
}

func NewModuleEmbed(module *types.Module) ModuleEmbed {
	embed := ModuleEmbed{
		ID:          module.ID,
		Name:        module.Name,
		Slug:        module.Slug,
		Description: module.Description,
		Position:    module.Position,
		Lessons:     make([]LessonEmbed, 0, len(module.Lessons)),
	}
	for _, lesson := range module.Lessons {
		embed.Lessons = append(embed.Lessons, LessonEmbed{
			ID:       lesson.ID,
			Name:     lesson.Name,
			Slug:     lesson.Slug,
			Position: lesson.Position,
		})
	}
	return embed
}

func NewUserSummary(user *types.User) UserSummary {
	return UserSummary{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

func NewCourseMinimal(course *types.Course) CourseMinimal {
	return CourseMinimal{ID: course.ID, Name: course.Name, Slug: course.Slug}
}
