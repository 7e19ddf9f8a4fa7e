package views

import (
	"github.com/opencourse/opencourse-backend/internal/types"
)

// courseDynamicFields is the fixed allow-list for dynamic course projection.
// Requests can only subtract from this set, never reach outside it.
var courseDynamicFields = map[string]struct{}{
	"id":          {},
	"name":        {},
	"slug":        {},
	"description": {},
	"modules":     {},
}

// NewCourseDynamic projects the course down to the requested field names
// intersected with the allow-list. Unknown names are ignored, not errors.
// An empty request keeps the whole default set.
func NewCourseDynamic(course *types.Course, fields []string) map[string]interface{} {
	keep := courseDynamicFields
	if len(fields) > 0 {
		keep = make(map[string]struct{}, len(fields))
		for _, f := range fields {
			if _, ok := courseDynamicFields[f]; ok {
				keep[f] = struct{}{}
			}
		}
	}

	out := make(map[string]interface{}, len(keep))
	if _, ok := keep["id"]; ok {
		out["id"] = course.ID
	}
	if _, ok := keep["name"]; ok {
		out["name"] = course.Name
	}
	if _, ok := keep["slug"]; ok {
		out["slug"] = course.Slug
	}
	if _, ok := keep["description"]; ok {
		out["description"] = course.Description
	}
	if _, ok := keep["modules"]; ok {
		modules := make([]ModuleEmbed, 0, len(course.Modules))
		for _, module := range course.Modules {
			modules = append(modules, NewModuleEmbed(module))
		}
		out["modules"] = modules
	}
	return out
}
