package forms

import (
	"strings"

	"github.com/anonto42/yatube/internal/models"
)

var GroupMeta = map[string]Meta{
	"title":       {Label: "Title", HelpText: "Group title"},
	"slug":        {Label: "Slug", HelpText: "Address of the group page"},
	"description": {Label: "Description", HelpText: "What the group is about"},
}

// GroupForm is used by the administrative paths only
type GroupForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=50,slug"`
	Description string `form:"description" validate:"required"`
	Errors      Errors
}

func NewGroupForm() *GroupForm {
	return &GroupForm{Errors: Errors{}}
}

func (f *GroupForm) Validate(v *Validator) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Title = strings.TrimSpace(f.Title)
	f.Slug = strings.TrimSpace(f.Slug)
	f.Description = strings.TrimSpace(f.Description)
	return v.Collect(f, f.Errors)
}

// DuplicateSlug records a lost race (or a plain duplicate) on the slug
func (f *GroupForm) DuplicateSlug() {
	f.Errors.Add("slug", "Group with this Slug already exists.")
}

func (f *GroupForm) Group() *models.Group {
	return &models.Group{Title: f.Title, Slug: f.Slug, Description: f.Description}
}

func (f *GroupForm) Fields() []Field {
	return []Field{
		field("title", GroupMeta["title"], f.Title, f.Errors, true),
		field("slug", GroupMeta["slug"], f.Slug, f.Errors, true),
		field("description", GroupMeta["description"], f.Description, f.Errors, true),
	}
}
