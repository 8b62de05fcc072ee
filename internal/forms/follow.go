package forms

import "strings"

var FollowMeta = map[string]Meta{
	"user":   {Label: "Subscribe to"},
	"author": {Label: "Post author"},
}

// FollowForm only checks the shape of a follow request. Self-follows and
// duplicates are dealt with by the view and the storage layer.
type FollowForm struct {
	User   string `form:"user" validate:"required,max=150"`
	Errors Errors
}

func NewFollowForm(username string) *FollowForm {
	return &FollowForm{User: username, Errors: Errors{}}
}

func (f *FollowForm) Validate(v *Validator) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.User = strings.TrimSpace(f.User)
	return v.Collect(f, f.Errors)
}

func (f *FollowForm) Fields() []Field {
	return []Field{field("user", FollowMeta["user"], f.User, f.Errors, true)}
}
