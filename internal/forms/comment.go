package forms

import "strings"

var CommentMeta = map[string]Meta{
	"text": {Label: "Add a comment", HelpText: "Comment text"},
}

type CommentForm struct {
	Text   string `form:"text" validate:"required"`
	Errors Errors
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

func (f *CommentForm) Validate(v *Validator) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Text = strings.TrimSpace(f.Text)
	return v.Collect(f, f.Errors)
}

func (f *CommentForm) Fields() []Field {
	return []Field{field("text", CommentMeta["text"], f.Text, f.Errors, true)}
}
