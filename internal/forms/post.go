package forms

import (
	"errors"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/anonto42/yatube/internal/models"
	"github.com/gabriel-vasile/mimetype"
	"github.com/samber/lo"
)

var PostMeta = map[string]Meta{
	"text":  {Label: "Message", HelpText: "Enter a message"},
	"group": {Label: "Group", HelpText: "Choose a group"},
	"image": {Label: "Image", HelpText: "Choose an image"},
}

// PostForm validates post creation and edits: text is required, group and
// image are optional
type PostForm struct {
	Text  string `form:"text" validate:"required"`
	Group string `form:"group" validate:"omitempty,numeric"`

	Image      *multipart.FileHeader
	ImageClear bool
	ImageExt   string // extension detected from the upload's content

	CurrentImage string
	Groups       []models.Group
	Errors       Errors
}

// NewPostForm returns a blank form offering the given groups
func NewPostForm(groups []models.Group) *PostForm {
	return &PostForm{Groups: groups, Errors: Errors{}}
}

// EditPostForm returns a form pre-filled with the post's current values
func EditPostForm(post *models.Post, groups []models.Group) *PostForm {
	f := NewPostForm(groups)
	f.Text = post.Text
	if post.GroupID != nil {
		f.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
	}
	f.CurrentImage = post.Image
	return f
}

// Validate checks the submitted values and fills Errors
func (f *PostForm) Validate(v *Validator) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Text = strings.TrimSpace(f.Text)
	f.Group = strings.TrimSpace(f.Group)

	v.Collect(f, f.Errors)

	if f.Group != "" && len(f.Errors.Get("group")) == 0 && f.GroupID() == nil {
		f.Errors.Add("group", invalidChoice)
	}

	if f.Image != nil {
		if err := f.checkImage(); err != nil {
			f.Errors.Add("image", err.Error())
		}
	}

	return !f.Errors.Any()
}

// GroupID resolves the selected group against the offered choices
func (f *PostForm) GroupID() *uint {
	if f.Group == "" {
		return nil
	}
	id, err := strconv.ParseUint(f.Group, 10, 64)
	if err != nil {
		return nil
	}
	group, ok := lo.Find(f.Groups, func(g models.Group) bool { return uint64(g.ID) == id })
	if !ok {
		return nil
	}
	return &group.ID
}

// Apply copies the validated text and group onto post. Image handling is
// left to the caller since it needs storage.
func (f *PostForm) Apply(post *models.Post) {
	post.Text = f.Text
	post.GroupID = f.GroupID()
	post.Group = nil
}

func (f *PostForm) GroupChoices() []Choice {
	choices := []Choice{{Value: "", Label: "---------", Selected: f.Group == ""}}
	return append(choices, lo.Map(f.Groups, func(g models.Group, _ int) Choice {
		value := strconv.FormatUint(uint64(g.ID), 10)
		return Choice{Value: value, Label: g.String(), Selected: value == f.Group}
	})...)
}

func (f *PostForm) Fields() []Field {
	return []Field{
		field("text", PostMeta["text"], f.Text, f.Errors, true),
		field("group", PostMeta["group"], f.Group, f.Errors, false),
		field("image", PostMeta["image"], f.CurrentImage, f.Errors, false),
	}
}

func (f *PostForm) checkImage() error {
	file, err := f.Image.Open()
	if err != nil {
		return errors.New("The submitted file is empty.")
	}
	defer file.Close()

	mtype, err := mimetype.DetectReader(file)
	if err != nil || !strings.HasPrefix(mtype.String(), "image/") {
		return errors.New("Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	}
	f.ImageExt = mtype.Extension()
	return nil
}
