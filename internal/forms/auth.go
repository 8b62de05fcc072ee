package forms

import "strings"

var AuthMeta = map[string]Meta{
	"username":         {Label: "Username", HelpText: "150 characters or fewer. Letters, digits and @/./+/-/_ only."},
	"email":            {Label: "Email address"},
	"password":         {Label: "Password"},
	"password_confirm": {Label: "Password confirmation", HelpText: "Enter the same password as before, for verification."},
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Errors   Errors
}

func NewLoginForm() *LoginForm {
	return &LoginForm{Errors: Errors{}}
}

func (f *LoginForm) Validate(v *Validator) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Username = strings.TrimSpace(f.Username)
	return v.Collect(f, f.Errors)
}

// InvalidCredentials is reported without saying which half was wrong
func (f *LoginForm) InvalidCredentials() {
	f.Errors.Add(NonFieldErrors, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
}

func (f *LoginForm) Fields() []Field {
	return []Field{
		field("username", AuthMeta["username"], f.Username, f.Errors, true),
		field("password", AuthMeta["password"], "", f.Errors, true),
	}
}

type SignupForm struct {
	Username        string `form:"username" validate:"required,max=150,username"`
	Email           string `form:"email" validate:"omitempty,email,max=254"`
	Password        string `form:"password" validate:"required,min=8"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
	Errors          Errors
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}}
}

func (f *SignupForm) Validate(v *Validator) bool {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	return v.Collect(f, f.Errors)
}

func (f *SignupForm) UsernameTaken() {
	f.Errors.Add("username", "A user with that username already exists.")
}

func (f *SignupForm) Fields() []Field {
	return []Field{
		field("username", AuthMeta["username"], f.Username, f.Errors, true),
		field("email", AuthMeta["email"], f.Email, f.Errors, false),
		field("password", AuthMeta["password"], "", f.Errors, true),
		field("password_confirm", AuthMeta["password_confirm"], "", f.Errors, true),
	}
}
