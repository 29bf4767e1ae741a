package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/dwusrc/dwu-src-web-application-sub002/internal/apperr"
)

// fieldMessages maps "Field.tag" to a client message; "" is the fallback.
type fieldMessages map[string]string

var signupMessages = fieldMessages{
	"Email.required":    "Email and password are required",
	"Password.required": "Email and password are required",
	"Email.email":       "Invalid email address",
	"Password.min":      "Password must be at least 8 characters",
	"FullName.max":      "Full name is too long",
	"":                  "Invalid request body",
}

var reportMessages = fieldMessages{
	"Title.required":   "Title and content are required",
	"Content.required": "Title and content are required",
	"Title.max":        "Title is too long",
	"":                 "Invalid request body",
}

var avatarMessages = fieldMessages{
	"FileType.required": "fileType is required",
	"":                  "Invalid request body",
}

// bindError turns a binding failure into a Validation error with a field-specific message.
func bindError(err error, msgs fieldMessages) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if m, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
			return apperr.Wrap(apperr.Validation, m, err)
		}
	}
	return apperr.Wrap(apperr.Validation, msgs[""], err)
}
