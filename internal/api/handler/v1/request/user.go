package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var usernameExp = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type UpdateProfileRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

func (req *UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.FirstName, validation.Length(0, 100)),
		validation.Field(&req.LastName, validation.Length(0, 100)),
		validation.Field(&req.Username, validation.Length(3, 50), validation.Match(usernameExp)),
	)
}
