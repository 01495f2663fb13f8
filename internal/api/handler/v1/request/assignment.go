package request

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

var errInvalidDate = errors.New("must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")

// SubmitAssignmentRequest is the non-file part of the multipart form.
type SubmitAssignmentRequest struct {
	Title       string `form:"title"`
	Subject     string `form:"subject"`
	Description string `form:"description"`
	DueDate     string `form:"dueDate"`
}

func (req *SubmitAssignmentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Subject, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Description, validation.Length(0, 5000)),
		validation.Field(&req.DueDate, validation.By(isDate)),
	)
}

// ParsedDueDate accepts RFC 3339 timestamps and plain dates.
func (req *SubmitAssignmentRequest) ParsedDueDate() *time.Time {
	if req.DueDate == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, req.DueDate); err == nil {
			t = t.UTC()
			return &t
		}
	}

	return nil
}

func isDate(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}

	return errInvalidDate
}
