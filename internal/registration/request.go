package registration

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jobportal/jobportal/internal/identity"
)

// SubmitInput is a signup request. It is normalized and validated once, before
// the workflow touches any store.
type SubmitInput struct {
	FullName     string        `json:"fullname"     validate:"required,max=120"`
	Email        string        `json:"email"        validate:"required,email,max=254"`
	PhoneNumber  string        `json:"phoneNumber"  validate:"required,max=32"`
	Password     string        `json:"password"     validate:"required,min=6,max=72"`
	Role         identity.Role `json:"role"         validate:"required,oneof=student recruiter"`
	ProfilePhoto string        `json:"profilePhoto" validate:"omitempty,url"`
	Skills       StringList    `json:"skills"       validate:"max=50,dive,max=64"`
}

func (in SubmitInput) normalized() SubmitInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = identity.NormalizeEmail(in.Email)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	in.Role = identity.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	in.ProfilePhoto = strings.TrimSpace(in.ProfilePhoto)
	in.Skills = normalizeList(in.Skills)
	return in
}

// StringList decodes from either a JSON array of strings or a single
// comma-separated string, and always holds trimmed non-empty values.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var many []string
	if err := json.Unmarshal(b, &many); err == nil {
		*l = normalizeList(many)
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err != nil {
		return errors.New("expected a string or an array of strings")
	}
	*l = normalizeList(strings.Split(one, ","))
	return nil
}

func normalizeList(in []string) StringList {
	var out StringList
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validationError converts validator output into ErrValidation listing the
// offending JSON fields. Field values are never echoed back.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, jsonName(fe.StructField()))
	}
	return fmt.Errorf("%w: invalid %s", ErrValidation, strings.Join(fields, ", "))
}

var jsonNames = map[string]string{
	"FullName":     "fullname",
	"Email":        "email",
	"PhoneNumber":  "phoneNumber",
	"Password":     "password",
	"Role":         "role",
	"ProfilePhoto": "profilePhoto",
	"Skills":       "skills",
}

func jsonName(field string) string {
	if name, ok := jsonNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}
