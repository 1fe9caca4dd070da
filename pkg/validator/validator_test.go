package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type member struct {
	Name  string `json:"name" validate:"required,notblank"`
	Email string `json:"email" validate:"required,email"`
}

type form struct {
	Email             string   `json:"email" validate:"required,email"`
	TeamName          string   `json:"team_name" validate:"required,notblank,max=20"`
	Phone             string   `json:"phone" validate:"required,phone"`
	TeamSize          int      `json:"team_size" validate:"teamsize"`
	NewSize           *int     `json:"new_size" validate:"omitempty,teamsize"`
	Accommodation     bool     `json:"accommodation_needed"`
	AccommodationType string   `json:"accommodation_type" validate:"required_when=Accommodation"`
	Members           []member `json:"team_members" validate:"dive"`
}

func validForm() form {
	return form{
		Email:    "ali@fast.edu.pk",
		TeamName: "Byte Me",
		Phone:    "+92 300 1234567",
		TeamSize: 3,
		Members:  []member{{Name: "Hina", Email: "hina@fast.edu.pk"}},
	}
}

func TestValidateAcceptsValidForm(t *testing.T) {
	require.NoError(t, Validate(context.Background(), validForm()))
}

func TestValidateRules(t *testing.T) {
	seven := 7
	cases := []struct {
		name  string
		edit  func(*form)
		field string
		msg   string
	}{
		{"missing email", func(f *form) { f.Email = "" }, "email", ErrFieldRequired},
		{"bad email", func(f *form) { f.Email = "not-an-email" }, "email", ErrInvalidFormat},
		{"blank team name", func(f *form) { f.TeamName = "   " }, "team_name", ErrFieldRequired},
		{"long team name", func(f *form) { f.TeamName = "a very long team name indeed" }, "team_name", ErrFieldExceedsMaxLen},
		{"bad phone", func(f *form) { f.Phone = "call me" }, "phone", ErrInvalidFormat},
		{"team too small", func(f *form) { f.TeamSize = 0 }, "team_size", "Team size must be between 1 and 6"},
		{"team too large", func(f *form) { f.TeamSize = 7 }, "team_size", "Team size must be between 1 and 6"},
		{"pointer team size", func(f *form) { f.NewSize = &seven }, "new_size", "Team size must be between 1 and 6"},
		{"accommodation type", func(f *form) { f.Accommodation = true }, "accommodation_type", ErrFieldRequired},
		{"member email", func(f *form) { f.Members[0].Email = "x" }, "team_members[0].email", ErrInvalidFormat},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := validForm()
			tc.edit(&f)

			err := Validate(context.Background(), f)
			require.Error(t, err)
			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tc.field, fe.Field)
			require.Equal(t, tc.msg, fe.Msg)
		})
	}
}

func TestRequiredWhenSatisfied(t *testing.T) {
	f := validForm()
	f.Accommodation = true
	f.AccommodationType = "hostel"
	require.NoError(t, Validate(context.Background(), f))
}
