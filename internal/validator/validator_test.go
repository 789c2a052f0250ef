package validator

import (
	"errors"
	"strings"
	"testing"
)

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

func TestValidateStruct(t *testing.T) {
	v := New()

	t.Run("valid payload passes", func(t *testing.T) {
		err := v.ValidateStruct(&loginPayload{Email: "andi@example.edu", Password: "x"})
		if err != nil {
			t.Errorf("ValidateStruct = %v, want nil", err)
		}
	})

	t.Run("failures report json field names", func(t *testing.T) {
		err := v.ValidateStruct(&loginPayload{Email: "not-an-email"})

		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("err = %T, want ValidationErrors", err)
		}
		if len(verrs) != 2 {
			t.Fatalf("errors = %+v, want 2", verrs)
		}
		if verrs[0].Field != "email" {
			t.Errorf("field = %q, want email (json name)", verrs[0].Field)
		}
		if !strings.Contains(verrs[0].Message, "email") {
			t.Errorf("message = %q", verrs[0].Message)
		}
	})
}
