package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Username string `json:"username" validate:"required,max=150,username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required"`
}

func TestStruct(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		err := Struct(signup{Username: "chris.p+1@x", Email: "chris@example.com", Password: "pw"})
		assert.NoError(t, err)
	})

	t.Run("FieldErrors", func(t *testing.T) {
		err := Struct(signup{Username: "chris p", Email: "nope"})
		require.Error(t, err)

		verr, ok := AsErrors(err)
		require.True(t, ok)
		assert.Len(t, verr, 3)
		assert.Contains(t, verr["username"][0], "valid username")
		assert.Equal(t, []string{"Enter a valid email address."}, verr["email"])
		assert.Equal(t, []string{"This field is required."}, verr["password"])
	})
}

func TestErrors(t *testing.T) {
	e := Field("upload_path", "File path must start with 'chris/uploads/'.")
	e.Add("fname", "No file was submitted.")

	assert.Equal(t, "fname: No file was submitted.; upload_path: File path must start with 'chris/uploads/'.", e.Error())

	wrapped := fmt.Errorf("create: %w", e)
	got, ok := AsErrors(wrapped)
	require.True(t, ok)
	assert.Len(t, got, 2)

	_, ok = AsErrors(fmt.Errorf("other"))
	assert.False(t, ok)
}
