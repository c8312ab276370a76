package validation

import (
	"encoding/json"
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Username string `json:"username" binding:"required,alphanum,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
}

type pricePayload struct {
	Price int64 `json:"price" binding:"omitempty,gte=0"`
}

func TestToDetailsMapsFieldsByJSONName(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(&signupPayload{
		Username: "ab!",
		Email:    "not-an-email",
		Password: "short",
		Phone:    "12345",
	})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must contain only letters and digits", details["username"])
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be at least 8 characters", details["password"])
	assert.Equal(t, "must be a valid phone number", details["phone"])
}

func TestToDetailsNumericBounds(t *testing.T) {
	Init()

	err := binding.Validator.ValidateStruct(&pricePayload{Price: -5})
	require.Error(t, err)

	details := ToDetails(err)
	assert.Equal(t, "must be 0 or greater", details["price"])
}

func TestToDetailsMalformedJSON(t *testing.T) {
	var dst signupPayload
	err := json.Unmarshal([]byte("{"), &dst)
	require.Error(t, err)

	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))
}

func TestToDetailsNilError(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
}
