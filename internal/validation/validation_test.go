package validation

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type codeRequest struct {
	Email        string       `json:"email" binding:"required,email"`
	ProvidedCode ProvidedCode `json:"providedCode" binding:"required,providedcode"`
	NewPassword  string       `json:"newPassword" binding:"required,strongpassword"`
}

type signupRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	Name     string `form:"name" binding:"required,max=100"`
}

func bindJSON(body string, obj interface{}) error {
	Register()
	return binding.JSON.BindBody([]byte(body), obj)
}

func TestProvidedCode_NumberOrString(t *testing.T) {
	tests := []struct {
		name string
		body string
		want ProvidedCode
	}{
		{name: "JSON number", body: `{"email":"a@example.com","providedCode":482913,"newPassword":"NewPass123"}`, want: "482913"},
		{name: "JSON string", body: `{"email":"a@example.com","providedCode":"482913","newPassword":"NewPass123"}`, want: "482913"},
		{name: "String with spaces", body: `{"email":"a@example.com","providedCode":" 482913 ","newPassword":"NewPass123"}`, want: "482913"},
		{name: "Float with zero fraction", body: `{"email":"a@example.com","providedCode":482913.0,"newPassword":"NewPass123"}`, want: "482913"},
		{name: "Exponent form", body: `{"email":"a@example.com","providedCode":4.82913e5,"newPassword":"NewPass123"}`, want: "482913"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req codeRequest
			require.NoError(t, bindJSON(tt.body, &req))
			assert.Equal(t, tt.want, req.ProvidedCode)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantFields map[string]string
	}{
		{
			name: "Missing everything",
			body: `{}`,
			wantFields: map[string]string{
				"email":        "Email is required",
				"providedCode": "Provided code is required",
				"newPassword":  "New password is required",
			},
		},
		{
			name: "Weak password and bad email",
			body: `{"email":"not-an-email","providedCode":"123456","newPassword":"weakpass"}`,
			wantFields: map[string]string{
				"email":       "Must be a valid email address",
				"newPassword": "New password must be at least 8 characters and contain a lowercase letter, an uppercase letter and a digit",
			},
		},
		{
			name:       "Non numeric code",
			body:       `{"email":"a@example.com","providedCode":"abc123","newPassword":"NewPass123"}`,
			wantFields: map[string]string{"providedCode": "Provided code must be a number"},
		},
		{
			name:       "Boolean code",
			body:       `{"email":"a@example.com","providedCode":true,"newPassword":"NewPass123"}`,
			wantFields: map[string]string{"providedCode": "Provided code must be a number"},
		},
		{
			name:       "Malformed JSON",
			body:       `{"email":`,
			wantFields: map[string]string{"body": "Request body is not valid JSON"},
		},
		{
			name:       "Wrong type",
			body:       `{"email":42}`,
			wantFields: map[string]string{"email": "Must be of type string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req codeRequest
			err := bindJSON(tt.body, &req)
			require.Error(t, err)
			assert.Equal(t, tt.wantFields, FieldErrors(err))
		})
	}
}

func TestFieldErrors_MinMax(t *testing.T) {
	Register()

	req := signupRequest{Email: "a@example.com", Password: "12345", Name: string(make([]byte, 101))}
	err := binding.Validator.ValidateStruct(&req)
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "Password must be at least 6 characters long", fields["password"])
	assert.Equal(t, "Name must not exceed 100 characters", fields["name"])
}

func TestFieldErrors_Nil(t *testing.T) {
	assert.Empty(t, FieldErrors(nil))
}
