package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harrylevesque/clientdir/internal/models"
)

func TestEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"john@example.com", true},
		{"a@b.co", true},
		{"john@example", false},
		{"john example@x.com", false},
		{"@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Email(tt.in), tt.in)
	}
}

func TestPhone(t *testing.T) {
	t.Parallel()

	assert.True(t, Phone("(11) 98765-4321"))
	assert.True(t, Phone("1198765432"))
	assert.False(t, Phone("123-456-789"))
	assert.False(t, Phone("119876543210"))
}

func TestNotEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, NotEmpty(" x "))
	assert.False(t, NotEmpty("   "))
	assert.False(t, Credentials("admin", " "))
	assert.True(t, Credentials("admin", "admin123"))
}

func TestClientErrors(t *testing.T) {
	t.Parallel()

	valid := models.ClientInput{
		Name:  "Maria Silva",
		Email: "maria@example.com",
		Phone: "11987654321",
		Address: models.Address{
			Street:  "Praça da Sé",
			City:    "São Paulo",
			Zipcode: "01001-000",
		},
	}
	assert.Empty(t, ClientErrors(valid))
	assert.True(t, Client(valid))

	bad := valid
	bad.Email = "maria"
	bad.Phone = ""
	bad.Address.City = " "
	errs := ClientErrors(bad)
	assert.Equal(t, FieldErrors{
		"email": "invalid email",
		"phone": "phone is required",
		"city":  "city is required",
	}, errs)
	assert.False(t, Client(bad))
}

func TestRegistrationErrors(t *testing.T) {
	t.Parallel()

	r := models.Registration{
		Username:        "joao",
		Password:        "secret",
		ConfirmPassword: "other",
		Name:            "João",
		Email:           "",
	}
	assert.Equal(t, FieldErrors{
		"confirm_password": "passwords do not match",
		"email":            "email is required",
	}, RegistrationErrors(r))

	r.ConfirmPassword = ""
	r.Email = "joao@example.com"
	assert.True(t, Registration(r))
}

func TestFormatPhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"mobile", "11987654321", "(11) 98765-4321"},
		{"landline", "1134567890", "(11) 3456-7890"},
		{"punctuated", "(11) 3456-7890", "(11) 3456-7890"},
		{"short", "12345", "12345"},
		{"us style", "123-456-7890x", "(12) 3456-7890"},
		{"too long", "123456789012", "123456789012"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPhone(tt.in))
		})
	}
}

func TestFormatCEP(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "01001-000", FormatCEP("01001000"))
	assert.Equal(t, "01001-000", FormatCEP("01.001-000"))
	assert.Equal(t, "0100", FormatCEP("01-00"))
}

func TestFormatAddressAndCapitalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Main St, New York - CEP: 10001", FormatAddress("Main St", "New York", "10001"))
	assert.Equal(t, "Hello World", CapitalizeWords("hELLO wORLD"))
	assert.Equal(t, "São Paulo", CapitalizeWords("são paulo"))
	assert.Equal(t, "Maria Da-silva D'ávila", CapitalizeWords("maria da-silva d'ÁVILA"))
	assert.Equal(t, "Ana  Luz", CapitalizeWords("ana  luz"))
}
