package validation

import (
	"strings"

	"github.com/ndewijer/Crypto-Cost-Basis-Backend/internal/api/request"
)

// ValidateCreateUser validates a user creation request. The name is required and at most
// 100 characters.
func ValidateCreateUser(req request.CreateUserRequest) error {
	errors := make(map[string]string)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		errors["name"] = "name is required"
	} else if len(name) > 100 {
		errors["name"] = "name must be 100 characters or less"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}
	return nil
}
