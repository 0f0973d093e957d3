package validators

import (
	"user-profile-api/internal/models"
)

type UserValidator interface {
	// ValidateCreate checks the identifiers a create-or-update body must carry.
	ValidateCreate(body map[string]interface{}) (uid string, err error)
	// ValidateUpdate resolves the lookup for a sparse update body.
	ValidateUpdate(body map[string]interface{}) (models.Lookup, error)
	// ValidateLookup resolves the lookup for query-addressed operations.
	ValidateLookup(method, uid, email string) (models.Lookup, error)
}
