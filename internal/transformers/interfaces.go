package transformers

import (
	"user-profile-api/internal/models"
)

// ProfileTransformer turns a decoded JSON body into a normalized ProfileUpdate.
type ProfileTransformer interface {
	// ForUpsert merges the profile groups over the flat body and maps every known field.
	ForUpsert(body map[string]interface{}) (*models.ProfileUpdate, error)
	// ForUpdate maps only the supplied fields, never the identifiers.
	ForUpdate(body map[string]interface{}) (*models.ProfileUpdate, error)
}

type AddressTransformer interface {
	NormalizeAddressComponent(input string) string
	ParseAddresses(raw interface{}) ([]models.Address, error)
}
