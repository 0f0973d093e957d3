package transformers

import (
	"strings"

	apperrors "user-profile-api/internal/errors"
	"user-profile-api/internal/models"
)

type addressTransformer struct{}

func NewAddressTransformer() AddressTransformer {
	return &addressTransformer{}
}

func (t *addressTransformer) NormalizeAddressComponent(input string) string {
	return strings.TrimSpace(input)
}

// ParseAddresses converts a decoded "addresses" value into Address rows.
// The caller is expected to have treated a missing or null value as omitted.
func (t *addressTransformer) ParseAddresses(raw interface{}) ([]models.Address, error) {
	items, ok := raw.([]interface{})
	if !ok {
		return nil, apperrors.NewValidationError(apperrors.MsgAddressesInvalid)
	}

	addresses := make([]models.Address, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, apperrors.NewValidationError(apperrors.MsgAddressesInvalid)
		}
		addresses = append(addresses, models.Address{
			Type:        t.text(obj["type"]),
			HouseNumber: t.text(obj["houseNumber"]),
			Street:      t.text(obj["street"]),
			Landmark:    t.text(obj["landmark"]),
			Area:        t.text(obj["area"]),
			City:        t.text(obj["city"]),
			State:       t.text(obj["state"]),
			PostalCode:  t.text(obj["postalCode"]),
			Latitude:    CoerceFloat(obj["latitude"]),
			Longitude:   CoerceFloat(obj["longitude"]),
			IsDefault:   CoerceBool(obj["isDefault"]),
		})
	}
	return addresses, nil
}

func (t *addressTransformer) text(v interface{}) string {
	s := CoerceText(v)
	if s == nil {
		return ""
	}
	return t.NormalizeAddressComponent(*s)
}
