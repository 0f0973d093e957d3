package validators

import (
	"net/http"
	"strings"

	apperrors "user-profile-api/internal/errors"
	"user-profile-api/internal/models"
	"user-profile-api/internal/transformers"
)

type userValidator struct{}

func NewUserValidator() UserValidator {
	return &userValidator{}
}

func (v *userValidator) ValidateCreate(body map[string]interface{}) (string, error) {
	if identifier(body, "email") == "" {
		return "", apperrors.NewValidationError(apperrors.MsgEmailRequired)
	}
	uid := identifier(body, "supabaseUid")
	if uid == "" {
		return "", apperrors.NewValidationError(apperrors.MsgUIDRequired)
	}
	return uid, nil
}

func (v *userValidator) ValidateUpdate(body map[string]interface{}) (models.Lookup, error) {
	lookup := models.Lookup{
		UID:   identifier(body, "supabaseUid"),
		Email: identifier(body, "email"),
	}
	if lookup.IsEmpty() {
		return lookup, apperrors.NewValidationError(apperrors.MsgIdentifierPut)
	}
	return lookup, nil
}

func (v *userValidator) ValidateLookup(method, uid, email string) (models.Lookup, error) {
	lookup := models.Lookup{UID: strings.TrimSpace(uid), Email: strings.TrimSpace(email)}
	if !lookup.IsEmpty() {
		return lookup, nil
	}
	if method == http.MethodDelete {
		return lookup, apperrors.NewValidationError(apperrors.MsgIdentifierDelete)
	}
	return lookup, apperrors.NewValidationError(apperrors.MsgIdentifierGet)
}

// identifier returns the trimmed text form of a field. Numbers and true are
// rendered as text; absent, null, false, zero and object values yield "".
func identifier(body map[string]interface{}, key string) string {
	raw := body[key]
	switch t := raw.(type) {
	case bool:
		if !t {
			return ""
		}
	case float64:
		if t == 0 {
			return ""
		}
	case int:
		if t == 0 {
			return ""
		}
	}
	v := transformers.CoerceText(raw)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
