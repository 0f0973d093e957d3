package transformers

import (
	"user-profile-api/internal/models"
	"user-profile-api/pkg/logger"
)

// Groups merged over the flat body, in increasing precedence.
var profileGroups = []string{"demographicData", "lifestyleData", "medicalData"}

// fieldMapper binds one JSON key to one column. coerce returns the column
// value and a setter for the model; skip drops the field entirely.
type fieldMapper struct {
	field  string
	column string
	coerce func(raw interface{}) (value interface{}, apply func(u *models.User), skip bool)
}

func textField(field, column string, set func(u *models.User, v *string)) fieldMapper {
	return fieldMapper{field: field, column: column, coerce: func(raw interface{}) (interface{}, func(*models.User), bool) {
		v := CoerceText(raw)
		return ptrValue(v), func(u *models.User) { set(u, v) }, false
	}}
}

// requiredTextField never writes null; a non-text value leaves the column untouched.
func requiredTextField(field, column string, set func(u *models.User, v string)) fieldMapper {
	return fieldMapper{field: field, column: column, coerce: func(raw interface{}) (interface{}, func(*models.User), bool) {
		v := CoerceText(raw)
		if v == nil || *v == "" {
			return nil, nil, true
		}
		s := *v
		return s, func(u *models.User) { set(u, s) }, false
	}}
}

func intField(field, column string, set func(u *models.User, v *int)) fieldMapper {
	return fieldMapper{field: field, column: column, coerce: func(raw interface{}) (interface{}, func(*models.User), bool) {
		v := CoerceInt(raw)
		return ptrValue(v), func(u *models.User) { set(u, v) }, false
	}}
}

func listField(field, column string, set func(u *models.User, v models.StringList)) fieldMapper {
	return fieldMapper{field: field, column: column, coerce: func(raw interface{}) (interface{}, func(*models.User), bool) {
		v := CoerceList(raw)
		return v, func(u *models.User) { set(u, v) }, false
	}}
}

var birthDateField = fieldMapper{field: "birthDate", column: "birth_date", coerce: func(raw interface{}) (interface{}, func(*models.User), bool) {
	v, ok := CoerceDate(raw)
	if !ok {
		logger.GlobalLogger.Warnf("Invalid birthDate provided: %v", raw)
	}
	return ptrValue(v), func(u *models.User) { u.BirthDate = v }, false
}}

// profileFields is the complete mapper table. Order only matters for output
// stability; precedence between sources is decided by mergeSources.
var profileFields = []fieldMapper{
	requiredTextField("email", "email", func(u *models.User, v string) { u.Email = v }),
	textField("phone", "phone", func(u *models.User, v *string) { u.Phone = v }),
	textField("name", "name", func(u *models.User, v *string) { u.Name = v }),
	textField("title", "title", func(u *models.User, v *string) { u.Title = v }),
	birthDateField,
	textField("gender", "gender", func(u *models.User, v *string) { u.Gender = v }),
	textField("bloodGroup", "blood_group", func(u *models.User, v *string) { u.BloodGroup = v }),
	intField("height", "height", func(u *models.User, v *int) { u.Height = v }),
	intField("weight", "weight", func(u *models.User, v *int) { u.Weight = v }),
	textField("maritalStatus", "marital_status", func(u *models.User, v *string) { u.MaritalStatus = v }),
	textField("contactNumber", "contact_number", func(u *models.User, v *string) { u.ContactNumber = v }),
	textField("alternateNumber", "alternate_number", func(u *models.User, v *string) { u.AlternateNumber = v }),
	textField("smokingHabit", "smoking_habit", func(u *models.User, v *string) { u.SmokingHabit = v }),
	textField("alcoholConsumption", "alcohol_consumption", func(u *models.User, v *string) { u.AlcoholConsumption = v }),
	textField("activityLevel", "activity_level", func(u *models.User, v *string) { u.ActivityLevel = v }),
	textField("dietHabit", "diet_habit", func(u *models.User, v *string) { u.DietHabit = v }),
	textField("occupation", "occupation", func(u *models.User, v *string) { u.Occupation = v }),
	listField("allergies", "allergies", func(u *models.User, v models.StringList) { u.Allergies = v }),
	listField("medications", "medications", func(u *models.User, v models.StringList) { u.Medications = v }),
	listField("chronicDiseases", "chronic_diseases", func(u *models.User, v models.StringList) { u.ChronicDiseases = v }),
	listField("injuries", "injuries", func(u *models.User, v models.StringList) { u.Injuries = v }),
	listField("surgeries", "surgeries", func(u *models.User, v models.StringList) { u.Surgeries = v }),
}

type profileTransformer struct {
	addresses AddressTransformer
}

func NewProfileTransformer(addresses AddressTransformer) ProfileTransformer {
	if addresses == nil {
		addresses = NewAddressTransformer()
	}
	return &profileTransformer{addresses: addresses}
}

func (t *profileTransformer) ForUpsert(body map[string]interface{}) (*models.ProfileUpdate, error) {
	return t.build(body, nil)
}

func (t *profileTransformer) ForUpdate(body map[string]interface{}) (*models.ProfileUpdate, error) {
	return t.build(body, map[string]bool{"email": true})
}

func (t *profileTransformer) build(body map[string]interface{}, exclude map[string]bool) (*models.ProfileUpdate, error) {
	update := &models.ProfileUpdate{}

	source := mergeSources(body)
	for _, m := range profileFields {
		if exclude[m.field] {
			continue
		}
		raw, ok := source[m.field]
		if !ok {
			continue
		}
		value, apply, skip := m.coerce(raw)
		if skip {
			// a blank group override falls back to the flat value
			flat, ok := body[m.field]
			if !ok {
				continue
			}
			if value, apply, skip = m.coerce(flat); skip {
				continue
			}
		}
		update.Set(models.FieldChange{Field: m.field, Column: m.column, Value: value, Apply: apply})
	}

	if raw, ok := body["addresses"]; ok && raw != nil {
		addresses, err := t.addresses.ParseAddresses(raw)
		if err != nil {
			return nil, err
		}
		update.Addresses = addresses
		update.ReplaceAddresses = true
	}

	return update, nil
}

// mergeSources overlays each object-valued profile group onto a copy of the
// flat body. Later groups win.
func mergeSources(body map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(body))
	for k, v := range body {
		merged[k] = v
	}
	for _, group := range profileGroups {
		values, ok := body[group].(map[string]interface{})
		if !ok {
			continue
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged
}

// ptrValue unwraps typed nil pointers so column maps carry an untyped nil.
func ptrValue[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
