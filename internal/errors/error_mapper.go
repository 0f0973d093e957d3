package errors

import (
	"errors"
	"net/http"
)

type operationMessages struct {
	notFound string
	internal string
}

var messagesByMethod = map[string]operationMessages{
	http.MethodPost:   {notFound: MsgUserNotFound, internal: MsgSaveFailed},
	http.MethodGet:    {notFound: MsgUserNotFound, internal: MsgInternalGet},
	http.MethodPut:    {notFound: MsgUserNotFoundPut, internal: MsgInternalPut},
	http.MethodDelete: {notFound: MsgUserNotFoundDelete, internal: MsgInternalDelete},
}

// MapError converts a technical error into a user-friendly AppError for the given HTTP method.
func MapError(err error, method string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	msgs, ok := messagesByMethod[method]
	if !ok {
		msgs = operationMessages{notFound: MsgUserNotFound, internal: MsgInternalError}
	}
	technicalMessage := err.Error()

	switch {
	case errors.Is(err, ErrInvalidBody):
		msg := MsgInvalidBody
		if method == http.MethodPut {
			msg = MsgInvalidBodyPut
		}
		return NewAppError(technicalMessage, msg, ErrCodeValidation, http.StatusBadRequest, err)
	case errors.Is(err, ErrUserNotFound):
		return NewAppError(technicalMessage, msgs.notFound, ErrCodeUserNotFound, http.StatusNotFound, err)
	case errors.Is(err, ErrDuplicateUser):
		return NewAppError(technicalMessage, MsgConflict, ErrCodeConflict, http.StatusConflict, err)
	default:
		return NewAppError(technicalMessage, msgs.internal, ErrCodeInternal, http.StatusInternalServerError, err)
	}
}
