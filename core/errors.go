package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput              = "SOCIAL_BAD_INPUT"
	ServiceErrorAuthInitiationFailed  = "SOCIAL_AUTH_INITIATION_FAILED"
	ServiceErrorAccountNotLinked      = "SOCIAL_ACCOUNT_NOT_LINKED"
	ServiceErrorAccountNotFound       = "SOCIAL_ACCOUNT_NOT_FOUND"
	ServiceErrorTooManyAttachments    = "SOCIAL_TOO_MANY_ATTACHMENTS"
	ServiceErrorProviderOperation     = "SOCIAL_PROVIDER_OPERATION_FAILED"
	ServiceErrorInternal              = "SOCIAL_INTERNAL_ERROR"
)

func serviceErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureServiceErrorEnvelope(richErr)
	}

	switch {
	case goerrors.Is(err, ErrAuthInitiationFailed):
		return ensureServiceErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryOperation, "provider handshake could not be initiated").
				WithCode(http.StatusUnprocessableEntity).
				WithTextCode(ServiceErrorAuthInitiationFailed),
		)
	case goerrors.Is(err, ErrAccountNotLinked):
		return ensureServiceErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryNotFound, "no linked account for handle").
				WithCode(http.StatusUnprocessableEntity).
				WithTextCode(ServiceErrorAccountNotLinked),
		)
	case goerrors.Is(err, ErrAccountNotFound):
		return ensureServiceErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryNotFound, "account not found").
				WithCode(http.StatusNotFound).
				WithTextCode(ServiceErrorAccountNotFound),
		)
	case goerrors.Is(err, ErrTooManyAttachments):
		return ensureServiceErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryValidation, "too many attachments").
				WithCode(http.StatusUnprocessableEntity).
				WithTextCode(ServiceErrorTooManyAttachments),
		)
	}

	var providerErr *ProviderError
	if goerrors.As(err, &providerErr) {
		return ensureServiceErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryOperation, "provider operation failed").
				WithCode(http.StatusUnprocessableEntity).
				WithTextCode(ServiceErrorProviderOperation),
		)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	if strings.Contains(msg, "required") || strings.Contains(msg, "invalid") {
		return ensureServiceErrorEnvelope(
			goerrors.Wrap(err, goerrors.CategoryBadInput, err.Error()).
				WithTextCode(ServiceErrorBadInput),
		)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureServiceErrorEnvelope(mapped)
}

func ensureServiceErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = serviceHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultServiceTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultServiceTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryNotFound:
		return ServiceErrorAccountNotFound
	case goerrors.CategoryOperation:
		return ServiceErrorProviderOperation
	default:
		return ServiceErrorInternal
	}
}

func serviceHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput:
		return http.StatusBadRequest
	case goerrors.CategoryValidation:
		return http.StatusUnprocessableEntity
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
