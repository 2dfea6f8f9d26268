package query

import (
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-social-link/core"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ServiceErrorInternal)
}

func queryValidationError(field string, message string) error {
	return goerrors.NewValidation("query: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func queryNotFoundError(handle string) error {
	return goerrors.Wrap(
		fmt.Errorf("%w: %s", core.ErrAccountNotFound, handle),
		goerrors.CategoryNotFound,
		"account not found",
	).
		WithCode(http.StatusNotFound).
		WithTextCode(core.ServiceErrorAccountNotFound)
}
