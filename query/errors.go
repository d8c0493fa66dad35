package query

import (
	"net/http"

	"github.com/goliatone/go-contractkit/core"
	goerrors "github.com/goliatone/go-errors"
)

func missingDependency(handler string, dependency string) error {
	return goerrors.New("query: "+handler+" requires a "+dependency, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ContractErrorInternal).
		WithMetadata(map[string]any{"handler": handler})
}

func invalidMessage(messageType string, field string, message string) error {
	return goerrors.NewValidation("query: "+messageType+" is invalid", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ContractErrorBadInput).
		WithMetadata(map[string]any{"message_type": messageType}).
		WithSeverity(goerrors.SeverityError)
}
