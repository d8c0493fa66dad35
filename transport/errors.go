package transport

import (
	"github.com/goliatone/go-contractkit/core"
	goerrors "github.com/goliatone/go-errors"
)

// sinkError builds a delivery error tagged with the sink kind. A nil source
// yields a fresh error; otherwise source is wrapped.
func sinkError(
	kind string,
	source error,
	category goerrors.Category,
	code int,
	message string,
	details map[string]any,
) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, category)
	} else {
		err = goerrors.Wrap(source, category, message)
	}
	metadata := map[string]any{"sink": kind}
	for key, value := range details {
		metadata[key] = value
	}
	return err.
		WithCode(code).
		WithTextCode(sinkTextCode(category)).
		WithMetadata(metadata)
}

func sinkTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.ContractErrorBadInput
	case goerrors.CategoryNotFound:
		return core.ContractErrorSinkNotFound
	case goerrors.CategoryOperation, goerrors.CategoryExternal:
		return core.ContractErrorDeliveryFailed
	default:
		return core.ContractErrorInternal
	}
}
