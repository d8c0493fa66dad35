package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ContractErrorBadInput           = "CONTRACT_BAD_INPUT"
	ContractErrorCollaboratorFailed = "CONTRACT_COLLABORATOR_FAILED"
	ContractErrorSinkNotFound       = "CONTRACT_SINK_NOT_FOUND"
	ContractErrorDeliveryFailed     = "CONTRACT_DELIVERY_FAILED"
	ContractErrorInternal           = "CONTRACT_INTERNAL_ERROR"
)

func badInputError(message string) *goerrors.Error {
	return newContractError(message, goerrors.CategoryBadInput, ContractErrorBadInput)
}

func contractErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureContractErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "sink") && strings.Contains(msg, "not registered"):
		return wrapContractError(err, goerrors.CategoryNotFound, ContractErrorSinkNotFound)
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return wrapContractError(err, goerrors.CategoryBadInput, ContractErrorBadInput)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureContractErrorEnvelope(mapped)
}

func deliveryError(err error, sinkKind string) *goerrors.Error {
	wrapped := goerrors.Wrap(err, goerrors.CategoryOperation, "core: envelope delivery failed").
		WithTextCode(ContractErrorDeliveryFailed)
	wrapped.WithMetadata(map[string]any{"sink_kind": sinkKind})
	return ensureContractErrorEnvelope(wrapped)
}

func newContractError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureContractErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func wrapContractError(err error, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureContractErrorEnvelope(
		goerrors.Wrap(err, category, err.Error()).
			WithTextCode(textCode),
	)
}

func ensureContractErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = contractHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultContractTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultContractTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ContractErrorBadInput
	case goerrors.CategoryNotFound:
		return ContractErrorSinkNotFound
	case goerrors.CategoryExternal:
		return ContractErrorCollaboratorFailed
	case goerrors.CategoryOperation:
		return ContractErrorDeliveryFailed
	default:
		return ContractErrorInternal
	}
}

func contractHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	case goerrors.CategoryOperation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
