package graphql

import (
	"context"
	"errors"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/persistorai/pathfinder/internal/models"
)

// GraphQL error code constants.
const (
	codeNotFound      = "NOT_FOUND"
	codeBadRequest    = "BAD_REQUEST"
	codeInvalidStage  = "INVALID_STAGE"
	codeMemoryLimit   = "MEMORY_LIMIT_EXCEEDED"
	codeTimeout       = "TIMEOUT"
	codeInternalError = "INTERNAL_ERROR"
)

var badRequestErrors = []error{
	models.ErrInvalidArgument,
	models.ErrMissingCollection,
	models.ErrMissingStart,
	models.ErrMissingEnd,
	models.ErrMissingField,
	models.ErrMissingDocuments,
	models.ErrUnknownAlgorithm,
	models.ErrNegativeWeight,
}

// gqlErr maps a service error to a GraphQL error with an extension code. It
// never leaks internal details for unknown errors.
func gqlErr(path ast.Path, err error) *gqlerror.Error {
	switch {
	case errors.Is(err, models.ErrCollectionNotFound):
		return gqlErrWithCode(path, "collection not found", codeNotFound)
	case errors.Is(err, models.ErrNodeNotFound):
		return gqlErrWithCode(path, "document not found", codeNotFound)
	case errors.Is(err, models.ErrMemoryLimitExceeded):
		return gqlErrWithCode(path, err.Error(), codeMemoryLimit)
	case errors.Is(err, models.ErrInvalidStageSpec):
		return gqlErrWithCode(path, err.Error(), codeInvalidStage)
	case errors.Is(err, context.DeadlineExceeded):
		return gqlErrWithCode(path, "query timed out", codeTimeout)
	}

	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return gqlErrWithCode(path, err.Error(), codeBadRequest)
		}
	}

	return gqlErrWithCode(path, "internal server error", codeInternalError)
}

func gqlErrWithCode(path ast.Path, message, code string) *gqlerror.Error {
	return &gqlerror.Error{
		Message: message,
		Path:    path,
		Extensions: map[string]any{
			"code": code,
		},
	}
}
