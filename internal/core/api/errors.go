package api

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/solatis/vizcore/internal/types"
)

// Error mapping happens once, at the edge of every handler.
// Auth errors are mapped in the auth package interceptor.
// Data source failures map to UNAVAILABLE.
// Over-limit datasets and rule lists map to RESOURCE_EXHAUSTED.
// Malformed requests and configs map to INVALID_ARGUMENT.
// Context timeouts map to DEADLINE_EXCEEDED.

var (
	// errInvalidRequest marks a request body that cannot be decoded or is
	// inconsistent.
	errInvalidRequest = errors.New("invalid request")

	// errDataSource marks a failure of the SQL data provider.
	errDataSource = errors.New("data source unavailable")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...))
}

// requestErrors are the sentinels caused by what the caller sent.
var requestErrors = []error{
	errInvalidRequest,
	types.ErrMalformedCondition,
	types.ErrMissingColor,
	types.ErrMissingTarget,
	types.ErrUnknownRange,
	types.ErrInvalidRuleID,
	types.ErrUnsupportedFormat,
	types.ErrColumnNotFound,
	types.ErrInvalidChartConfig,
	types.ErrUnknownChart,
	types.ErrWriteQuery,
	types.ErrTooManyRows,
	types.ErrTooManyRules,
}

func isRequestError(err error) bool {
	for _, target := range requestErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusCode maps a handler error to its gRPC code.
func statusCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, types.ErrTooManyRows), errors.Is(err, types.ErrTooManyRules):
		return codes.ResourceExhausted
	case errors.Is(err, types.ErrContainerNotFound):
		return codes.NotFound
	case errors.Is(err, errDataSource), errors.Is(err, types.ErrDispatcherDisposed):
		return codes.Unavailable
	case isRequestError(err):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// toStatus converts a handler error to a gRPC status error.
// Errors that already carry a status pass through.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := statusCode(err)
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
