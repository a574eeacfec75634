// Package apierror maps service errors onto what the transports send back:
// an HTTP status with a short label, and a gRPC status code.
package apierror

import (
	"errors"
	"net/http"
	"sort"

	"github.com/dmitrijs2005/userservice/internal/common"
	"github.com/dmitrijs2005/userservice/internal/server/validation"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	internalLabel   = "Internal Server Error"
	internalMessage = "An unexpected error occurred"
)

// Problem is the client-facing description of a failure. Fields is set only
// for validation failures.
type Problem struct {
	HTTPStatus int
	Label      string
	Message    string
	Code       codes.Code
	Fields     map[string]string
}

// Internal reports whether the underlying error was not a recognized kind.
func (p Problem) Internal() bool {
	return p.HTTPStatus == http.StatusInternalServerError
}

// FromError classifies err. Unknown errors never expose their text.
func FromError(err error) Problem {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return Problem{
			HTTPStatus: http.StatusBadRequest,
			Label:      "Validation Failed",
			Message:    "Invalid input data",
			Code:       codes.InvalidArgument,
			Fields:     verr.Fields,
		}
	}

	switch {
	case errors.Is(err, common.ErrUsernameConflict):
		return Problem{http.StatusConflict, "Username Already Exists", err.Error(), codes.AlreadyExists, nil}
	case errors.Is(err, common.ErrEmailConflict):
		return Problem{http.StatusConflict, "Email Already Exists", err.Error(), codes.AlreadyExists, nil}
	case errors.Is(err, common.ErrUserNotFound):
		return Problem{http.StatusNotFound, "User Not Found", err.Error(), codes.NotFound, nil}
	case errors.Is(err, common.ErrInvalidCredentials):
		return Problem{http.StatusUnauthorized, "Invalid Credentials", err.Error(), codes.Unauthenticated, nil}
	case errors.Is(err, common.ErrAuthenticationRequired):
		return Problem{http.StatusUnauthorized, "Unauthorized", "Full authentication is required to access this resource", codes.Unauthenticated, nil}
	case errors.Is(err, common.ErrRegistrationFailed):
		return Problem{http.StatusInternalServerError, "Registration Failed", err.Error(), codes.Internal, nil}
	default:
		return Problem{http.StatusInternalServerError, internalLabel, internalMessage, codes.Internal, nil}
	}
}

// GRPCStatus converts err into a status error. Validation failures carry an
// errdetails.BadRequest listing each field.
func GRPCStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	p := FromError(err)
	st := status.New(p.Code, p.Message)
	if len(p.Fields) == 0 {
		return st.Err()
	}

	names := make([]string, 0, len(p.Fields))
	for f := range p.Fields {
		names = append(names, f)
	}
	sort.Strings(names)

	br := &errdetails.BadRequest{}
	for _, f := range names {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f,
			Description: p.Fields[f],
		})
	}

	detailed, derr := st.WithDetails(br)
	if derr != nil {
		return st.Err()
	}
	return detailed.Err()
}
