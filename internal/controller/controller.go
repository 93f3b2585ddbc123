// Package controller holds the pieces shared by the teacher and student HTTP
// controllers: caller identity, request binding and error rendering.
package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
	"github.com/lshigami/classroom/internal/dto"
	"github.com/lshigami/classroom/internal/model"
	"github.com/lshigami/classroom/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	identityKey = "identity"
)

// Identity resolves the caller from the session headers set by the gateway.
// Requests without a usable identity are rejected with 401.
func Identity() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := model.Identity{
			UserID: strings.TrimSpace(ctx.GetHeader(HeaderUserID)),
			Role:   model.Role(strings.ToLower(strings.TrimSpace(ctx.GetHeader(HeaderUserRole)))),
		}
		if id.UserID == "" || !id.Role.Valid() {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Message: "Missing or invalid identity",
				Details: []string{fmt.Sprintf("%s and %s headers are required", HeaderUserID, HeaderUserRole)},
			})
			return
		}
		ctx.Set(identityKey, id)
		ctx.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles with 403. It must
// run after Identity.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := Caller(ctx)
		for _, r := range roles {
			if id.Role == r {
				ctx.Next()
				return
			}
		}
		log.Warn().Str("user", id.UserID).Str("role", string(id.Role)).Str("path", ctx.FullPath()).Msg("Role not allowed")
		ctx.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
			Message: "Forbidden",
			Details: []string{fmt.Sprintf("role %q cannot use this endpoint", id.Role)},
		})
	}
}

// Caller returns the identity stored by the Identity middleware.
func Caller(ctx *gin.Context) model.Identity {
	if v, ok := ctx.Get(identityKey); ok {
		if id, ok := v.(model.Identity); ok {
			return id
		}
	}
	return model.Identity{}
}

// BindError renders a binding failure as 400 with one detail per invalid field.
func BindError(ctx *gin.Context, err error, op string) {
	log.Warn().Err(err).Str("op", op).Msg("Failed to bind request")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s failed on '%s'", fe.Field(), fe.Tag()))
		}
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Details: details})
		return
	}
	ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request", Details: []string{err.Error()}})
}

// StatusOf maps an engine error to its HTTP status.
func StatusOf(err error) int {
	switch model.KindOf(err) {
	case model.KindValidation:
		return http.StatusBadRequest
	case model.KindNotFound:
		return http.StatusNotFound
	case model.KindDuplicate, model.KindStateConflict:
		return http.StatusConflict
	case model.KindAuthorization:
		return http.StatusForbidden
	}
	if errors.Is(err, service.ErrGeneratorUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorBody builds the response body for an engine error.
func ErrorBody(err error) dto.ErrorResponse {
	var e *model.Error
	if errors.As(err, &e) {
		return dto.ErrorResponse{
			Message:       e.Message,
			Details:       []string{e.Error()},
			Field:         e.Field,
			CurrentStatus: e.Status,
		}
	}
	if StatusOf(err) == http.StatusInternalServerError {
		return dto.ErrorResponse{Message: "Internal server error"}
	}
	return dto.ErrorResponse{Message: err.Error()}
}

// Fail logs err and writes the mapped status and body.
func Fail(ctx *gin.Context, err error, op string) {
	status := StatusOf(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Str("op", op).Int("status", status).Str("user", Caller(ctx).UserID).Msg("Request failed")
	ctx.JSON(status, ErrorBody(err))
}

func ToProblemInput(req dto.ProblemRequest) model.ProblemInput {
	var in model.ProblemInput
	copier.Copy(&in, &req)
	return in
}

func ToProblemResponse(p model.Problem) dto.ProblemResponse {
	var resp dto.ProblemResponse
	copier.Copy(&resp, &p)
	return resp
}

func ToPoolEntryResponse(e model.PoolEntry) dto.PoolEntryResponse {
	return dto.PoolEntryResponse{
		ProblemResponse: ToProblemResponse(e.Problem),
		RegisteredBy:    e.RegisteredBy,
		RegisteredAt:    e.RegisteredAt,
	}
}

func ToPoolEntryResponses(entries []model.PoolEntry) []dto.PoolEntryResponse {
	out := make([]dto.PoolEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ToPoolEntryResponse(e)
	}
	return out
}

func ToSubmissionResponse(s model.Submission) dto.SubmissionResponse {
	var resp dto.SubmissionResponse
	copier.Copy(&resp, &s)
	return resp
}

func ToSubmissionResponses(subs []model.Submission) []dto.SubmissionResponse {
	out := make([]dto.SubmissionResponse, len(subs))
	for i, s := range subs {
		out[i] = ToSubmissionResponse(s)
	}
	return out
}
