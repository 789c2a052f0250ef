package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/services"
	"github.com/submisoon/assessment-service/internal/utils"
	"github.com/submisoon/assessment-service/internal/validator"
)

// SuccessResponse is the envelope for every successful API reply.
type SuccessResponse struct {
	Data    any            `json:"data"`
	Paging  *models.Paging `json:"paging,omitempty"`
	Success bool           `json:"success"`
	Message string         `json:"message,omitempty"`
}

// ErrorResponse is the envelope for every failed API reply.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c, h.logger).Info(msg, args...)
}

// parseIDParam reads a positive numeric path parameter, writing the error
// response itself and returning 0 on failure.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorBody{
				Code:    services.CodeValidationFailed,
				Message: "invalid " + name + " parameter",
			},
		})
		return 0
	}
	return uint(id)
}

func (h *BaseHandler) respondOK(c *gin.Context, data any, paging *models.Paging, message string) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data:    data,
		Paging:  paging,
		Success: true,
		Message: message,
	})
}

// handleServiceError translates service errors into the API error shape.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorBody{
				Code:    services.CodeValidationFailed,
				Message: "request validation failed",
				Details: validationErrs,
			},
		})
		return
	}

	code := services.ErrorCode(err)
	if code == "" {
		utils.LoggerFromContext(c, h.logger).Error("Request failed", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorBody{
				Code:    "INTERNAL_ERROR",
				Message: "an unexpected error occurred",
			},
		})
		return
	}

	c.JSON(statusForCode(code), ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: err.Error(),
			Details: detailsFor(err),
		},
	})
}

func statusForCode(code string) int {
	switch code {
	case services.CodeAssessmentNotFound, services.CodeQuestionNotFound, services.CodeFileNotFound:
		return http.StatusNotFound
	case services.CodeAccessDenied:
		return http.StatusForbidden
	case services.CodeAssessmentExpired:
		return http.StatusGone
	case services.CodeAlreadySubmitted:
		return http.StatusConflict
	case services.CodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case services.CodeIncompleteAssessment:
		return http.StatusUnprocessableEntity
	case services.CodeInvalidCredentials, services.CodeInvalidSignature:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}

// detailsFor surfaces the structured payload some errors carry so clients
// can act on it without parsing the message.
func detailsFor(err error) any {
	var (
		submittedErr  *services.AlreadySubmittedError
		optionErr     *services.InvalidOptionError
		fileTypeErr   *services.InvalidFileTypeError
		fileSizeErr   *services.FileTooLargeError
		incompleteErr *services.IncompleteAssessmentError
		missingErr    *services.MissingAnswerDataError
		typeErr       *services.AnswerTypeMismatchError
	)

	switch {
	case errors.As(err, &submittedErr):
		return gin.H{
			"submitted_at": submittedErr.SubmittedAt,
			"status":       submittedErr.Status,
		}
	case errors.As(err, &optionErr):
		return gin.H{
			"question_id":      optionErr.QuestionID,
			"selected_option":  optionErr.SelectedOption,
			"valid_option_ids": optionErr.ValidOptionIDs,
		}
	case errors.As(err, &fileTypeErr):
		return gin.H{
			"question_id":        fileTypeErr.QuestionID,
			"received_extension": fileTypeErr.ReceivedExtension,
			"allowed_extensions": fileTypeErr.AllowedExtensions,
		}
	case errors.As(err, &fileSizeErr):
		return gin.H{
			"question_id": fileSizeErr.QuestionID,
			"file_size":   fileSizeErr.FileSize,
			"max_size":    fileSizeErr.MaxSize,
		}
	case errors.As(err, &incompleteErr):
		return gin.H{
			"total_questions":      incompleteErr.TotalQuestions,
			"answered_questions":   incompleteErr.AnsweredQuestions,
			"unanswered_questions": incompleteErr.UnansweredQuestions,
		}
	case errors.As(err, &missingErr):
		return gin.H{
			"question_id":   missingErr.QuestionID,
			"answer_type":   missingErr.AnswerType,
			"missing_field": missingErr.MissingField,
		}
	case errors.As(err, &typeErr):
		return gin.H{
			"question_id":   typeErr.QuestionID,
			"expected_type": typeErr.ExpectedType,
			"received_type": typeErr.ReceivedType,
		}
	}
	return nil
}

// currentUserID reads the authenticated user id set by the auth middleware.
func (h *BaseHandler) currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: ErrorBody{
				Code:    "UNAUTHENTICATED",
				Message: "authentication required",
			},
		})
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: ErrorBody{
				Code:    "UNAUTHENTICATED",
				Message: "authentication required",
			},
		})
		return 0, false
	}
	return userID, true
}
