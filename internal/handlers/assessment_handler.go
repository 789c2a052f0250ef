package handlers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/services"
	"github.com/submisoon/assessment-service/internal/utils"
	"github.com/submisoon/assessment-service/internal/validator"
)

type AssessmentHandler struct {
	BaseHandler
	assessmentService services.AssessmentService
	validator         *validator.Validator
}

func NewAssessmentHandler(
	assessmentService services.AssessmentService,
	validator *validator.Validator,
	logger utils.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assessmentService: assessmentService,
		validator:         validator,
	}
}

// answerFieldPattern matches multipart keys shaped like answers[0][text].
var answerFieldPattern = regexp.MustCompile(`^answers\[(\d+)\]\[([a-z_]+)\]$`)

// SaveDraft saves a partial set of answers without submitting
// @Summary Save assessment draft
// @Description Merges the supplied answers into the student's draft attempt
// @Tags assessments
// @Accept mpfd
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} SuccessResponse{data=models.SaveDraftResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /assessments/{id}/draft [put]
func (h *AssessmentHandler) SaveDraft(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Saving assessment draft", "assessment_id", assessmentID, "user_id", userID)

	answers, err := h.parseAnswers(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorBody{
				Code:    services.CodeValidationFailed,
				Message: err.Error(),
			},
		})
		return
	}

	result, err := h.assessmentService.SaveDraft(c.Request.Context(), assessmentID, userID, answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, result, nil, "Draft saved")
}

// Submit finalizes the student's attempt
// @Summary Submit assessment
// @Description Merges the supplied answers and submits the attempt for grading
// @Tags assessments
// @Accept mpfd
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} SuccessResponse{data=models.SubmitAssessmentResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /assessments/{id}/submit [post]
func (h *AssessmentHandler) Submit(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting assessment", "assessment_id", assessmentID, "user_id", userID)

	answers, err := h.parseAnswers(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorBody{
				Code:    services.CodeValidationFailed,
				Message: err.Error(),
			},
		})
		return
	}

	result, err := h.assessmentService.Submit(c.Request.Context(), assessmentID, userID, answers)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, result, nil, "Assessment submitted")
}

// GetIncompleteAssessments lists open assessments for the student
// @Summary List incomplete assessments
// @Tags assessments
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param academic_term_id query int false "Filter by academic term"
// @Success 200 {object} SuccessResponse{data=[]models.IncompleteAssessmentItem}
// @Router /assessments/incomplete [get]
func (h *AssessmentHandler) GetIncompleteAssessments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page, size := paginationParams(c)
	termID := termIDParam(c)

	items, paging, err := h.assessmentService.GetIncompleteAssessments(c.Request.Context(), userID, page, size, termID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, items, paging, "")
}

// GetIncompleteAssessmentDetail shows an open assessment with draft answers
// @Summary Get incomplete assessment detail
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} SuccessResponse{data=models.AssessmentDetail}
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /assessments/incomplete/{id} [get]
func (h *AssessmentHandler) GetIncompleteAssessmentDetail(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	detail, err := h.assessmentService.GetIncompleteAssessmentDetail(c.Request.Context(), assessmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, detail, nil, "")
}

// GetCompletedAssessments lists submitted assessments for the student
// @Summary List completed assessments
// @Tags assessments
// @Produce json
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Param academic_term_id query int false "Filter by academic term"
// @Success 200 {object} SuccessResponse{data=[]models.CompletedAssessmentItem}
// @Router /assessments/completed [get]
func (h *AssessmentHandler) GetCompletedAssessments(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	page, size := paginationParams(c)
	termID := termIDParam(c)

	items, paging, err := h.assessmentService.GetCompletedAssessments(c.Request.Context(), userID, page, size, termID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, items, paging, "")
}

// GetCompletedAssessmentDetail shows a submitted assessment with its answers
// @Summary Get completed assessment detail
// @Tags assessments
// @Produce json
// @Param id path uint true "Assessment ID"
// @Success 200 {object} SuccessResponse{data=models.AssessmentDetail}
// @Failure 404 {object} ErrorResponse
// @Router /assessments/completed/{id} [get]
func (h *AssessmentHandler) GetCompletedAssessmentDetail(c *gin.Context) {
	assessmentID := h.parseIDParam(c, "id")
	if assessmentID == 0 {
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	detail, err := h.assessmentService.GetCompletedAssessmentDetail(c.Request.Context(), assessmentID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.respondOK(c, detail, nil, "")
}

// parseAnswers reads answer slots from the request. Multipart carries file
// uploads under answers[i][file]; a JSON body works for text-only saves.
func (h *AssessmentHandler) parseAnswers(c *gin.Context) ([]models.AnswerInput, error) {
	contentType := c.ContentType()
	if strings.HasPrefix(contentType, "application/json") {
		var answers []models.AnswerInput
		if err := c.ShouldBindJSON(&answers); err != nil {
			return nil, &payloadError{"invalid JSON payload: " + err.Error()}
		}
		return answers, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return nil, &payloadError{"invalid multipart payload: " + err.Error()}
	}

	slots := make(map[int]*models.AnswerInput)
	maxIndex := -1

	slot := func(index int) *models.AnswerInput {
		if in, ok := slots[index]; ok {
			return in
		}
		in := &models.AnswerInput{}
		slots[index] = in
		if index > maxIndex {
			maxIndex = index
		}
		return in
	}

	for key, values := range form.Value {
		match := answerFieldPattern.FindStringSubmatch(key)
		if match == nil || len(values) == 0 {
			continue
		}
		index, _ := strconv.Atoi(match[1])
		in := slot(index)

		switch match[2] {
		case "question_id":
			id, err := strconv.ParseUint(values[0], 10, 32)
			if err != nil {
				return nil, &payloadError{"invalid question_id in " + key}
			}
			in.QuestionID = uint(id)
		case "answer_type":
			in.AnswerType = models.QuestionType(values[0])
		case "text":
			text := values[0]
			in.Text = &text
		case "option_id":
			id, err := strconv.ParseUint(values[0], 10, 32)
			if err != nil {
				return nil, &payloadError{"invalid option_id in " + key}
			}
			optionID := uint(id)
			in.OptionID = &optionID
		}
	}

	for key, files := range form.File {
		match := answerFieldPattern.FindStringSubmatch(key)
		if match == nil || match[2] != "file" || len(files) == 0 {
			continue
		}
		index, _ := strconv.Atoi(match[1])
		slot(index).File = files[0]
	}

	answers := make([]models.AnswerInput, 0, len(slots))
	for i := 0; i <= maxIndex; i++ {
		if in, ok := slots[i]; ok {
			answers = append(answers, *in)
		}
	}
	return answers, nil
}

type payloadError struct {
	message string
}

func (e *payloadError) Error() string { return e.message }

func paginationParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	return page, size
}

func termIDParam(c *gin.Context) *uint {
	raw := c.Query("academic_term_id")
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	termID := uint(parsed)
	return &termID
}
