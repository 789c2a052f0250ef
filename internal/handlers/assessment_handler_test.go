package handlers

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/services"
	"github.com/submisoon/assessment-service/internal/utils"
	"github.com/submisoon/assessment-service/internal/validator"
)

func testHandler() *AssessmentHandler {
	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewAssessmentHandler(nil, validator.New(), logger)
}

func multipartContext(t *testing.T, build func(w *multipart.Writer)) *gin.Context {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	build(writer)
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/assessments/1/submit", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req
	return c
}

func TestParseAnswers_Multipart(t *testing.T) {
	handler := testHandler()

	c := multipartContext(t, func(w *multipart.Writer) {
		_ = w.WriteField("answers[0][question_id]", "1")
		_ = w.WriteField("answers[0][answer_type]", "essay")
		_ = w.WriteField("answers[0][text]", "my essay")

		_ = w.WriteField("answers[1][question_id]", "2")
		_ = w.WriteField("answers[1][answer_type]", "mcq")
		_ = w.WriteField("answers[1][option_id]", "21")

		_ = w.WriteField("answers[2][question_id]", "3")
		_ = w.WriteField("answers[2][answer_type]", "file")
		part, _ := w.CreateFormFile("answers[2][file]", "report.pdf")
		_, _ = part.Write([]byte("pdf bytes"))

		// Unrelated fields are ignored.
		_ = w.WriteField("csrf_token", "abc")
	})

	answers, err := handler.parseAnswers(c)
	if err != nil {
		t.Fatalf("parseAnswers failed: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("answers = %d, want 3", len(answers))
	}

	essay := answers[0]
	if essay.QuestionID != 1 || essay.AnswerType != models.QuestionEssay {
		t.Errorf("essay slot = %+v", essay)
	}
	if essay.Text == nil || *essay.Text != "my essay" {
		t.Errorf("essay text = %v", essay.Text)
	}

	mcq := answers[1]
	if mcq.QuestionID != 2 || mcq.OptionID == nil || *mcq.OptionID != 21 {
		t.Errorf("mcq slot = %+v", mcq)
	}

	file := answers[2]
	if file.QuestionID != 3 || file.File == nil || file.File.Filename != "report.pdf" {
		t.Errorf("file slot = %+v", file)
	}
}

func TestParseAnswers_SparseIndexes(t *testing.T) {
	handler := testHandler()

	c := multipartContext(t, func(w *multipart.Writer) {
		_ = w.WriteField("answers[5][question_id]", "1")
		_ = w.WriteField("answers[5][answer_type]", "essay")
		_ = w.WriteField("answers[5][text]", "late slot")
	})

	answers, err := handler.parseAnswers(c)
	if err != nil {
		t.Fatalf("parseAnswers failed: %v", err)
	}
	if len(answers) != 1 || answers[0].QuestionID != 1 {
		t.Errorf("answers = %+v", answers)
	}
}

func TestParseAnswers_BadNumbers(t *testing.T) {
	handler := testHandler()

	c := multipartContext(t, func(w *multipart.Writer) {
		_ = w.WriteField("answers[0][question_id]", "abc")
		_ = w.WriteField("answers[0][answer_type]", "essay")
	})

	if _, err := handler.parseAnswers(c); err == nil {
		t.Error("expected error for non-numeric question_id")
	}
}

func TestParseAnswers_JSONBody(t *testing.T) {
	handler := testHandler()

	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	body := `[{"question_id": 1, "answer_type": "essay", "text": "from json"}]`
	req := httptest.NewRequest(http.MethodPost, "/assessments/1/draft", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	answers, err := handler.parseAnswers(c)
	if err != nil {
		t.Fatalf("parseAnswers failed: %v", err)
	}
	if len(answers) != 1 || answers[0].Text == nil || *answers[0].Text != "from json" {
		t.Errorf("answers = %+v", answers)
	}
}

func TestStatusForCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{services.CodeAssessmentNotFound, http.StatusNotFound},
		{services.CodeQuestionNotFound, http.StatusNotFound},
		{services.CodeFileNotFound, http.StatusNotFound},
		{services.CodeAccessDenied, http.StatusForbidden},
		{services.CodeAssessmentExpired, http.StatusGone},
		{services.CodeAlreadySubmitted, http.StatusConflict},
		{services.CodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{services.CodeIncompleteAssessment, http.StatusUnprocessableEntity},
		{services.CodeInvalidCredentials, http.StatusUnauthorized},
		{services.CodeInvalidSignature, http.StatusUnauthorized},
		{services.CodeEmptyAnswer, http.StatusBadRequest},
		{services.CodeMissingAnswerData, http.StatusBadRequest},
		{services.CodeInvalidOption, http.StatusBadRequest},
		{services.CodeAnswerTypeMismatch, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := statusForCode(tt.code); got != tt.want {
				t.Errorf("statusForCode(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
