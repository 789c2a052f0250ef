package handlers

import (
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/submisoon/assessment-service/internal/services"
	"github.com/submisoon/assessment-service/internal/utils"
)

type FileHandler struct {
	BaseHandler
	fileAccess services.FileAccessService
}

func NewFileHandler(fileAccess services.FileAccessService, logger utils.Logger) *FileHandler {
	return &FileHandler{
		BaseHandler: NewBaseHandler(logger),
		fileAccess:  fileAccess,
	}
}

// ServeFile streams a stored answer file through a signed link
// @Summary Download or preview an answer file
// @Description Serves a file referenced by a short-lived signed URL
// @Tags files
// @Produce octet-stream
// @Param id path uint true "File ID"
// @Param token query string true "Signed access token"
// @Param userId query int true "User the link was issued for"
// @Param expires query int true "Unix expiry timestamp"
// @Param download query bool false "Force attachment disposition"
// @Success 200 {file} binary
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /files/{id} [get]
func (h *FileHandler) ServeFile(c *gin.Context) {
	fileID := h.parseIDParam(c, "id")
	if fileID == 0 {
		return
	}

	token := c.Query("token")
	userID, userErr := strconv.ParseUint(c.Query("userId"), 10, 32)
	expires, expErr := strconv.ParseInt(c.Query("expires"), 10, 64)
	if token == "" || userErr != nil || expErr != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error: ErrorBody{
				Code:    services.CodeInvalidSignature,
				Message: "this link is missing its access parameters",
			},
		})
		return
	}

	file, err := h.fileAccess.ResolveSigned(c.Request.Context(), fileID, uint(userID), expires, token)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	reader, err := h.fileAccess.Open(file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(file.Extension)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	disposition := "inline"
	if c.Query("download") == "true" || forceDownload(file.Extension) {
		disposition = "attachment"
	}

	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, file.OriginalName))
	c.Header("Content-Length", strconv.FormatInt(file.Size, 10))
	c.DataFromReader(http.StatusOK, file.Size, contentType, reader, nil)
}

// forceDownload reports whether a type has no useful inline rendering.
// PDFs and images preview in the browser; documents download.
func forceDownload(extension string) bool {
	switch extension {
	case ".doc", ".docx":
		return true
	}
	return false
}
