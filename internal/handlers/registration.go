package handlers

import (
	"errors"
	"net/http"

	"github.com/GunarsK-portfolio/voting-portal/internal/models"
	"github.com/GunarsK-portfolio/voting-portal/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DocumentField is the multipart field carrying the identity document.
const DocumentField = "verification_document"

// multipartOverhead is the allowance for form fields on top of the document limit.
const multipartOverhead = 1 << 20

// RegistrationHandler handles voter registration submissions.
type RegistrationHandler struct {
	registrations service.RegistrationService
	activity      *ActivityRecorder
	maxDocument   int64
	logger        *zap.Logger
}

// NewRegistrationHandler creates a new RegistrationHandler instance.
func NewRegistrationHandler(registrations service.RegistrationService, activity *ActivityRecorder, maxDocument int64, logger *zap.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		registrations: registrations,
		activity:      activity,
		maxDocument:   maxDocument,
		logger:        logger,
	}
}

// Register accepts a multipart/form-data registration with its document.
func (h *RegistrationHandler) Register(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxDocument+multipartOverhead)

	var form service.RegistrationForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg := service.DocumentSizeMessage(h.maxDocument)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":  msg,
				"errors": []string{msg},
			})
			return
		}
		RespondError(c, http.StatusBadRequest, "Invalid registration form.")
		return
	}

	var doc *service.Upload
	header, err := c.FormFile(DocumentField)
	switch {
	case err == nil:
		file, openErr := header.Open()
		if openErr != nil {
			LogAndRespondError(c, h.logger, http.StatusInternalServerError, openErr, service.MsgUploadFailed)
			return
		}
		defer file.Close()
		doc = &service.Upload{Filename: header.Filename, Size: header.Size, Content: file}
	case errors.Is(err, http.ErrMissingFile):
		// reported by validation
	default:
		RespondError(c, http.StatusBadRequest, "Invalid registration form.")
		return
	}

	result, err := h.registrations.Submit(c.Request.Context(), form, doc)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	h.activity.Record(c, 0, models.ActionRegistrationRequest, "Registration request submitted: "+form.FullName)
	c.JSON(http.StatusCreated, result)
}
