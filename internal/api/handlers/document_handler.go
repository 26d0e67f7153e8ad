package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"freight-dispatch-api-server/internal/api/middleware"
	"freight-dispatch-api-server/internal/models"
	"freight-dispatch-api-server/internal/state"
	"freight-dispatch-api-server/internal/tripstate"
)

// FileUploader stores a document and returns its public URL.
type FileUploader interface {
	UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error)
}

type DocumentHandler struct {
	Service  *tripstate.Service
	Uploader FileUploader
}

// UploadDocument stores a cargo paperwork scan or proof-of-load photo on S3.
// The upload rides along with a cargo transition (the "to" form field, e.g.
// docs_prepared or docs_validated) so the document pointer and the state
// change land atomically on the trip.
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	tripID := c.Param("id")

	to := c.PostForm("to")
	if to == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A target cargo state (to) is required"})
		return
	}

	// Validate against the current cargo state before touching S3. A doomed
	// transition must not leave an orphaned object in the bucket.
	_, cargo, err := h.Service.CurrentState(c.Request.Context(), tripID)
	if err != nil {
		writeTransitionError(c, err)
		return
	}
	if d := state.ValidateCargo(cargo, state.CargoState(to), middleware.ActingRole(c)); !d.Allowed {
		writeTransitionError(c, &state.RejectionError{Machine: state.MachineCargo, Requested: to, Decision: d})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A file form field is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	docID := uuid.New().String()
	objectKey := fmt.Sprintf("trips/%s/documents/%s%s", tripID, docID, filepath.Ext(fileHeader.Filename))
	url, err := h.Uploader.UploadFile(c.Request.Context(), file, objectKey, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload document"})
		return
	}

	pointer := models.MediaPointer{
		ID:       docID,
		URL:      url,
		FileName: fileHeader.Filename,
		FileType: fileHeader.Header.Get("Content-Type"),
	}

	result, err := h.Service.RequestCargoTransition(
		c.Request.Context(),
		tripID,
		state.CargoState(to),
		middleware.ActingRole(c),
		middleware.ActorID(c),
		c.PostForm("note"),
		&models.CargoDetails{Documents: []models.MediaPointer{pointer}},
	)
	if err != nil {
		writeTransitionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"document":   pointer,
		"transition": result,
		"uploadedAt": time.Now(),
	})
}
