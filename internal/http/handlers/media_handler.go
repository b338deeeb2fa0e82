package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/needanevo/Handyman-app-sub000/internal/http/handlers/common"
	"github.com/needanevo/Handyman-app-sub000/internal/models"
	"github.com/needanevo/Handyman-app-sub000/internal/pkg/apperror"
	"github.com/needanevo/Handyman-app-sub000/internal/repository"
	"github.com/needanevo/Handyman-app-sub000/internal/storage"
)

// allowedUploadTypes lists the MIME types accepted for job photos and
// documents. The type comes from magic-byte sniffing, never from the
// client-supplied filename or Content-Type.
var allowedUploadTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"image/webp":      {},
	"image/heif":      {},
	"application/pdf": {},
}

// MediaHandler serves photo and document uploads attached to jobs.
type MediaHandler struct {
	media   *repository.MediaRepository
	storage *storage.PhotoStorage
}

func NewMediaHandler(media *repository.MediaRepository, st *storage.PhotoStorage) *MediaHandler {
	return &MediaHandler{media: media, storage: st}
}

func (h *MediaHandler) Upload(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	var jobID *uuid.UUID
	if raw := c.PostForm("job_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "job_id must be a valid UUID"})
			return
		}
		jobID = &parsed
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeInternal, "failed to open uploaded file"))
		return
	}
	defer file.Close()

	// 261 bytes is enough for every signature filetype knows.
	head := make([]byte, 261)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeInternal, "failed to read uploaded file"))
		return
	}
	head = head[:n]

	kind, _ := filetype.Match(head)
	if kind == filetype.Unknown {
		_ = c.Error(apperror.New(apperror.ErrCodeValidation, "could not determine file type"))
		return
	}
	if _, ok := allowedUploadTypes[kind.MIME.Value]; !ok {
		_ = c.Error(apperror.Newf(apperror.ErrCodeValidation, "file type %s is not allowed", kind.MIME.Value))
		return
	}

	reader := io.MultiReader(bytes.NewReader(head), file)
	path, size, err := h.storage.Save(c.Request.Context(), userID, fileHeader.Filename, reader)
	if err != nil {
		_ = c.Error(err)
		return
	}

	mediaFile := &models.MediaFile{
		ID:       uuid.New(),
		UserID:   userID,
		JobID:    jobID,
		FilePath: path,
		FileType: kind.MIME.Value,
		FileSize: size,
	}
	if err := h.media.Create(c.Request.Context(), mediaFile); err != nil {
		// Storage succeeded but the record did not; drop the orphan file.
		_ = h.storage.Delete(c.Request.Context(), path)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, mediaFile)
}

func (h *MediaHandler) Download(c *gin.Context) {
	mediaID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mediaFile, err := h.media.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	reader, err := h.storage.Open(c.Request.Context(), mediaFile.FilePath)
	if err != nil {
		_ = c.Error(apperror.Wrap(err, apperror.ErrCodeNotFound, "file is missing from storage"))
		return
	}
	defer reader.Close()

	c.Header("Content-Type", mediaFile.FileType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func (h *MediaHandler) ListForJob(c *gin.Context) {
	jobID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	files, err := h.media.ListByJob(c.Request.Context(), jobID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files, "total": len(files)})
}

func (h *MediaHandler) Delete(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	mediaID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mediaFile, err := h.media.GetByID(c.Request.Context(), mediaID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if mediaFile.UserID != userID {
		_ = c.Error(apperror.ErrNotOwner)
		return
	}

	if err := h.media.Delete(c.Request.Context(), mediaID); err != nil {
		_ = c.Error(err)
		return
	}
	_ = h.storage.Delete(c.Request.Context(), mediaFile.FilePath)

	c.JSON(http.StatusOK, gin.H{"message": "file deleted"})
}
