package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/ingest"
	"github.com/collegedir/collegedir/internal/middleware"
	"github.com/collegedir/collegedir/internal/models"
)

// uploadFormField is the multipart field carrying an uploaded file.
const uploadFormField = "file"

var errUploadTooLarge = errors.New("upload too large")

// AdminHandler serves the authenticated admin surface.
type AdminHandler struct {
	ingest    IngestService
	stats     StatsService
	log       *logrus.Logger
	maxUpload int64
}

// NewAdminHandler creates an AdminHandler. maxUpload bounds the bytes read
// from a single upload.
func NewAdminHandler(uploads IngestService, stats StatsService, log *logrus.Logger, maxUpload int64) *AdminHandler {
	return &AdminHandler{ingest: uploads, stats: stats, log: log, maxUpload: maxUpload}
}

// UploadCSV handles POST /api/admin/upload/csv. The file is taken from the
// multipart field "file" when present, otherwise from the raw body.
func (h *AdminHandler) UploadCSV(c *gin.Context) {
	h.upload(c, models.SourceCSV)
}

// UploadJSON handles POST /api/admin/upload/json.
func (h *AdminHandler) UploadJSON(c *gin.Context) {
	h.upload(c, models.SourceJSON)
}

func (h *AdminHandler) upload(c *gin.Context, source models.IngestSource) {
	data, err := h.readUpload(c)
	if err != nil {
		if errors.Is(err, errUploadTooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, "payload_too_large",
				fmt.Sprintf("upload exceeds %d bytes", h.maxUpload))

			return
		}

		respondError(c, http.StatusBadRequest, ErrCodeInvalidUpload, err.Error())

		return
	}

	actor := c.GetString(middleware.AdminKey)
	requestID := c.GetString(middleware.RequestIDKey)

	report, err := h.ingest.Upload(c.Request.Context(), source, data, actor, requestID)
	if err != nil {
		if models.IsEnvelopeError(err) {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidUpload, err.Error())

			return
		}

		h.log.WithError(err).WithField("source", source).Error("processing upload")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	h.log.WithFields(logrus.Fields{
		"action":   "upload",
		"source":   source,
		"admin":    actor,
		"inserted": report.Inserted,
		"updated":  report.Updated,
		"failed":   len(report.Errors),
	}).Info("audit")

	c.JSON(http.StatusOK, report)
}

// readUpload returns the uploaded bytes from either a multipart form file or
// the request body.
func (h *AdminHandler) readUpload(c *gin.Context) ([]byte, error) {
	var r io.Reader = c.Request.Body

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		fh, err := c.FormFile(uploadFormField)
		if err != nil {
			if isMaxBytes(err) {
				return nil, errUploadTooLarge
			}

			return nil, fmt.Errorf("multipart upload requires a %q field", uploadFormField)
		}

		if h.maxUpload > 0 && fh.Size > h.maxUpload {
			return nil, errUploadTooLarge
		}

		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening uploaded file: %w", err)
		}
		defer f.Close()

		r = f
	}

	if h.maxUpload > 0 {
		r = io.LimitReader(r, h.maxUpload+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		if isMaxBytes(err) {
			return nil, errUploadTooLarge
		}

		return nil, fmt.Errorf("reading upload: %w", err)
	}

	if h.maxUpload > 0 && int64(len(data)) > h.maxUpload {
		return nil, errUploadTooLarge
	}

	return data, nil
}

func isMaxBytes(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("computing stats")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, stats)
}

// Template handles GET /api/admin/template.
func (h *AdminHandler) Template(c *gin.Context) {
	data, err := h.ingest.Template()
	if err != nil {
		h.log.WithError(err).Error("rendering template")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ingest.TemplateFilename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

// Runs handles GET /api/admin/runs.
func (h *AdminHandler) Runs(c *gin.Context) {
	limit := parsePositive(c.Query("limit"), 50, maxRunsLimit)
	offset := parseOffset(c.Query("offset"))

	runs, hasMore, err := h.ingest.ListRuns(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.WithError(err).Error("listing ingest runs")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	if runs == nil {
		runs = []models.IngestRun{}
	}

	c.JSON(http.StatusOK, gin.H{"runs": runs, "has_more": hasMore})
}

// Test handles GET /api/admin/test.
func (h *AdminHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "admin API is working",
		"admin":   c.GetString(middleware.AdminKey),
	})
}
