package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/collegedir/collegedir/internal/models"
)

// maxQueryLen bounds free-text query and path values.
const maxQueryLen = 200

// CollegeHandler serves the public read API.
type CollegeHandler struct {
	svc CollegeService
	log *logrus.Logger
}

// NewCollegeHandler creates a CollegeHandler.
func NewCollegeHandler(svc CollegeService, log *logrus.Logger) *CollegeHandler {
	return &CollegeHandler{svc: svc, log: log}
}

// List handles GET /api/colleges.
func (h *CollegeHandler) List(c *gin.Context) {
	f, ok := h.filterFromQuery(c)
	if !ok {
		return
	}

	h.list(c, f)
}

// ByDistrict handles GET /api/colleges/district/:district.
func (h *CollegeHandler) ByDistrict(c *gin.Context) {
	f, ok := h.filterFromQuery(c)
	if !ok {
		return
	}

	f.District = c.Param("district")
	h.list(c, f)
}

// ByCategory handles GET /api/colleges/category/:category.
func (h *CollegeHandler) ByCategory(c *gin.Context) {
	f, ok := h.filterFromQuery(c)
	if !ok {
		return
	}

	f.Category = c.Param("category")
	h.list(c, f)
}

func (h *CollegeHandler) list(c *gin.Context, f models.CollegeFilter) {
	page, err := h.svc.ListColleges(c.Request.Context(), f)
	if err != nil {
		h.log.WithError(err).Error("listing colleges")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, page)
}

// filterFromQuery builds a filter from query parameters, responding 400 and
// returning false when a value is malformed. Page and limit are normalized by
// the service.
func (h *CollegeHandler) filterFromQuery(c *gin.Context) (models.CollegeFilter, bool) {
	f := models.CollegeFilter{
		District:    strings.TrimSpace(c.Query("district")),
		Category:    strings.TrimSpace(c.Query("category")),
		CollegeType: strings.TrimSpace(c.Query("college_type")),
		Search:      strings.TrimSpace(c.Query("search")),
		Page:        parsePositive(c.Query("page"), 1, 0),
		Limit:       parsePositive(c.Query("limit"), 0, 0),
	}

	for _, v := range []string{f.District, f.Category, f.CollegeType, f.Search} {
		if len(v) > maxQueryLen {
			respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "query value too long")

			return f, false
		}
	}

	var err error

	if f.Autonomous, err = parseTriState("autonomous", c.Query("autonomous")); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return f, false
	}

	if f.HostelAvailable, err = parseTriState("hostel_available", c.Query("hostel_available")); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return f, false
	}

	return f, true
}

// Get handles GET /api/colleges/:id.
func (h *CollegeHandler) Get(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	college, err := h.svc.GetCollege(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrCollegeNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "college not found")

			return
		}

		h.log.WithError(err).WithField("college_id", id).Error("getting college")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, college)
}

// Facet returns a handler for GET /api/districts and friends.
func (h *CollegeHandler) Facet(facet models.Facet) gin.HandlerFunc {
	return func(c *gin.Context) {
		values, err := h.svc.ListFacetValues(c.Request.Context(), facet)
		if err != nil {
			h.log.WithError(err).WithField("facet", facet).Error("listing facet values")
			respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

			return
		}

		if values == nil {
			values = []string{}
		}

		c.JSON(http.StatusOK, values)
	}
}

// Cutoffs handles GET /api/cutoffs/:college_id.
func (h *CollegeHandler) Cutoffs(c *gin.Context) {
	id, err := parseID(c.Param("college_id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())

		return
	}

	cutoffs, err := h.svc.ListCutoffs(c.Request.Context(), id)
	if err != nil {
		h.log.WithError(err).WithField("college_id", id).Error("listing cutoffs")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, cutoffs)
}

// Admission handles GET /api/admission-requirements/:category.
func (h *CollegeHandler) Admission(c *gin.Context) {
	category := strings.TrimSpace(c.Param("category"))
	if category == "" || len(category) > maxQueryLen {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid category")

		return
	}

	req, err := h.svc.GetAdmissionRequirement(c.Request.Context(), category)
	if err != nil {
		if errors.Is(err, models.ErrAdmissionNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "admission requirement not found")

			return
		}

		h.log.WithError(err).WithField("category", category).Error("getting admission requirement")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal server error")

		return
	}

	c.JSON(http.StatusOK, req)
}
