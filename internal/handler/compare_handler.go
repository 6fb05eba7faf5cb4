package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"docbench/internal/domain"
	"docbench/internal/middleware"
	"docbench/internal/service"
)

// CompareHandler handles on-demand comparisons of uploaded documents.
type CompareHandler struct {
	svc            service.ComparisonService
	maxUploadBytes int64
}

// NewCompareHandler creates a new CompareHandler.
func NewCompareHandler(svc service.ComparisonService, maxUploadBytes int64) *CompareHandler {
	return &CompareHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Compare handles POST /api/v1/compare
// Form fields: file (required); models as azure_model and google_model, or
// as model[<vendor>] (optional).
func (h *CompareHandler) Compare(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			HandleError(c, domain.ErrFileTooLarge)
			return
		}
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		HandleError(c, err)
		return
	}

	models, err := modelSelection(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	name := filepath.Base(header.Filename)
	rec, err := h.svc.CompareBytes(c.Request.Context(), name, data, models)
	if err != nil {
		HandleError(c, err)
		return
	}

	middleware.GetLogger(c).WithFields(logrus.Fields{
		"document": name,
		"size":     len(data),
	}).Info("upload compared")
	RespondOK(c, rec)
}

// modelSelection reads model overrides from the form. A <vendor>_model field
// wins over model[<vendor>] for the same vendor.
func modelSelection(c *gin.Context) (domain.ModelSelection, error) {
	models := domain.ModelSelection{}
	for key, m := range c.PostFormMap("model") {
		v, ok := domain.ParseVendor(key)
		if !ok {
			return nil, fmt.Errorf("unknown vendor %q: %w", key, domain.ErrInvalidInput)
		}
		if m != "" {
			models[v] = m
		}
	}
	for _, v := range domain.KnownVendors {
		if m := c.PostForm(string(v) + "_model"); m != "" {
			models[v] = m
		}
	}
	return models, nil
}
