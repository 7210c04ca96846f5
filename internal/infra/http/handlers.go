package http

import (
	"encoding/base64"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"provd/internal/domain"

	"github.com/gin-gonic/gin"
)

type manifestRequest struct {
	FileData           string                     `json:"fileData"`
	ContentCredentials *domain.ContentCredentials `json:"contentCredentials"`
}

type validateFileRequest struct {
	FileData string `json:"fileData"`
	Format   string `json:"format"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type manifestResponse struct {
	ManifestID  string `json:"manifestId"`
	SignedAsset string `json:"signedAsset"`
}

type validationResponse struct {
	IsValid bool `json:"isValid"`
	Message any  `json:"message"`
}

type recordResponse struct {
	ManifestID         string                    `json:"manifestId"`
	ContentCredentials domain.ContentCredentials `json:"contentCredentials"`
	Manifest           domain.ManifestDefinition `json:"manifest"`
	FilePath           string                    `json:"filePath"`
	Signed             bool                      `json:"signed"`
	CreatedAt          time.Time                 `json:"createdAt"`
	Validation         validationResponse        `json:"validation"`
}

func (s *Server) handleCreate(c *gin.Context) {
	req, ok := bindManifestRequest(c)
	if !ok {
		return
	}
	result, err := s.svc.Create(c.Request.Context(), req.FileData, *req.ContentCredentials)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, manifestResponse{
		ManifestID:  result.ManifestID,
		SignedAsset: base64.StdEncoding.EncodeToString(result.SignedAsset),
	})
}

func (s *Server) handleUpdate(c *gin.Context) {
	req, ok := bindManifestRequest(c)
	if !ok {
		return
	}
	result, err := s.svc.Update(c.Request.Context(), req.FileData, *req.ContentCredentials)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifestResponse{
		ManifestID:  result.ManifestID,
		SignedAsset: base64.StdEncoding.EncodeToString(result.SignedAsset),
	})
}

func (s *Server) handleValidateByID(c *gin.Context) {
	result, err := s.svc.ValidateByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, recordResponse{
		ManifestID:         result.Record.ManifestID,
		ContentCredentials: result.Record.Credentials,
		Manifest:           result.Record.Definition,
		FilePath:           result.Record.BlobPath,
		Signed:             result.Record.Signed,
		CreatedAt:          result.Record.CreatedAt,
		Validation:         buildValidationResponse(result.Report),
	})
}

func (s *Server) handleValidateByFile(c *gin.Context) {
	var req validateFileRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.FileData == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "fileData is required")
		return
	}
	if req.Format == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "format is required")
		return
	}
	report, err := s.svc.ValidateByFile(c.Request.Context(), req.FileData, req.Format)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildValidationResponse(*report))
}

func bindManifestRequest(c *gin.Context) (*manifestRequest, bool) {
	var req manifestRequest
	if !bindJSON(c, &req) {
		return nil, false
	}
	if req.FileData == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "fileData is required")
		return nil, false
	}
	if req.ContentCredentials == nil {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "contentCredentials is required")
		return nil, false
	}
	if req.ContentCredentials.Format == "" {
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "format is required")
		return nil, false
	}
	return &req, true
}

func bindJSON(c *gin.Context, out any) bool {
	err := c.ShouldBindJSON(out)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		writeErrorCode(c, http.StatusBadRequest, "BODY_TOO_LARGE", "request body exceeds size limit")
	case errors.Is(err, io.EOF):
		writeErrorCode(c, http.StatusBadRequest, "INVALID_INPUT", "Request body is missing")
	default:
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "INVALID_JSON",
			Message: "invalid JSON format",
			Details: "Please check your request body for syntax errors",
		})
	}
	return false
}

func buildValidationResponse(report domain.ValidationReport) validationResponse {
	if report.NoClaim {
		return validationResponse{IsValid: false, Message: report.Message}
	}
	if report.Valid {
		return validationResponse{IsValid: true, Message: report.ActiveManifest}
	}
	return validationResponse{IsValid: false, Message: report.Message}
}

func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_INPUT"
	case errors.Is(err, domain.ErrPolicyDenied):
		status, code = http.StatusUnprocessableEntity, "POLICY_DENIED"
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateRecord):
		status, code = http.StatusConflict, "DUPLICATE_MANIFEST"
	case errors.Is(err, domain.ErrSigning):
		status, code = http.StatusInternalServerError, "SIGNING_FAILED"
	case errors.Is(err, domain.ErrMalformedSignerOutput):
		status, code = http.StatusInternalServerError, "SIGNER_OUTPUT_MALFORMED"
	case errors.Is(err, domain.ErrValidationFailed):
		status, code = http.StatusInternalServerError, "VALIDATION_FAILED"
	}
	if status >= http.StatusInternalServerError {
		// Internal detail stays in the server log; the response carries
		// only the stable code.
		log.Printf("request failed: %v", err)
		writeErrorCode(c, status, code, "internal error")
		return
	}
	writeErrorCode(c, status, code, err.Error())
}

func writeErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Code: code, Message: message})
}
