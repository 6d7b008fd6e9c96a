package handler

import (
	"net/http"

	"github.com/insurcert/backend/internal/domain"
	"github.com/insurcert/backend/internal/service"
)

// CertificatesHandler handles certificate issuance endpoints.
type CertificatesHandler struct {
	svc *service.CertificateService
}

// NewCertificatesHandler creates a new CertificatesHandler.
func NewCertificatesHandler(svc *service.CertificateService) *CertificatesHandler {
	return &CertificatesHandler{svc: svc}
}

// List handles GET /api/certificates.
func (h *CertificatesHandler) List(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.ListCertificates(r.Context())
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, models)
}

// Create handles POST /api/certificates. Business rejections return 400
// with the rule engine's message verbatim; store failures return 500.
func (h *CertificatesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCertificateRequest
	if err := DecodeJSON(r, &req); err != nil {
		Error(w, err)
		return
	}

	result, err := h.svc.CreateCertificate(r.Context(), &req)
	if err != nil {
		Error(w, err)
		return
	}

	if !result.IsSuccess() {
		JSON(w, http.StatusBadRequest, map[string]string{"error": result.ErrorMessage})
		return
	}

	JSON(w, http.StatusOK, result.Certificate)
}
