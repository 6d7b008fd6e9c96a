package domain

import "time"

// Customer is the insured person. A customer record is created alongside
// its certificate and is never shared between certificates.
type Customer struct {
	ID          int64     `json:"-"`
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"dateOfBirth"`
}

// Certificate is an issued insurance record. Certificates are immutable
// historical records: created once at issuance, never updated or deleted.
type Certificate struct {
	ID             int64     `json:"-"`
	Number         string    `json:"number"`
	CreationDate   time.Time `json:"creationDate"`
	ValidFrom      time.Time `json:"validFrom"`
	ValidTo        time.Time `json:"validTo"`
	Customer       Customer  `json:"customer"`
	InsuredItem    string    `json:"insuredItem"`
	InsuredSum     float64   `json:"insuredSum"`
	CertificateSum float64   `json:"certificateSum"`
}

// CreateCertificateRequest is the input for issuing a certificate.
type CreateCertificateRequest struct {
	CustomerName        string    `json:"customerName" validate:"required"`
	CustomerDateOfBirth time.Time `json:"customerDateOfBirth" validate:"required"`
	InsuredItem         string    `json:"insuredItem" validate:"required"`
	InsuredSum          float64   `json:"insuredSum" validate:"required"`
}

// CertificateModel is the projected read model returned to callers. It
// never exposes store surrogate keys.
type CertificateModel struct {
	Number              string    `json:"number"`
	CreationDate        time.Time `json:"creationDate"`
	ValidFrom           time.Time `json:"validFrom"`
	ValidTo             time.Time `json:"validTo"`
	CustomerName        string    `json:"customerName"`
	CustomerDateOfBirth time.Time `json:"customerDateOfBirth"`
	InsuredItem         string    `json:"insuredItem"`
	InsuredSum          float64   `json:"insuredSum"`
	CertificateSum      float64   `json:"certificateSum"`
}

// Projection maps a stored certificate onto its read model.
func (c *Certificate) Projection() CertificateModel {
	return CertificateModel{
		Number:              c.Number,
		CreationDate:        c.CreationDate,
		ValidFrom:           c.ValidFrom,
		ValidTo:             c.ValidTo,
		CustomerName:        c.Customer.Name,
		CustomerDateOfBirth: c.Customer.DateOfBirth,
		InsuredItem:         c.InsuredItem,
		InsuredSum:          c.InsuredSum,
		CertificateSum:      c.CertificateSum,
	}
}

// CertificateCreationResult is a tagged outcome: either a successful
// issuance carrying the projected certificate, or a failure carrying a
// human-readable message. Never both.
type CertificateCreationResult struct {
	Certificate  *CertificateModel `json:"certificate,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// CreationSuccess wraps an issued certificate projection.
func CreationSuccess(model CertificateModel) CertificateCreationResult {
	return CertificateCreationResult{Certificate: &model}
}

// CreationFailure wraps a business-rule rejection message.
func CreationFailure(msg string) CertificateCreationResult {
	return CertificateCreationResult{ErrorMessage: msg}
}

// IsSuccess reports whether the result carries a certificate.
func (r CertificateCreationResult) IsSuccess() bool {
	return r.Certificate != nil
}
