package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/insurcert/backend/internal/domain"
)

const (
	minimumAge = 18

	msgCustomerNameRequired = "Customer name is required."
	msgInsuredItemRequired  = "Insured item is required."
	msgCustomerUnderage     = "Customer must be at least 18 years old."
	msgInsuredSumOutOfRange = "Insured item price must be between 20.00 and 200.00."
)

// maxNumberRetries bounds how often a creation re-reads the latest number
// after losing a duplicate-number race to a concurrent writer.
const maxNumberRetries = 3

// CertificateStore is the minimal capability the rule engine needs from a
// certificate store: append with key assignment, latest-by-key lookup,
// and a full scan for the read endpoint.
type CertificateStore interface {
	Append(ctx context.Context, cert *domain.Certificate) error
	FindLatest(ctx context.Context) (*domain.Certificate, error)
	FindAll(ctx context.Context) ([]*domain.Certificate, error)
}

// CertificateService implements the certificate issuance rules: request
// validation, fee calculation, sequential numbering, and persistence.
type CertificateService struct {
	store    CertificateStore
	validate *validator.Validate
	now      func() time.Time

	// Serializes number assignment within this process. Cross-process
	// collisions are caught by the store's unique number constraint and
	// retried.
	numberMu sync.Mutex
}

// NewCertificateService creates a new CertificateService.
func NewCertificateService(store CertificateStore) *CertificateService {
	return &CertificateService{
		store:    store,
		validate: validator.New(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateCertificate validates the request, computes the certificate fee,
// assigns the next sequential number, and persists the certificate.
// Business rejections come back as a Failure result with a user-facing
// message; store failures come back as an error and leave no partial
// state behind.
func (s *CertificateService) CreateCertificate(ctx context.Context, req *domain.CreateCertificateRequest) (domain.CertificateCreationResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return domain.CreationFailure(requiredFieldMessage(err)), nil
	}

	if msg := s.validateRequest(req); msg != "" {
		return domain.CreationFailure(msg), nil
	}

	certificateSum, ok := calculateCertificateSum(req.InsuredSum)
	if !ok {
		return domain.CreationFailure(msgInsuredSumOutOfRange), nil
	}

	creationDate := s.now()
	customer := domain.Customer{
		Name:        req.CustomerName,
		DateOfBirth: req.CustomerDateOfBirth,
	}

	cert, err := s.issue(ctx, func(number string) *domain.Certificate {
		return &domain.Certificate{
			Number:         number,
			CreationDate:   creationDate,
			ValidFrom:      creationDate,
			ValidTo:        truncateToDay(creationDate.AddDate(1, 0, 0)),
			Customer:       customer,
			InsuredItem:    req.InsuredItem,
			InsuredSum:     req.InsuredSum,
			CertificateSum: certificateSum,
		}
	})
	if err != nil {
		return domain.CertificateCreationResult{}, err
	}

	return domain.CreationSuccess(cert.Projection()), nil
}

// ListCertificates returns the projection of every issued certificate in
// issuance order.
func (s *CertificateService) ListCertificates(ctx context.Context) ([]domain.CertificateModel, error) {
	certs, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, domain.ErrInternal("failed to list certificates", err)
	}

	models := make([]domain.CertificateModel, 0, len(certs))
	for _, cert := range certs {
		models = append(models, cert.Projection())
	}
	return models, nil
}

// SeedDemoData issues a fixed demo certificate when the store is empty so
// a fresh deployment has something to show.
func (s *CertificateService) SeedDemoData(ctx context.Context) error {
	latest, err := s.store.FindLatest(ctx)
	if err != nil {
		return fmt.Errorf("failed to check for existing certificates: %w", err)
	}
	if latest != nil {
		return nil
	}

	creationDate := s.now()
	return s.store.Append(ctx, &domain.Certificate{
		Number:         "00001",
		CreationDate:   creationDate,
		ValidFrom:      creationDate,
		ValidTo:        truncateToDay(creationDate.AddDate(1, 0, 0)),
		Customer: domain.Customer{
			Name:        "Customer 1",
			DateOfBirth: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		InsuredItem:    "Apple Iphone 14 PRO",
		InsuredSum:     75,
		CertificateSum: 15,
	})
}

// issue assigns the next sequential number and appends the certificate
// built by mk. Number read and record write run under the service mutex;
// a duplicate-number conflict from a concurrent writer outside this
// process triggers a bounded re-read and retry.
func (s *CertificateService) issue(ctx context.Context, mk func(number string) *domain.Certificate) (*domain.Certificate, error) {
	s.numberMu.Lock()
	defer s.numberMu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= maxNumberRetries; attempt++ {
		number, err := s.nextCertificateNumber(ctx)
		if err != nil {
			return nil, err
		}

		cert := mk(number)
		err = s.store.Append(ctx, cert)
		if err == nil {
			return cert, nil
		}
		if !errors.Is(err, domain.ErrDuplicateNumber) {
			return nil, domain.ErrInternal("failed to persist certificate", err)
		}
		lastErr = err
	}

	return nil, domain.ErrInternal("failed to assign certificate number", lastErr)
}

// nextCertificateNumber reads the most recently issued certificate and
// returns its number incremented by one, zero-padded to five digits.
// Numbering restarts at 1 on an empty store or an unparseable stored
// number; numbers past 99999 widen beyond five digits rather than wrap.
func (s *CertificateService) nextCertificateNumber(ctx context.Context) (string, error) {
	latest, err := s.store.FindLatest(ctx)
	if err != nil {
		return "", domain.ErrInternal("failed to read latest certificate", err)
	}

	nextNumber := 1
	if latest != nil {
		if lastNumber, err := strconv.Atoi(latest.Number); err == nil {
			nextNumber = lastNumber + 1
		}
	}

	return fmt.Sprintf("%05d", nextNumber), nil
}

// validateRequest applies the business validation rules in order and
// returns the first failure message, or "" when the request is valid.
func (s *CertificateService) validateRequest(req *domain.CreateCertificateRequest) string {
	if strings.TrimSpace(req.CustomerName) == "" {
		return msgCustomerNameRequired
	}

	if strings.TrimSpace(req.InsuredItem) == "" {
		return msgInsuredItemRequired
	}

	if s.calculateAge(req.CustomerDateOfBirth) < minimumAge {
		return msgCustomerUnderage
	}

	return ""
}

// calculateAge returns the whole years elapsed between the date of birth
// and the current UTC date.
func (s *CertificateService) calculateAge(dateOfBirth time.Time) int {
	today := truncateToDay(s.now())
	birth := truncateToDay(dateOfBirth)

	age := today.Year() - birth.Year()
	if birth.AddDate(age, 0, 0).After(today) {
		age--
	}
	return age
}

// calculateCertificateSum maps the insured value onto its fee tier. The
// first bracket is closed on both ends, the rest are half-open at the
// bottom: [20,50] -> 8, (50,100] -> 15, (100,200] -> 25. Values outside
// [20,200] are rejected.
func calculateCertificateSum(insuredSum float64) (float64, bool) {
	switch {
	case insuredSum >= 20.00 && insuredSum <= 50.00:
		return 8, true
	case insuredSum > 50.00 && insuredSum <= 100.00:
		return 15, true
	case insuredSum > 100.00 && insuredSum <= 200.00:
		return 25, true
	default:
		return 0, false
	}
}

// requiredFieldMessage maps a validator error for a missing field onto
// the matching user-facing message.
func requiredFieldMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid request."
	}

	switch errs[0].Field() {
	case "CustomerName":
		return msgCustomerNameRequired
	case "InsuredItem":
		return msgInsuredItemRequired
	case "CustomerDateOfBirth":
		return "Customer date of birth is required."
	case "InsuredSum":
		return msgInsuredSumOutOfRange
	default:
		return "Invalid request."
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
