package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/insurcert/backend/internal/domain"
	"github.com/insurcert/backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestService() (*CertificateService, *repository.MemoryStore) {
	store := repository.NewMemoryStore()
	svc := NewCertificateService(store)
	svc.now = func() time.Time { return testNow }
	return svc, store
}

func validRequest() *domain.CreateCertificateRequest {
	return &domain.CreateCertificateRequest{
		CustomerName:        "John Doe",
		CustomerDateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		InsuredItem:         "iPhone 15",
		InsuredSum:          75,
	}
}

func TestCreateCertificateSuccess(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.CreateCertificate(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	cert := result.Certificate
	assert.Equal(t, "00001", cert.Number)
	assert.Equal(t, 15.0, cert.CertificateSum)
	assert.Equal(t, "John Doe", cert.CustomerName)
	assert.Equal(t, "iPhone 15", cert.InsuredItem)
	assert.Equal(t, 75.0, cert.InsuredSum)
	assert.Equal(t, testNow, cert.CreationDate)
	assert.Equal(t, testNow, cert.ValidFrom)
	assert.Empty(t, result.ErrorMessage)
}

func TestCreateCertificateValidToIsMidnightOneYearOut(t *testing.T) {
	svc, _ := newTestService()

	result, err := svc.CreateCertificate(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())

	validTo := result.Certificate.ValidTo
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), validTo)
	assert.Zero(t, validTo.Hour())
	assert.Zero(t, validTo.Minute())
	assert.Zero(t, validTo.Second())
	assert.Zero(t, validTo.Nanosecond())
}

func TestCreateCertificateFeeTiers(t *testing.T) {
	tests := []struct {
		insuredSum float64
		fee        float64
	}{
		{20.00, 8},
		{35.00, 8},
		{50.00, 8},
		{50.01, 15},
		{75.00, 15},
		{100.00, 15},
		{100.01, 25},
		{150.00, 25},
		{200.00, 25},
	}

	for _, tt := range tests {
		svc, _ := newTestService()
		req := validRequest()
		req.InsuredSum = tt.insuredSum

		result, err := svc.CreateCertificate(context.Background(), req)
		require.NoError(t, err)
		require.True(t, result.IsSuccess(), "insuredSum %v should be accepted", tt.insuredSum)
		assert.Equal(t, tt.fee, result.Certificate.CertificateSum, "insuredSum %v", tt.insuredSum)
	}
}

func TestCreateCertificateInsuredSumOutOfRange(t *testing.T) {
	for _, sum := range []float64{10.00, 19.99, 200.01, 500.00} {
		svc, store := newTestService()
		req := validRequest()
		req.InsuredSum = sum

		result, err := svc.CreateCertificate(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.IsSuccess())
		assert.Equal(t, "Insured item price must be between 20.00 and 200.00.", result.ErrorMessage)
		assertStoreEmpty(t, store)
	}
}

func TestCreateCertificateBlankCustomerName(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		svc, store := newTestService()
		req := validRequest()
		req.CustomerName = name

		result, err := svc.CreateCertificate(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.IsSuccess())
		assert.Equal(t, "Customer name is required.", result.ErrorMessage)
		assertStoreEmpty(t, store)
	}
}

func TestCreateCertificateBlankInsuredItem(t *testing.T) {
	for _, item := range []string{"", "  "} {
		svc, store := newTestService()
		req := validRequest()
		req.InsuredItem = item

		result, err := svc.CreateCertificate(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, result.IsSuccess())
		assert.Equal(t, "Insured item is required.", result.ErrorMessage)
		assertStoreEmpty(t, store)
	}
}

func TestCreateCertificateAgeBoundary(t *testing.T) {
	// Born exactly 18 years before "now": accepted.
	svc, _ := newTestService()
	req := validRequest()
	req.CustomerDateOfBirth = time.Date(2006, 6, 15, 0, 0, 0, 0, time.UTC)

	result, err := svc.CreateCertificate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())

	// One day short of 18: rejected.
	svc, store := newTestService()
	req = validRequest()
	req.CustomerDateOfBirth = time.Date(2006, 6, 16, 0, 0, 0, 0, time.UTC)

	result, err = svc.CreateCertificate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsSuccess())
	assert.Equal(t, "Customer must be at least 18 years old.", result.ErrorMessage)
	assertStoreEmpty(t, store)
}

func TestCreateCertificateValidationOrder(t *testing.T) {
	// Blank name wins over blank item and underage customer.
	svc, _ := newTestService()
	req := &domain.CreateCertificateRequest{
		CustomerName:        "  ",
		CustomerDateOfBirth: testNow.AddDate(-10, 0, 0),
		InsuredItem:         " ",
		InsuredSum:          500,
	}

	result, err := svc.CreateCertificate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Customer name is required.", result.ErrorMessage)
}

func TestCreateCertificateMissingDateOfBirth(t *testing.T) {
	svc, store := newTestService()
	req := validRequest()
	req.CustomerDateOfBirth = time.Time{}

	result, err := svc.CreateCertificate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, result.IsSuccess())
	assert.Equal(t, "Customer date of birth is required.", result.ErrorMessage)
	assertStoreEmpty(t, store)
}

func TestSequentialNumbering(t *testing.T) {
	svc, _ := newTestService()

	for i, want := range []string{"00001", "00002", "00003"} {
		result, err := svc.CreateCertificate(context.Background(), validRequest())
		require.NoError(t, err)
		require.True(t, result.IsSuccess(), "creation %d", i+1)
		assert.Equal(t, want, result.Certificate.Number)
	}
}

func TestNumberingRestartsOnUnparseableNumber(t *testing.T) {
	svc, store := newTestService()

	err := store.Append(context.Background(), &domain.Certificate{
		Number:       "LEGACY-7",
		CreationDate: testNow,
		ValidFrom:    testNow,
		ValidTo:      testNow.AddDate(1, 0, 0),
		Customer:     domain.Customer{Name: "Old Customer", DateOfBirth: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)},
		InsuredItem:  "Legacy Item",
		InsuredSum:   50,
	})
	require.NoError(t, err)

	result, err := svc.CreateCertificate(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, "00001", result.Certificate.Number)
}

func TestNumberingWidensPastFiveDigits(t *testing.T) {
	svc, store := newTestService()

	err := store.Append(context.Background(), &domain.Certificate{
		Number:       "99999",
		CreationDate: testNow,
		ValidFrom:    testNow,
		ValidTo:      testNow.AddDate(1, 0, 0),
		Customer:     domain.Customer{Name: "Customer", DateOfBirth: time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)},
		InsuredItem:  "Item",
		InsuredSum:   50,
	})
	require.NoError(t, err)

	result, err := svc.CreateCertificate(context.Background(), validRequest())
	require.NoError(t, err)
	require.True(t, result.IsSuccess())
	assert.Equal(t, "100000", result.Certificate.Number)
}

// flakyStore loses the first n appends to a simulated concurrent writer.
type flakyStore struct {
	*repository.MemoryStore
	duplicates int
	appends    int
}

func (s *flakyStore) Append(ctx context.Context, cert *domain.Certificate) error {
	s.appends++
	if s.duplicates > 0 {
		s.duplicates--
		return domain.ErrDuplicateNumber
	}
	return s.MemoryStore.Append(ctx, cert)
}

func TestCreateCertificateRetriesOnDuplicateNumber(t *testing.T) {
	store := &flakyStore{MemoryStore: repository.NewMemoryStore(), duplicates: 1}
	svc := NewCertificateService(store)
	svc.now = func() time.Time { return testNow }

	result, err := svc.CreateCertificate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, result.IsSuccess())
	assert.Equal(t, 2, store.appends)
}

func TestCreateCertificateGivesUpAfterRetryBudget(t *testing.T) {
	store := &flakyStore{MemoryStore: repository.NewMemoryStore(), duplicates: maxNumberRetries + 1}
	svc := NewCertificateService(store)
	svc.now = func() time.Time { return testNow }

	_, err := svc.CreateCertificate(context.Background(), validRequest())
	require.Error(t, err)
}

// failingStore rejects every append with a generic store failure.
type failingStore struct {
	*repository.MemoryStore
}

func (s *failingStore) Append(ctx context.Context, cert *domain.Certificate) error {
	return errors.New("connection refused")
}

func TestCreateCertificateStoreFailurePropagates(t *testing.T) {
	svc := NewCertificateService(&failingStore{MemoryStore: repository.NewMemoryStore()})
	svc.now = func() time.Time { return testNow }

	result, err := svc.CreateCertificate(context.Background(), validRequest())
	require.Error(t, err)
	assert.False(t, result.IsSuccess())

	appErr, ok := domain.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 500, appErr.Code)
}

func TestListCertificates(t *testing.T) {
	svc, _ := newTestService()

	for i := 0; i < 3; i++ {
		_, err := svc.CreateCertificate(context.Background(), validRequest())
		require.NoError(t, err)
	}

	models, err := svc.ListCertificates(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 3)
	assert.Equal(t, "00001", models[0].Number)
	assert.Equal(t, "00003", models[2].Number)
}

func TestSeedDemoData(t *testing.T) {
	svc, store := newTestService()

	require.NoError(t, svc.SeedDemoData(context.Background()))

	latest, err := store.FindLatest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "00001", latest.Number)
	assert.Equal(t, "Apple Iphone 14 PRO", latest.InsuredItem)

	// Idempotent: a second seed on a non-empty store is a no-op.
	require.NoError(t, svc.SeedDemoData(context.Background()))
	all, err := store.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func assertStoreEmpty(t *testing.T, store *repository.MemoryStore) {
	t.Helper()
	latest, err := store.FindLatest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}
