package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/insurcert/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CertificateRepository is the PostgreSQL-backed certificate store. The
// store is append-only: issued certificates are never updated or deleted.
type CertificateRepository struct {
	db *pgxpool.Pool
}

// NewCertificateRepository creates a new CertificateRepository.
func NewCertificateRepository(db *pgxpool.Pool) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Append inserts the customer and certificate as a single transaction and
// assigns the store keys. A collision on the unique certificate number is
// reported as domain.ErrDuplicateNumber so the caller can re-number and
// retry.
func (r *CertificateRepository) Append(ctx context.Context, cert *domain.Certificate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO customers (name, date_of_birth) VALUES ($1, $2) RETURNING id`,
		cert.Customer.Name, cert.Customer.DateOfBirth,
	).Scan(&cert.Customer.ID)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO certificates (number, creation_date, valid_from, valid_to, customer_id, insured_item, insured_sum, certificate_sum)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		cert.Number, cert.CreationDate, cert.ValidFrom, cert.ValidTo,
		cert.Customer.ID, cert.InsuredItem, cert.InsuredSum, cert.CertificateSum,
	).Scan(&cert.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateNumber
		}
		return fmt.Errorf("failed to insert certificate: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit certificate: %w", err)
	}
	return nil
}

// FindLatest returns the most recently appended certificate by descending
// store key, or nil when the store is empty.
func (r *CertificateRepository) FindLatest(ctx context.Context) (*domain.Certificate, error) {
	row := r.db.QueryRow(ctx, selectCertificates+` ORDER BY c.id DESC LIMIT 1`)
	cert, err := scanCertificate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find latest certificate: %w", err)
	}
	return cert, nil
}

// FindAll returns every certificate in issuance order.
func (r *CertificateRepository) FindAll(ctx context.Context) ([]*domain.Certificate, error) {
	rows, err := r.db.Query(ctx, selectCertificates+` ORDER BY c.id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer rows.Close()

	certs := []*domain.Certificate{}
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate row: %w", err)
		}
		certs = append(certs, cert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read certificates: %w", err)
	}
	return certs, nil
}

const selectCertificates = `
	SELECT c.id, c.number, c.creation_date, c.valid_from, c.valid_to,
	       cu.id, cu.name, cu.date_of_birth,
	       c.insured_item, c.insured_sum, c.certificate_sum
	FROM certificates c
	JOIN customers cu ON cu.id = c.customer_id`

func scanCertificate(row pgx.Row) (*domain.Certificate, error) {
	var cert domain.Certificate
	err := row.Scan(
		&cert.ID, &cert.Number, &cert.CreationDate, &cert.ValidFrom, &cert.ValidTo,
		&cert.Customer.ID, &cert.Customer.Name, &cert.Customer.DateOfBirth,
		&cert.InsuredItem, &cert.InsuredSum, &cert.CertificateSum,
	)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
