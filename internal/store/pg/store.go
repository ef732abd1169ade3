// Package pg implements ContactStore on PostgreSQL via pgx.
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/idlink/internal/domain/repository"
	"github.com/dropDatabas3/idlink/internal/identity"
	"github.com/dropDatabas3/idlink/internal/metrics"
	"github.com/dropDatabas3/idlink/internal/observability/logger"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool against the given DSN and pings it.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return pool, nil
}

const contactColumns = `
	id, subject_guid, link_account_token, email,
	first_name, last_name, full_name, birth_date,
	created_at, updated_at`

func (s *Store) FindByID(ctx context.Context, id string) (*repository.Contact, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT`+contactColumns+` FROM contact WHERE id = $1`, id)
	contact, err := scanContact(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadAddresses(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *Store) FindBySubject(ctx context.Context, subject uuid.UUID) ([]*repository.Contact, error) {
	return s.findContacts(ctx,
		`SELECT`+contactColumns+` FROM contact WHERE subject_guid = $1 ORDER BY created_at`,
		subject)
}

func (s *Store) FindByLinkToken(ctx context.Context, token uuid.UUID) ([]*repository.Contact, error) {
	return s.findContacts(ctx,
		`SELECT`+contactColumns+` FROM contact WHERE link_account_token = $1 ORDER BY created_at`,
		token)
}

// FindByEmailOrPhone unions the two sub-queries, deduplicated by contact
// id. Each sub-query degrades to an empty result on error: one failing
// lookup must not abort the other, nor the login.
func (s *Store) FindByEmailOrPhone(ctx context.Context, email, phone string) ([]*repository.Contact, error) {
	log := logger.From(ctx).With(logger.Layer("store"), logger.Component("pg.contacts"))

	var out []*repository.Contact
	seen := map[string]bool{}

	if email != "" {
		byEmail, err := s.findContacts(ctx,
			`SELECT`+contactColumns+` FROM contact WHERE lower(email) = lower($1) ORDER BY created_at LIMIT 2`,
			email)
		if err != nil {
			log.Error("contact lookup by email failed", logger.Err(err))
			metrics.RecordDegradedLookup("email")
		}
		for _, c := range byEmail {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}

	if phone != "" {
		byPhone, err := s.findContacts(ctx,
			`SELECT`+contactColumns+` FROM contact WHERE id IN (
				SELECT DISTINCT contact_id FROM contact_address
				WHERE daytime_phone = $1 OR evening_phone = $1
				LIMIT 50
			) ORDER BY created_at`,
			phone)
		if err != nil {
			log.Error("contact lookup by phone failed", logger.Err(err))
			metrics.RecordDegradedLookup("phone")
		}
		for _, c := range byPhone {
			if !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, c)
			}
		}
	}

	return out, nil
}

// Save upserts the contact and its addresses in one transaction.
func (s *Store) Save(ctx context.Context, contact *repository.Contact) error {
	if contact == nil {
		return repository.ErrInvalidInput
	}
	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO contact (id, subject_guid, link_account_token, email,
			first_name, last_name, full_name, birth_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (id) DO UPDATE SET
			subject_guid = EXCLUDED.subject_guid,
			link_account_token = EXCLUDED.link_account_token,
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			full_name = EXCLUDED.full_name,
			birth_date = EXCLUDED.birth_date,
			updated_at = EXCLUDED.updated_at`,
		contact.ID, contact.LinkedSubject, contact.LinkAccountToken, contact.Email,
		contact.FirstName, contact.LastName, contact.FullName, contact.BirthDate, now,
	)
	if err != nil {
		return mapPgError(err)
	}

	for _, a := range contact.Addresses {
		if a.ID == "" {
			a.ID = uuid.NewString()
		}
		var providerType *string
		if a.ProviderType != nil {
			t := string(*a.ProviderType)
			providerType = &t
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO contact_address (id, contact_id, name, line1, city,
				postal_code, country_code, daytime_phone, evening_phone,
				class, provider_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				line1 = EXCLUDED.line1,
				city = EXCLUDED.city,
				postal_code = EXCLUDED.postal_code,
				country_code = EXCLUDED.country_code,
				daytime_phone = EXCLUDED.daytime_phone,
				evening_phone = EXCLUDED.evening_phone,
				class = EXCLUDED.class,
				provider_type = EXCLUDED.provider_type,
				updated_at = EXCLUDED.updated_at`,
			a.ID, contact.ID, a.Name, a.Line1, a.City,
			a.PostalCode, a.CountryCode, a.DaytimePhone, a.EveningPhone,
			int16(a.Class), providerType, now,
		)
		if err != nil {
			return mapPgError(err)
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) findContacts(ctx context.Context, query string, args ...any) ([]*repository.Contact, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contacts []*repository.Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, c := range contacts {
		if err := s.loadAddresses(ctx, c); err != nil {
			return nil, err
		}
	}
	return contacts, nil
}

func (s *Store) loadAddresses(ctx context.Context, contact *repository.Contact) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, line1, city, postal_code, country_code,
			daytime_phone, evening_phone, class, provider_type
		FROM contact_address WHERE contact_id = $1 ORDER BY created_at`,
		contact.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a repository.ContactAddress
		var class int16
		var providerType *string
		if err := rows.Scan(&a.ID, &a.Name, &a.Line1, &a.City, &a.PostalCode,
			&a.CountryCode, &a.DaytimePhone, &a.EveningPhone, &class, &providerType); err != nil {
			return err
		}
		a.Class = repository.AddressClass(class)
		if providerType != nil {
			t := identity.ParseAddressType(*providerType)
			a.ProviderType = &t
		}
		contact.Addresses = append(contact.Addresses, &a)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*repository.Contact, error) {
	var c repository.Contact
	err := row.Scan(
		&c.ID, &c.LinkedSubject, &c.LinkAccountToken, &c.Email,
		&c.FirstName, &c.LastName, &c.FullName, &c.BirthDate,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", repository.ErrConflict, pgErr.ConstraintName)
	}
	return err
}
