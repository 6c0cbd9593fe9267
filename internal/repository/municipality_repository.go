package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/taxroll/internal/database"
	"github.com/stwalsh4118/taxroll/internal/models"
)

// MunicipalityRepository defines data access for municipalities.
type MunicipalityRepository interface {
	// FindByID returns nil, nil if the municipality does not exist.
	FindByID(ctx context.Context, id int64) (*models.Municipality, error)

	// List returns all municipalities ordered by id.
	List(ctx context.Context) ([]models.Municipality, error)

	// Create inserts a new municipality.
	// Returns ErrDuplicateKey if the id is taken.
	Create(ctx context.Context, m models.Municipality) (*models.Municipality, error)

	// Update overwrites every mutable field of an existing municipality.
	// Returns nil, nil if the municipality does not exist.
	Update(ctx context.Context, m models.Municipality) (*models.Municipality, error)

	// Upsert inserts or updates by municipal_id in one statement and reports
	// whether a new row was created.
	Upsert(ctx context.Context, m models.Municipality) (bool, error)

	// EnsureExists inserts m unless a municipality with the same id exists,
	// leaving an existing row untouched. Reports whether it inserted.
	EnsureExists(ctx context.Context, m models.Municipality) (bool, error)

	// Delete removes the municipality and every property referencing it.
	// Returns the number of properties removed and whether the municipality existed.
	Delete(ctx context.Context, id int64) (int64, bool, error)
}

type municipalityRepository struct {
	db *database.Database
}

// NewMunicipalityRepository creates a PostgreSQL-backed MunicipalityRepository.
func NewMunicipalityRepository(db *database.Database) MunicipalityRepository {
	return &municipalityRepository{db: db}
}

const municipalityColumns = `municipal_id, municipal_name, municipal_rate::text, education_rate::text, created_at, updated_at`

func scanMunicipality(row pgx.Row) (*models.Municipality, error) {
	var m models.Municipality
	var municipalRate, educationRate string

	if err := row.Scan(&m.MunicipalID, &m.MunicipalName, &municipalRate, &educationRate, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if m.MunicipalRate, err = parseRate(municipalRate); err != nil {
		return nil, fmt.Errorf("failed to parse municipal_rate for municipality %d: %w", m.MunicipalID, err)
	}
	if m.EducationRate, err = parseRate(educationRate); err != nil {
		return nil, fmt.Errorf("failed to parse education_rate for municipality %d: %w", m.MunicipalID, err)
	}
	return &m, nil
}

func (r *municipalityRepository) FindByID(ctx context.Context, id int64) (*models.Municipality, error) {
	query := `SELECT ` + municipalityColumns + ` FROM municipalities WHERE municipal_id = $1`

	m, err := scanMunicipality(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query municipality %d: %w", id, err)
	}
	return m, nil
}

func (r *municipalityRepository) List(ctx context.Context) ([]models.Municipality, error) {
	query := `SELECT ` + municipalityColumns + ` FROM municipalities ORDER BY municipal_id`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list municipalities: %w", err)
	}
	defer rows.Close()

	results := []models.Municipality{}
	for rows.Next() {
		m, err := scanMunicipality(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan municipality row: %w", err)
		}
		results = append(results, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating municipality rows: %w", err)
	}
	return results, nil
}

func (r *municipalityRepository) Create(ctx context.Context, m models.Municipality) (*models.Municipality, error) {
	query := `
		INSERT INTO municipalities (municipal_id, municipal_name, municipal_rate, education_rate)
		VALUES ($1, $2, $3::text::numeric, $4::text::numeric)
		RETURNING ` + municipalityColumns

	created, err := scanMunicipality(r.db.Pool.QueryRow(ctx, query,
		m.MunicipalID, m.MunicipalName, m.MunicipalRate.String(), m.EducationRate.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to create municipality %d: %w", m.MunicipalID, translate(err))
	}
	return created, nil
}

func (r *municipalityRepository) Update(ctx context.Context, m models.Municipality) (*models.Municipality, error) {
	query := `
		UPDATE municipalities
		SET municipal_name = $2,
			municipal_rate = $3::text::numeric,
			education_rate = $4::text::numeric,
			updated_at = NOW()
		WHERE municipal_id = $1
		RETURNING ` + municipalityColumns

	updated, err := scanMunicipality(r.db.Pool.QueryRow(ctx, query,
		m.MunicipalID, m.MunicipalName, m.MunicipalRate.String(), m.EducationRate.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update municipality %d: %w", m.MunicipalID, translate(err))
	}
	return updated, nil
}

func (r *municipalityRepository) Upsert(ctx context.Context, m models.Municipality) (bool, error) {
	// xmax is zero only for freshly inserted tuples.
	query := `
		INSERT INTO municipalities (municipal_id, municipal_name, municipal_rate, education_rate)
		VALUES ($1, $2, $3::text::numeric, $4::text::numeric)
		ON CONFLICT (municipal_id) DO UPDATE
		SET municipal_name = EXCLUDED.municipal_name,
			municipal_rate = EXCLUDED.municipal_rate,
			education_rate = EXCLUDED.education_rate,
			updated_at = NOW()
		RETURNING (xmax = 0)`

	var inserted bool
	err := r.db.Pool.QueryRow(ctx, query,
		m.MunicipalID, m.MunicipalName, m.MunicipalRate.String(), m.EducationRate.String()).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert municipality %d: %w", m.MunicipalID, translate(err))
	}
	return inserted, nil
}

func (r *municipalityRepository) EnsureExists(ctx context.Context, m models.Municipality) (bool, error) {
	query := `
		INSERT INTO municipalities (municipal_id, municipal_name, municipal_rate, education_rate)
		VALUES ($1, $2, $3::text::numeric, $4::text::numeric)
		ON CONFLICT (municipal_id) DO NOTHING`

	tag, err := r.db.Pool.Exec(ctx, query,
		m.MunicipalID, m.MunicipalName, m.MunicipalRate.String(), m.EducationRate.String())
	if err != nil {
		return false, fmt.Errorf("failed to ensure municipality %d: %w", m.MunicipalID, translate(err))
	}
	return tag.RowsAffected() == 1, nil
}

// Delete cascades explicitly: dependents first, then the municipality, in
// one transaction. The schema's ON DELETE CASCADE is a backstop only.
func (r *municipalityRepository) Delete(ctx context.Context, id int64) (int64, bool, error) {
	var removedProperties int64
	var found bool

	err := r.db.WithTx(ctx, func(q database.Querier) error {
		// Lock the parent so no property can be attached mid-delete.
		var locked int64
		err := q.QueryRow(ctx, `SELECT municipal_id FROM municipalities WHERE municipal_id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true

		tag, err := q.Exec(ctx, `DELETE FROM properties WHERE municipal_id = $1`, id)
		if err != nil {
			return err
		}
		removedProperties = tag.RowsAffected()

		_, err = q.Exec(ctx, `DELETE FROM municipalities WHERE municipal_id = $1`, id)
		return err
	})
	if err != nil {
		return 0, false, fmt.Errorf("failed to delete municipality %d: %w", id, err)
	}
	return removedProperties, found, nil
}
