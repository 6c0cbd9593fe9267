package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/stwalsh4118/taxroll/internal/database"
	"github.com/stwalsh4118/taxroll/internal/models"
)

// PropertyRecord holds the stored columns of a property write.
type PropertyRecord struct {
	AssessmentRollNumber string
	AssessmentValue      int64
	MunicipalID          int64
}

// PropertyChanges is a partial property write. Nil fields keep their
// stored value.
type PropertyChanges struct {
	AssessmentRollNumber *string
	AssessmentValue      *int64
	MunicipalID          *int64
}

// PropertyFilter narrows List results. Zero values mean no filtering.
type PropertyFilter struct {
	// MunicipalID restricts results to one municipality.
	MunicipalID *int64
	// Search matches roll numbers and municipality names, case-insensitively.
	Search string
}

// PropertyRepository defines data access for properties. Every returned
// property has its Municipality populated.
type PropertyRepository interface {
	// FindByID returns nil, nil if the property does not exist.
	FindByID(ctx context.Context, id int64) (*models.Property, error)

	// List returns properties matching filter ordered by id.
	List(ctx context.Context, filter PropertyFilter) ([]models.Property, error)

	// Create inserts a property. Returns ErrDuplicateKey for a taken roll
	// number and ErrMissingReference for an unknown municipality.
	Create(ctx context.Context, rec PropertyRecord) (*models.Property, error)

	// Update writes all fields of rec to property id in a single statement.
	// Returns nil, nil if the property does not exist.
	Update(ctx context.Context, id int64, rec PropertyRecord) (*models.Property, error)

	// Patch writes the non-nil fields of changes to property id in a single
	// statement, leaving the other columns as they are in the database.
	// Returns nil, nil if the property does not exist.
	Patch(ctx context.Context, id int64, changes PropertyChanges) (*models.Property, error)

	// UpsertByRollNumber inserts or updates keyed on the roll number and
	// reports whether a new row was created.
	UpsertByRollNumber(ctx context.Context, rec PropertyRecord) (bool, error)

	// Delete removes a property. Reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

type propertyRepository struct {
	db *database.Database
}

// NewPropertyRepository creates a PostgreSQL-backed PropertyRepository.
func NewPropertyRepository(db *database.Database) PropertyRepository {
	return &propertyRepository{db: db}
}

const propertySelect = `
	SELECT
		p.id,
		p.assessment_roll_number,
		p.assessment_value,
		p.created_at,
		p.updated_at,
		m.municipal_id,
		m.municipal_name,
		m.municipal_rate::text,
		m.education_rate::text,
		m.created_at,
		m.updated_at
	FROM properties p
	JOIN municipalities m ON m.municipal_id = p.municipal_id`

func scanProperty(row pgx.Row) (*models.Property, error) {
	var p models.Property
	var municipalRate, educationRate string

	err := row.Scan(
		&p.ID,
		&p.AssessmentRollNumber,
		&p.AssessmentValue,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Municipal.MunicipalID,
		&p.Municipal.MunicipalName,
		&municipalRate,
		&educationRate,
		&p.Municipal.CreatedAt,
		&p.Municipal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if p.Municipal.MunicipalRate, err = parseRate(municipalRate); err != nil {
		return nil, fmt.Errorf("failed to parse municipal_rate for property %d: %w", p.ID, err)
	}
	if p.Municipal.EducationRate, err = parseRate(educationRate); err != nil {
		return nil, fmt.Errorf("failed to parse education_rate for property %d: %w", p.ID, err)
	}
	return &p, nil
}

func (r *propertyRepository) findOne(ctx context.Context, where string, arg any) (*models.Property, error) {
	p, err := scanProperty(r.db.Pool.QueryRow(ctx, propertySelect+` WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *propertyRepository) FindByID(ctx context.Context, id int64) (*models.Property, error) {
	p, err := r.findOne(ctx, `p.id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query property %d: %w", id, err)
	}
	return p, nil
}

func (r *propertyRepository) List(ctx context.Context, filter PropertyFilter) ([]models.Property, error) {
	query := propertySelect + `
		WHERE ($1::bigint IS NULL OR p.municipal_id = $1)
		AND ($2::text = '' OR p.assessment_roll_number ILIKE $3 OR m.municipal_name ILIKE $3)
		ORDER BY p.id`

	search := strings.TrimSpace(filter.Search)
	rows, err := r.db.Pool.Query(ctx, query, filter.MunicipalID, search, "%"+escapeLike(search)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	results := []models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property row: %w", err)
		}
		results = append(results, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating property rows: %w", err)
	}
	return results, nil
}

func (r *propertyRepository) Create(ctx context.Context, rec PropertyRecord) (*models.Property, error) {
	var id int64
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO properties (assessment_roll_number, assessment_value, municipal_id)
		VALUES ($1, $2, $3)
		RETURNING id`,
		rec.AssessmentRollNumber, rec.AssessmentValue, rec.MunicipalID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create property %q: %w", rec.AssessmentRollNumber, translate(err))
	}
	return r.FindByID(ctx, id)
}

func (r *propertyRepository) Update(ctx context.Context, id int64, rec PropertyRecord) (*models.Property, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE properties
		SET assessment_roll_number = $2,
			assessment_value = $3,
			municipal_id = $4,
			updated_at = NOW()
		WHERE id = $1`,
		id, rec.AssessmentRollNumber, rec.AssessmentValue, rec.MunicipalID)
	if err != nil {
		return nil, fmt.Errorf("failed to update property %d: %w", id, translate(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *propertyRepository) Patch(ctx context.Context, id int64, changes PropertyChanges) (*models.Property, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE properties
		SET assessment_roll_number = COALESCE($2::varchar, assessment_roll_number),
			assessment_value = COALESCE($3::bigint, assessment_value),
			municipal_id = COALESCE($4::bigint, municipal_id),
			updated_at = NOW()
		WHERE id = $1`,
		id, changes.AssessmentRollNumber, changes.AssessmentValue, changes.MunicipalID)
	if err != nil {
		return nil, fmt.Errorf("failed to patch property %d: %w", id, translate(err))
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

func (r *propertyRepository) UpsertByRollNumber(ctx context.Context, rec PropertyRecord) (bool, error) {
	var inserted bool
	err := r.db.Pool.QueryRow(ctx, `
		INSERT INTO properties (assessment_roll_number, assessment_value, municipal_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (assessment_roll_number) DO UPDATE
		SET assessment_value = EXCLUDED.assessment_value,
			municipal_id = EXCLUDED.municipal_id,
			updated_at = NOW()
		RETURNING (xmax = 0)`,
		rec.AssessmentRollNumber, rec.AssessmentValue, rec.MunicipalID).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("failed to upsert property %q: %w", rec.AssessmentRollNumber, translate(err))
	}
	return inserted, nil
}

func (r *propertyRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM properties WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete property %d: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// escapeLike escapes LIKE metacharacters so search text matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
