package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/Dandev001/maxed-homes-sub003/internal/domain"
	"github.com/Dandev001/maxed-homes-sub003/pkg/telemetry"
)

// PostgresPropertyRepository implements PropertyRepository using PostgreSQL
type PostgresPropertyRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPropertyRepository creates a new PostgresPropertyRepository
func NewPostgresPropertyRepository(pool *pgxpool.Pool) *PostgresPropertyRepository {
	return &PostgresPropertyRepository{pool: pool}
}

// GetProperty retrieves a property summary by ID
func (r *PostgresPropertyRepository) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.property.get")
	defer span.End()

	span.SetAttributes(attribute.String("property_id", id))

	query := `
		SELECT id, host_id, name, max_guests, price_per_night, cleaning_fee, security_deposit
		FROM properties
		WHERE id = $1
	`

	property := &domain.Property{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&property.ID,
		&property.HostID,
		&property.Name,
		&property.MaxGuests,
		&property.PricePerNight,
		&property.CleaningFee,
		&property.SecurityDeposit,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrPropertyNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError("failed to get property", err)
	}

	span.SetStatus(codes.Ok, "")
	return property, nil
}

// GetGuest retrieves a guest contact summary by ID
func (r *PostgresPropertyRepository) GetGuest(ctx context.Context, id string) (*domain.Guest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.guest.get")
	defer span.End()

	span.SetAttributes(attribute.String("guest_id", id))

	query := `
		SELECT id, full_name, email
		FROM guests
		WHERE id = $1
	`

	guest := &domain.Guest{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&guest.ID,
		&guest.FullName,
		&guest.Email,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrGuestNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, storeError("failed to get guest", err)
	}

	span.SetStatus(codes.Ok, "")
	return guest, nil
}

// Ensure PostgresPropertyRepository implements PropertyRepository
var _ PropertyRepository = (*PostgresPropertyRepository)(nil)
