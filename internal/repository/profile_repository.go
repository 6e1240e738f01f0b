// internal/repository/profile_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"print-service/internal/database"
	"print-service/internal/model"
)

// profileRepository implements ProfileRepository against Postgres
type profileRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewProfileRepository creates a new printer-profile repository
func NewProfileRepository(db *database.DB, logger *zap.Logger) ProfileRepository {
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

const profileColumns = `
	id, cafe_id, display_name, printer_class, transport, tax_display,
	decimal_style, host, port, vendor_id, product_id, serial_port,
	baud_rate, paper_width, density, auto_cut, is_default, is_active,
	created_at, updated_at
`

// GetActiveProfile returns the authoritative profile for a cafe and class
func (r *profileRepository) GetActiveProfile(ctx context.Context, cafeID uuid.UUID, class model.PrinterClass) (*model.PrinterProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM printer_profiles
		WHERE cafe_id = $1
		  AND is_active
		  AND is_default
		  AND printer_class IN ($2, 'COMBINED')
		ORDER BY (printer_class = $2) DESC
		LIMIT 1
	`

	profile, err := r.scanProfile(r.db.QueryRowContext(ctx, query, cafeID, class))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrProfileNotFound
		}
		r.logger.Error("Failed to get active printer profile",
			zap.Error(err),
			zap.String("cafe_id", cafeID.String()),
		)
		return nil, fmt.Errorf("failed to get active printer profile: %w", err)
	}

	return profile, nil
}

// ListByCafe returns every profile registered for a cafe
func (r *profileRepository) ListByCafe(ctx context.Context, cafeID uuid.UUID) ([]*model.PrinterProfile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM printer_profiles
		WHERE cafe_id = $1
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, cafeID)
	if err != nil {
		r.logger.Error("Failed to list printer profiles",
			zap.Error(err),
			zap.String("cafe_id", cafeID.String()),
		)
		return nil, fmt.Errorf("failed to list printer profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.PrinterProfile
	for rows.Next() {
		profile, err := r.scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan printer profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate printer profiles: %w", err)
	}

	return profiles, nil
}

// scanner covers both sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func (r *profileRepository) scanProfile(s scanner) (*model.PrinterProfile, error) {
	profile := &model.PrinterProfile{}
	err := s.Scan(
		&profile.ID, &profile.CafeID, &profile.DisplayName, &profile.PrinterClass,
		&profile.Transport, &profile.TaxDisplay, &profile.DecimalStyle,
		&profile.Host, &profile.Port, &profile.VendorID, &profile.ProductID,
		&profile.SerialPort, &profile.BaudRate, &profile.PaperWidth,
		&profile.Density, &profile.AutoCut, &profile.IsDefault, &profile.IsActive,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}
