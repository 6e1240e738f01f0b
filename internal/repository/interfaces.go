// internal/repository/interfaces.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"print-service/internal/model"
)

// ErrProfileNotFound is returned when a cafe has no active, default printer
// profile for the requested printer class. Callers must not attempt any
// transport in this case.
var ErrProfileNotFound = errors.New("no active printer profile")

// ProfileRepository defines read access to the printer-profile store. The
// store is written by cafe administration tooling; this service only reads.
type ProfileRepository interface {
	// GetActiveProfile returns the default, active profile for a cafe and
	// printer class. A COMBINED profile satisfies any class.
	GetActiveProfile(ctx context.Context, cafeID uuid.UUID, class model.PrinterClass) (*model.PrinterProfile, error)

	// ListByCafe returns every profile registered for a cafe.
	ListByCafe(ctx context.Context, cafeID uuid.UUID) ([]*model.PrinterProfile, error)
}
