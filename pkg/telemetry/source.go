// Package telemetry provides access to lap data of telemetry providers.
package telemetry

import (
	"context"
	"errors"

	"github.com/mpapenbr/iracelog-lapanalysis/pkg/laps"
)

var (
	ErrInvalidSelection  = errors.New("invalid selection")
	ErrSelectionMismatch = errors.New("selection does not match document")
	ErrSchemaVersion     = errors.New("unsupported schema version")
	ErrInvalidDocument   = errors.New("invalid document")
)

type Source interface {
	Laps(ctx context.Context, sel Selection) ([]laps.LapRecord, error)
}

// SourceFunc adapts a function to the Source interface
type SourceFunc func(ctx context.Context, sel Selection) ([]laps.LapRecord, error)

func (f SourceFunc) Laps(ctx context.Context, sel Selection) ([]laps.LapRecord, error) {
	return f(ctx, sel)
}
