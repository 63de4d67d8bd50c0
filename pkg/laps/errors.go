package laps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrMissingField  = errors.New("missing field")
)

// RecordError describes why a batch of lap records was rejected.
// It matches ErrInvalidRecord or ErrMissingField via errors.Is.
type RecordError struct {
	Kind       error
	Index      int    // position of the first offending record in the input
	Field      string // name of the missing or invalid field
	LapNumbers []int  // lap numbers involved, if known
	Stint      int    // stint of the offending record, 0 if unknown
	Reason     string
}

func (e *RecordError) Error() string {
	parts := []string{e.Kind.Error()}
	if e.Field != "" {
		parts = append(parts, "field="+e.Field)
	}
	parts = append(parts, fmt.Sprintf("index=%d", e.Index))
	if len(e.LapNumbers) > 0 {
		parts = append(parts, "laps="+strings.Join(
			lo.Map(e.LapNumbers, func(l, _ int) string { return fmt.Sprint(l) }), ","))
	}
	if e.Stint > 0 {
		parts = append(parts, fmt.Sprintf("stint=%d", e.Stint))
	}
	if e.Reason != "" {
		parts = append(parts, e.Reason)
	}
	return strings.Join(parts, " ")
}

func (e *RecordError) Unwrap() error {
	return e.Kind
}
