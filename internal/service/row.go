package service

import (
	"fmt"

	"homecare-data/internal/repository"
)

// plainValue converts a typed value to the generic JSON form the record
// stores hold (maps, slices, strings, int64/float64).
func plainValue(v any) (any, error) {
	row, err := repository.ToRow(map[string]any{"v": v})
	if err != nil {
		return nil, err
	}
	return row["v"], nil
}

// decodePayload validates payload against table and decodes it into out.
func decodePayload(table repository.Table, payload repository.Row, out any) error {
	if err := repository.ValidateColumns(table, payload); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if err := repository.FromRow(payload, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}

// mergePatch decodes current with patch applied on top, without writing.
func mergePatch(table repository.Table, current any, patch repository.Row, out any) error {
	if err := repository.ValidatePatch(table, patch); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	merged, err := repository.ToRow(current)
	if err != nil {
		return err
	}
	for k, v := range patch {
		merged[k] = v
	}
	if err := repository.FromRow(merged, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return nil
}
