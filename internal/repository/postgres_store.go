package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore RecordStore on PostgreSQL. Rows travel as JSON in both
// directions (json_populate_record in, row_to_json out), so the store needs no
// per-table scan code.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger, now: time.Now}
}

var _ RecordStore = (*PostgresStore)(nil)

// EnsureSchema creates the four tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	if err := ValidateColumns(table, row); err != nil {
		return nil, err
	}
	tbl := pq.QuoteIdentifier(string(table))
	stored := cloneRow(row)
	if stored == nil {
		stored = Row{}
	}
	stampCreated(stored, s.now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin insert into %s: %w", table, err)
	}
	defer tx.Rollback()

	if id, _ := rowID(stored); id <= 0 {
		// serialises id assignment with concurrent inserts on the same table
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`LOCK TABLE %s IN SHARE ROW EXCLUSIVE MODE`, tbl)); err != nil {
			return nil, fmt.Errorf("failed to lock %s: %w", table, err)
		}
		var next int64
		if err := tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT COALESCE(MAX(id), 0) + 1 FROM %s`, tbl)).Scan(&next); err != nil {
			return nil, fmt.Errorf("failed to compute next id for %s: %w", table, err)
		}
		stored[columnID] = next
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %[1]s
		SELECT * FROM json_populate_record(NULL::%[1]s, $1::json)
		RETURNING row_to_json(%[1]s.*)
	`, tbl)
	var raw []byte
	if err := tx.QueryRowContext(ctx, query, string(payload)).Scan(&raw); err != nil {
		return nil, s.mapError(table, "insert into", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit insert into %s: %w", table, err)
	}
	return DecodeRow(strings.NewReader(string(raw)))
}

func (s *PostgresStore) Fetch(ctx context.Context, table Table, order *Order) ([]Row, error) {
	if _, ok := tableColumns[table]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	tbl := pq.QuoteIdentifier(string(table))
	query := fmt.Sprintf(`SELECT row_to_json(t.*) FROM %s AS t`, tbl)
	if order != nil {
		if !HasColumn(table, order.Column) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, order.Column)
		}
		dir := "ASC"
		if order.Desc {
			dir = "DESC"
		}
		query += fmt.Sprintf(` ORDER BY t.%s %s`, pq.QuoteIdentifier(order.Column), dir)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", table, err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		r, err := DecodeRow(strings.NewReader(string(raw)))
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", table, err)
	}
	return out, nil
}

func (s *PostgresStore) Update(ctx context.Context, table Table, id int64, patch Row) (Row, error) {
	if err := ValidatePatch(table, patch); err != nil {
		return nil, err
	}
	tbl := pq.QuoteIdentifier(string(table))

	var (
		query string
		args  []any
	)
	if len(patch) == 0 {
		query = fmt.Sprintf(`SELECT row_to_json(t.*) FROM %s AS t WHERE t.id = $1`, tbl)
		args = []any{id}
	} else {
		sets := make([]string, 0, len(patch))
		for _, col := range sortedKeys(patch) {
			q := pq.QuoteIdentifier(col)
			sets = append(sets, fmt.Sprintf("%s = r.%s", q, q))
		}
		payload, err := json.Marshal(patch)
		if err != nil {
			return nil, fmt.Errorf("encode patch: %w", err)
		}
		query = fmt.Sprintf(`
			UPDATE %[1]s AS t SET %[2]s
			FROM json_populate_record(NULL::%[1]s, $1::json) AS r
			WHERE t.id = $2
			RETURNING row_to_json(t.*)
		`, tbl, strings.Join(sets, ", "))
		args = []any{string(payload), id}
	}

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s id %d", ErrNotFound, table, id)
		}
		return nil, s.mapError(table, "update", err)
	}
	return DecodeRow(strings.NewReader(string(raw)))
}

func (s *PostgresStore) Delete(ctx context.Context, table Table, id int64) error {
	if _, ok := tableColumns[table]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pq.QuoteIdentifier(string(table))), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", table, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s id %d", ErrNotFound, table, id)
	}
	return nil
}

func (s *PostgresStore) mapError(table Table, op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s: %s", ErrDuplicateID, table, pqErr.Detail)
		}
		s.logger.Warn("postgres error",
			zap.String("table", string(table)),
			zap.String("op", op),
			zap.String("code", string(pqErr.Code)),
			zap.String("message", pqErr.Message),
		)
	}
	return fmt.Errorf("failed to %s %s: %w", op, table, err)
}
