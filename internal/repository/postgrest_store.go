package repository

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// PostgRESTStore RecordStore on a hosted PostgREST endpoint (Supabase style
// /rest/v1/{table}).
type PostgRESTStore struct {
	httpClient *resty.Client
	logger     *zap.Logger
	now        func() time.Time
}

// NewPostgRESTStore apiKey is sent both as apikey header and bearer token.
func NewPostgRESTStore(baseURL, apiKey string, logger *zap.Logger) *PostgRESTStore {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if apiKey != "" {
		client.SetHeader("apikey", apiKey).SetAuthToken(apiKey)
	}
	return &PostgRESTStore{httpClient: client, logger: logger, now: time.Now}
}

var _ RecordStore = (*PostgRESTStore)(nil)

func tablePath(table Table) string {
	return "/rest/v1/" + string(table)
}

func (s *PostgRESTStore) Insert(ctx context.Context, table Table, row Row) (Row, error) {
	if err := ValidateColumns(table, row); err != nil {
		return nil, err
	}
	stored := cloneRow(row)
	if stored == nil {
		stored = Row{}
	}
	stampCreated(stored, s.now())

	if id, _ := rowID(stored); id <= 0 {
		resp, err := s.httpClient.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"select": "id",
				"order":  "id.desc",
				"limit":  "1",
			}).
			Get(tablePath(table))
		if err := s.check(table, "read max id of", resp, err); err != nil {
			return nil, err
		}
		last, err := decodeRows(resp.Body())
		if err != nil {
			return nil, err
		}
		stored[columnID] = NextID(last)
	}

	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(stored).
		Post(tablePath(table))
	if err := s.check(table, "insert into", resp, err); err != nil {
		return nil, err
	}
	return s.single(table, 0, resp)
}

func (s *PostgRESTStore) Fetch(ctx context.Context, table Table, order *Order) ([]Row, error) {
	if _, ok := tableColumns[table]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	req := s.httpClient.R().
		SetContext(ctx).
		SetQueryParam("select", "*")
	if order != nil {
		if !HasColumn(table, order.Column) {
			return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, order.Column)
		}
		dir := "asc"
		if order.Desc {
			dir = "desc"
		}
		req.SetQueryParam("order", order.Column+"."+dir)
	}
	resp, err := req.Get(tablePath(table))
	if err := s.check(table, "fetch", resp, err); err != nil {
		return nil, err
	}
	return decodeRows(resp.Body())
}

func (s *PostgRESTStore) Update(ctx context.Context, table Table, id int64, patch Row) (Row, error) {
	if err := ValidatePatch(table, patch); err != nil {
		return nil, err
	}
	body := patch
	if body == nil {
		body = Row{}
	}
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+strconv.FormatInt(id, 10)).
		SetBody(body).
		Patch(tablePath(table))
	if err := s.check(table, "update", resp, err); err != nil {
		return nil, err
	}
	return s.single(table, id, resp)
}

func (s *PostgRESTStore) Delete(ctx context.Context, table Table, id int64) error {
	if _, ok := tableColumns[table]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}
	resp, err := s.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetQueryParam("id", "eq."+strconv.FormatInt(id, 10)).
		Delete(tablePath(table))
	if err := s.check(table, "delete from", resp, err); err != nil {
		return err
	}
	_, err = s.single(table, id, resp)
	return err
}

func (s *PostgRESTStore) check(table Table, op string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("failed to %s %s: %w", op, table, err)
	}
	if !resp.IsError() {
		return nil
	}
	s.logger.Warn("postgrest request failed",
		zap.String("table", string(table)),
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode()),
		zap.String("body", resp.String()),
	)
	if resp.StatusCode() == http.StatusConflict {
		return fmt.Errorf("%w: %s: %s", ErrDuplicateID, table, resp.String())
	}
	return fmt.Errorf("failed to %s %s: status %d: %s", op, table, resp.StatusCode(), resp.String())
}

// single first row of a return=representation response; none means the id
// matched nothing.
func (s *PostgRESTStore) single(table Table, id int64, resp *resty.Response) (Row, error) {
	rows, err := decodeRows(resp.Body())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s id %d", ErrNotFound, table, id)
	}
	return rows[0], nil
}
