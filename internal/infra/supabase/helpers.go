package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/boddenberg/cost-dashboard-go/internal/infra/resilience"
)

// ============================================================
// Typed request helpers
// ============================================================

// pageSize matches the PostgREST default max-rows; servers configured
// lower still page correctly because the loop follows Content-Range.
const pageSize = 1000

// selectRows GETs every row matched by path, following limit/offset
// pages until Content-Range reports the total has been read. Paths
// without an explicit order are ordered by id so pages do not overlap.
func selectRows[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	if !strings.Contains(path, "order=") {
		path += "&order=id.asc"
	}
	out := make([]T, 0)
	for offset := 0; ; {
		var (
			page  []T
			total = -1
		)
		err := c.call(ctx, op, func() error {
			body, header, err := c.send(ctx, http.MethodGet, fmt.Sprintf("%s&limit=%d&offset=%d", path, pageSize, offset), nil)
			if err != nil {
				return err
			}
			total = contentRangeTotal(header.Get("Content-Range"))
			page, err = decodeRows[T](op, body)
			return err
		})
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
		offset += len(page)

		switch {
		case len(page) == 0:
			return out, nil
		case total >= 0 && offset >= total:
			return out, nil
		case total < 0 && len(page) < pageSize:
			return out, nil
		}
	}
}

// contentRangeTotal reads the total from "0-999/3500"; -1 when the
// header is absent or the count is "*".
func contentRangeTotal(v string) int {
	i := strings.LastIndexByte(v, '/')
	if i < 0 {
		return -1
	}
	n, err := strconv.Atoi(v[i+1:])
	if err != nil {
		return -1
	}
	return n
}

// insertRows POSTs payload (an object or an array) to table and decodes
// the inserted representation. PostgREST inserts an array in one statement.
func insertRows[T any](ctx context.Context, c *Client, op, table string, payload any) ([]T, error) {
	var rows []T
	err := c.call(ctx, op, func() error {
		body, err := c.doRequest(ctx, http.MethodPost, table, payload)
		if err != nil {
			return err
		}
		rows, err = decodeRows[T](op, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// updateRows PATCHes the rows matched by path and decodes the result.
func updateRows[T any](ctx context.Context, c *Client, op, path string, payload any) ([]T, error) {
	var rows []T
	err := c.call(ctx, op, func() error {
		body, err := c.doRequest(ctx, http.MethodPatch, path, payload)
		if err != nil {
			return err
		}
		rows, err = decodeRows[T](op, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// deleteRows DELETEs the rows matched by path and decodes what was removed.
func deleteRows[T any](ctx context.Context, c *Client, op, path string) ([]T, error) {
	var rows []T
	err := c.call(ctx, op, func() error {
		body, err := c.doRequest(ctx, http.MethodDelete, path, nil)
		if err != nil {
			return err
		}
		rows, err = decodeRows[T](op, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func decodeRows[T any](op string, body []byte) ([]T, error) {
	rows := make([]T, 0)
	if len(body) == 0 {
		return rows, nil
	}
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, resilience.Permanent(fmt.Errorf("decode %s: %w", op, err))
	}
	return rows, nil
}

// query builds "table?k=v&..." with PostgREST operators already in the values.
func query(table string, params ...string) string {
	q := url.Values{}
	for i := 0; i+1 < len(params); i += 2 {
		q.Add(params[i], params[i+1])
	}
	return table + "?" + q.Encode()
}

func inList(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return "in.(" + strings.Join(parts, ",") + ")"
}

// pgTime accepts the timestamp shapes PostgREST emits for both
// timestamptz and timestamp columns.
type pgTime time.Time

var pgTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

func (t *pgTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = pgTime(time.Time{})
		return nil
	}
	for _, layout := range pgTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = pgTime(parsed.UTC())
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

func (t pgTime) Time() time.Time { return time.Time(t) }
