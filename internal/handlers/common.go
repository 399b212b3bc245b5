package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	domain "github.com/jacoubbakhouche/foufou-api/internal/domain"
	"github.com/jacoubbakhouche/foufou-api/internal/platform/pagination"
	"github.com/jacoubbakhouche/foufou-api/internal/services"
)

const (
	defaultBodyLimit    = 64 * 1024
	defaultListPageSize = 20
)

var (
	errBodyTooLarge = errors.New("request body too large")
	errEmptyBody    = errors.New("request body is required")
)

func readLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r == nil || r.Body == nil {
		return nil, errEmptyBody
	}
	if limit <= 0 {
		limit = defaultBodyLimit
	}
	reader := io.LimitReader(r.Body, limit+1)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, errEmptyBody
	}
	if int64(len(data)) > limit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

func decodeJSONBody(r *http.Request, limit int64, dst any) error {
	data, err := readLimitedBody(r, limit)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errors.New("invalid JSON payload")
	}
	return nil
}

func writeJSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatTimePointer(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// parsePagination reads the pageSize and pageToken query parameters. Malformed
// values fall back to the defaults rather than failing the request.
func parsePagination(r *http.Request) domain.Pagination {
	params, err := pagination.FromRequest(r, pagination.Options{
		DefaultPageSize: defaultListPageSize,
	})
	if err != nil {
		return domain.Pagination{PageSize: defaultListPageSize}
	}
	return domain.Pagination{
		PageSize:  params.PageSize,
		PageToken: params.PageToken,
	}
}

type localizedPayload struct {
	Arabic string `json:"ar"`
	French string `json:"fr"`
}

func buildLocalizedPayload(text services.LocalizedText) localizedPayload {
	return localizedPayload{Arabic: text.Arabic, French: text.French}
}

func (p localizedPayload) toDomain() domain.LocalizedText {
	return domain.LocalizedText{
		Arabic: strings.TrimSpace(p.Arabic),
		French: strings.TrimSpace(p.French),
	}
}
