package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/grocerrypoint/grocerrypoint-backend/pkg/errors"
	"github.com/grocerrypoint/grocerrypoint-backend/pkg/pagination"
)

// IntParam describes a bounded integer query parameter.
type IntParam struct {
	Name    string
	Default int
	Min     int
	Max     int
}

// PageLimit is the ?limit= parameter shared by list endpoints.
var PageLimit = IntParam{Name: "limit", Default: pagination.DefaultLimit, Min: 1, Max: pagination.MaxLimit}

// Parse reads p from the query string. A missing or blank value yields Default.
func (p IntParam) Parse(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(p.Name))
	if raw == "" {
		return p.Default, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, p.Name+" must be a whole number").
			WithDetails(map[string]any{"field": p.Name})
	}
	if value < p.Min || value > p.Max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, p.Name+" is out of range").
			WithDetails(map[string]any{"field": p.Name, "min": p.Min, "max": p.Max})
	}
	return value, nil
}

// PageParams reads ?limit= and ?cursor= for cursor-paginated lists.
func PageParams(r *http.Request) (pagination.Params, error) {
	limit, err := PageLimit.Parse(r)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: SanitizeString(r.URL.Query().Get("cursor"), 512),
	}, nil
}
