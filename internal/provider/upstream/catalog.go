package upstream

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/davidbz/chatrelay/internal/domain"
)

// ErrInvalidCatalog indicates the catalog payload lacks a models list.
var ErrInvalidCatalog = errors.New("invalid model catalog payload")

// ParseCatalog decodes the vendor model list payload.
func ParseCatalog(body []byte) ([]domain.CatalogModel, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrInvalidCatalog)
	}

	models := gjson.GetBytes(body, "models")
	if !models.IsArray() {
		return nil, fmt.Errorf("%w: missing models list", ErrInvalidCatalog)
	}

	out := make([]domain.CatalogModel, 0, len(models.Array()))
	models.ForEach(func(_, m gjson.Result) bool {
		if !m.IsObject() {
			return true
		}
		out = append(out, domain.CatalogModel{
			ID:              m.Get("id").String(),
			Model:           m.Get("model").String(),
			Provider:        m.Get("provider").String(),
			RequiresPremium: m.Get("requires_better_ai").Bool(),
			Availability:    m.Get("availability").String(),
		})
		return true
	})

	return out, nil
}
