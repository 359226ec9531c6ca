package handler

import (
	"fmt"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/interfaces/http/dto"
)

// parseDate parses a YYYY-MM-DD date string
func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func errInvalidField(name string) error {
	return fmt.Errorf("invalid %s", name)
}

// toSharedFilter converts common list parameters to a domain filter
func toSharedFilter(req dto.ListRequest) shared.Filter {
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
	}
}
