package output

import (
	"fmt"

	"github.com/mikrosim/taxben/internal/domain"
)

// Formatter renders a result set into one output format.
type Formatter interface {
	Name() string
	Format(results *domain.ResultSet) ([]byte, error)
}

// ForName returns the formatter registered under the given name.
func ForName(name string) (Formatter, error) {
	switch name {
	case "csv":
		return CSVFormatter{}, nil
	case "json":
		return JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want csv or json)", name)
	}
}
