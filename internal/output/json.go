package output

import (
	"encoding/json"

	"github.com/mikrosim/taxben/internal/domain"
)

// JSONFormatter writes the full result set as indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(results *domain.ResultSet) ([]byte, error) {
	return json.MarshalIndent(results, "", "  ")
}
