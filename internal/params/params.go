// Package params loads and resolves the versioned policy parameter table.
// The table is a list of date-keyed parameter sets; the set in force for a
// simulation is the latest one whose effective date is on or before the
// simulation's reference date. Sets are nested trees of named constants:
// plain scalars, East/West splits, and piecewise polynomial specs. All
// structural validation happens once at load time.
package params

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/mikrosim/taxben/internal/domain"
	"github.com/mikrosim/taxben/internal/piecewise"
)

const dateLayout = "2006-01-02"

// Set is one dated policy parameter set, immutable after load and shared
// read-only by all workers for the run's lifetime.
type Set struct {
	EffectiveDate time.Time
	values        map[string]interface{}
}

// Table is the full versioned parameter table, sorted by effective date.
type Table struct {
	Sets []Set
}

type rawFile struct {
	ParameterSets []map[string]interface{} `yaml:"parameter_sets"`
}

// LoadFile reads and validates a parameter table from a YAML file.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameter file %s: %w", path, err)
	}
	return Load(data)
}

// Load parses and validates a parameter table from YAML bytes.
func Load(data []byte) (*Table, error) {
	var raw rawFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Reason: "failed to parse parameter YAML", Err: err}
	}
	if len(raw.ParameterSets) == 0 {
		return nil, &ConfigurationError{Reason: "parameter table contains no parameter_sets"}
	}

	table := &Table{}
	for i, entry := range raw.ParameterSets {
		rawDate, ok := entry["effective_date"]
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("parameter set %d has no effective_date", i)}
		}
		date, err := parseDate(rawDate)
		if err != nil {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("parameter set %d has a bad effective_date", i), Err: err}
		}
		values := make(map[string]interface{}, len(entry))
		for k, v := range entry {
			if k == "effective_date" {
				continue
			}
			values[k] = v
		}
		set := Set{EffectiveDate: date, values: values}
		if err := set.validateTree(); err != nil {
			return nil, err
		}
		table.Sets = append(table.Sets, set)
	}

	sort.Slice(table.Sets, func(i, j int) bool {
		return table.Sets[i].EffectiveDate.Before(table.Sets[j].EffectiveDate)
	})
	return table, nil
}

func parseDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d, nil
	case string:
		return time.Parse(dateLayout, d)
	default:
		return time.Time{}, fmt.Errorf("effective_date has type %T, want a %s date", v, dateLayout)
	}
}

// At returns the parameter set in force at the given reference date.
func (t *Table) At(date time.Time) (*Set, error) {
	var active *Set
	for i := range t.Sets {
		if !t.Sets[i].EffectiveDate.After(date) {
			active = &t.Sets[i]
		}
	}
	if active == nil {
		return nil, &MissingParameterError{Path: "(parameter set)", Date: date}
	}
	return active, nil
}

// validateTree walks the whole set once, validating every piecewise spec
// it finds so evaluation never sees a malformed one.
func (s *Set) validateTree() error {
	var walk func(path []string, node interface{}) error
	walk = func(path []string, node interface{}) error {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		if _, isSpec := m["thresholds"]; isSpec {
			if _, err := buildPiecewise(m); err != nil {
				return &ConfigurationError{Reason: fmt.Sprintf("invalid piecewise spec at %s", strings.Join(path, "/")), Err: err}
			}
			return nil
		}
		for k, v := range m {
			sub := append(append([]string(nil), path...), k)
			if err := walk(sub, v); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(nil, interface{}(s.values))
}

func (s *Set) resolve(path []string) (interface{}, error) {
	var node interface{} = s.values
	for i, key := range path {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, &MissingParameterError{Path: strings.Join(path[:i+1], "/"), Date: s.EffectiveDate}
		}
		node, ok = m[key]
		if !ok {
			return nil, &MissingParameterError{Path: strings.Join(path[:i+1], "/"), Date: s.EffectiveDate}
		}
	}
	return node, nil
}

// Scalar resolves a key path to a plain numeric constant.
func (s *Set) Scalar(path ...string) (decimal.Decimal, error) {
	node, err := s.resolve(path)
	if err != nil {
		return decimal.Zero, err
	}
	d, err := toDecimal(node)
	if err != nil {
		return decimal.Zero, &ConfigurationError{Reason: fmt.Sprintf("parameter %s is not a scalar", strings.Join(path, "/")), Err: err}
	}
	return d, nil
}

// Regional resolves a key path that may be split by region. A node of the
// form {ost: x, west: y} is selected by the region tag; a plain scalar is
// returned as-is for either region.
func (s *Set) Regional(region domain.Region, path ...string) (decimal.Decimal, error) {
	node, err := s.resolve(path)
	if err != nil {
		return decimal.Zero, err
	}
	if m, ok := node.(map[string]interface{}); ok {
		key := "west"
		if region == domain.RegionEast {
			key = "ost"
		}
		v, ok := m[key]
		if !ok {
			return decimal.Zero, &MissingParameterError{Path: strings.Join(append(path, key), "/"), Date: s.EffectiveDate}
		}
		d, err := toDecimal(v)
		if err != nil {
			return decimal.Zero, &ConfigurationError{Reason: fmt.Sprintf("parameter %s/%s is not a scalar", strings.Join(path, "/"), key), Err: err}
		}
		return d, nil
	}
	d, err := toDecimal(node)
	if err != nil {
		return decimal.Zero, &ConfigurationError{Reason: fmt.Sprintf("parameter %s is not regional or scalar", strings.Join(path, "/")), Err: err}
	}
	return d, nil
}

// Piecewise resolves a key path to a validated piecewise polynomial spec.
func (s *Set) Piecewise(path ...string) (*piecewise.Spec, error) {
	node, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	m, ok := node.(map[string]interface{})
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("parameter %s is not a piecewise spec", strings.Join(path, "/"))}
	}
	spec, err := buildPiecewise(m)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("invalid piecewise spec at %s", strings.Join(path, "/")), Err: err}
	}
	return spec, nil
}

func buildPiecewise(m map[string]interface{}) (*piecewise.Spec, error) {
	thresholds, err := toFloats(m["thresholds"])
	if err != nil {
		return nil, fmt.Errorf("thresholds: %w", err)
	}
	// A "values" list is the shorthand for a flat step function: one
	// value applying from each threshold on, no rates or intercepts.
	if v, ok := m["values"]; ok {
		if _, hasRates := m["rates"]; hasRates {
			return nil, fmt.Errorf("values and rates are mutually exclusive")
		}
		values, err := toFloats(v)
		if err != nil {
			return nil, fmt.Errorf("values: %w", err)
		}
		return piecewise.Step(thresholds, values)
	}
	rates, err := toFloats(m["rates"])
	if err != nil {
		return nil, fmt.Errorf("rates: %w", err)
	}
	intercepts, err := toFloats(m["intercepts_at_lower_thresholds"])
	if err != nil {
		return nil, fmt.Errorf("intercepts_at_lower_thresholds: %w", err)
	}
	spec := &piecewise.Spec{
		Thresholds:                  thresholds,
		Rates:                       rates,
		InterceptsAtLowerThresholds: intercepts,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

func toFloats(node interface{}) ([]float64, error) {
	list, ok := node.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", node)
	}
	out := make([]float64, len(list))
	for i, v := range list {
		f, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		switch strings.ToLower(n) {
		case "-inf", "-.inf":
			return math.Inf(-1), nil
		case "inf", ".inf", "+inf":
			return math.Inf(1), nil
		}
		return 0, fmt.Errorf("non-numeric value %q", n)
	default:
		return 0, fmt.Errorf("non-numeric value of type %T", v)
	}
}

func toDecimal(v interface{}) (decimal.Decimal, error) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), nil
	case int:
		return decimal.NewFromInt(int64(n)), nil
	case int64:
		return decimal.NewFromInt(n), nil
	default:
		return decimal.Zero, fmt.Errorf("non-numeric value of type %T", v)
	}
}
