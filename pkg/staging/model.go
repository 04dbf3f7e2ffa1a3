package staging

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rytakahas/etl-demos/pkg/adapter"
)

type castKind int

const (
	castString castKind = iota
	castDate
	castNumeric
	castInt
)

// projection fixes both the casting rule and the output order of the canonical
// attributes, so generated models are deterministic for a given mapping.
var projection = []struct {
	attr string
	kind castKind
}{
	{"loan_id", castString},
	{"customer_id", castString},
	{"application_date", castDate},
	{"date_of_birth", castDate},
	{"loan_amount", castNumeric},
	{"asset_cost", castNumeric},
	{"ltv_ratio", castNumeric},
	{"employment_type", castString},
	{"gender", castString},
	{"state_id", castString},
	{"branch_id", castString},
	{"pincode_id", castString},
	{"product_id", castString},
	{"loan_default", castInt},
	{"credit_score", castInt},
}

// BuildModel renders a dbt staging model (a view) that selects from the named
// raw source and projects every canonical attribute present in the mapping.
// Attributes without a mapped column are left out entirely.
func BuildModel(mapping adapter.ColumnMapping, sourceName string) (string, error) {
	selectCols := make([]string, 0, len(mapping))
	for _, p := range projection {
		raw, ok := mapping[p.attr]
		if !ok {
			continue
		}
		selectCols = append(selectCols, "    "+castExpr(raw, p.attr, p.kind))
	}

	if len(selectCols) == 0 {
		return "", errors.New("no canonical attributes detected in the input header")
	}

	parts := []string{
		"{{ config(materialized='view') }}",
		"",
		"with src as (",
		fmt.Sprintf("  select * from {{ source('raw', '%s') }}", sourceName),
		"),",
		"",
		"transformed as (",
		"  select",
		strings.Join(selectCols, ",\n"),
		"  from src",
		")",
		"",
		"select * from transformed",
	}

	return strings.Join(parts, "\n"), nil
}

// castExpr renders the projection expression for one attribute. Date-like
// attributes follow a two-branch policy: a raw column whose name contains
// "days" holds a signed day offset from the processing date, anything else is
// parsed as a dd-mm-yy string, soft-failing to NULL via safe.parse_date.
func castExpr(rawColumn, attr string, kind castKind) string {
	switch kind {
	case castDate:
		if strings.Contains(strings.ToLower(rawColumn), "days") {
			return fmt.Sprintf("date_add(current_date(), interval cast(%s as int64) day) as %s", rawColumn, attr)
		}
		return fmt.Sprintf("safe.parse_date('%%d-%%m-%%y', cast(%s as string)) as %s", rawColumn, attr)
	case castNumeric:
		return fmt.Sprintf("cast(%s as numeric) as %s", rawColumn, attr)
	case castInt:
		return fmt.Sprintf("cast(%s as int64) as %s", rawColumn, attr)
	default:
		return fmt.Sprintf("cast(%s as string) as %s", rawColumn, attr)
	}
}

// TableStem derives the warehouse-safe stem of a CSV path: the lowercased file
// name without extension, hyphens and spaces replaced with underscores.
func TableStem(csvPath string) string {
	stem := filepath.Base(csvPath)
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))
	stem = strings.ToLower(stem)
	stem = strings.ReplaceAll(stem, "-", "_")
	return strings.ReplaceAll(stem, " ", "_")
}

func ModelName(csvPath string) string {
	return "stg_" + TableStem(csvPath)
}

func SourceName(csvPath string) string {
	return TableStem(csvPath) + "_raw"
}
