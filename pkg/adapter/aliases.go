package adapter

import (
	"strings"

	path2 "github.com/rytakahas/etl-demos/pkg/path"
	"github.com/spf13/afero"
)

// ColumnMapping maps a canonical attribute name to the raw column that was
// matched for it in a given header. Attributes with no matching alias are
// simply absent.
type ColumnMapping map[string]string

type aliasEntry struct {
	Attribute string   `yaml:"attribute"`
	Aliases   []string `yaml:"aliases"`
}

// AliasTable holds, per canonical attribute, the known raw column names from
// the supported datasets. Alias lists are ordered most specific first; the
// first alias present in a header wins.
type AliasTable struct {
	entries []aliasEntry
}

// DefaultAliases covers the Home Credit and vehicle-loan datasets plus a few
// generic column names seen in similar loan exports.
func DefaultAliases() *AliasTable {
	return &AliasTable{entries: []aliasEntry{
		{Attribute: "loan_id", Aliases: []string{"uniqueid", "sk_id_curr", "loan_id", "application_id", "contract_id"}},
		{Attribute: "customer_id", Aliases: []string{"uniqueid", "sk_id_curr", "customer_id", "client_id"}},
		{Attribute: "loan_amount", Aliases: []string{"disbursed_amount", "amt_credit", "loan_amount", "credit_amount"}},
		{Attribute: "asset_cost", Aliases: []string{"asset_cost", "amt_goods_price", "goods_price"}},
		{Attribute: "application_date", Aliases: []string{"disbursaldate", "days_decision", "application_date", "disbursal_date"}},
		{Attribute: "date_of_birth", Aliases: []string{"date_of_birth", "days_birth"}},
		{Attribute: "loan_default", Aliases: []string{"loan_default", "target", "default_flag"}},
		{Attribute: "employment_type", Aliases: []string{"employment_type", "name_income_type", "occupation_type"}},
		{Attribute: "gender", Aliases: []string{"code_gender", "gender"}},
		{Attribute: "state_id", Aliases: []string{"state_id", "region_rating_client"}},
		{Attribute: "branch_id", Aliases: []string{"branch_id", "dealer_id"}},
		{Attribute: "pincode_id", Aliases: []string{"current_pincode_id", "region_population_relative"}},
		{Attribute: "product_id", Aliases: []string{"manufacturer_id", "product_id", "name_contract_type"}},
		{Attribute: "credit_score", Aliases: []string{"perform_cns_score", "ext_source_1", "ext_source_2", "ext_source_3"}},
		{Attribute: "ltv_ratio", Aliases: []string{"ltv", "amt_credit_sum_debt"}},
	}}
}

// LoadAliases reads an alias table from a YAML file, a list of
// {attribute, aliases} entries. Declaration order is precedence order.
func LoadAliases(fs afero.Fs, path string) (*AliasTable, error) {
	var doc struct {
		Attributes []aliasEntry `yaml:"attributes"`
	}
	if err := path2.ReadYaml(fs, path, &doc); err != nil {
		return nil, err
	}

	return &AliasTable{entries: doc.Attributes}, nil
}

// Map resolves each canonical attribute against the header. Matching is
// case-insensitive and exact; the first alias found in the header wins.
// The result is a pure function of the header and the table.
func (t *AliasTable) Map(header []string) ColumnMapping {
	byLower := make(map[string]string, len(header))
	for _, col := range header {
		lower := strings.ToLower(col)
		if _, seen := byLower[lower]; !seen {
			byLower[lower] = col
		}
	}

	mapping := make(ColumnMapping)
	for _, entry := range t.entries {
		for _, alias := range entry.Aliases {
			if raw, ok := byLower[strings.ToLower(alias)]; ok {
				mapping[entry.Attribute] = raw
				break
			}
		}
	}

	return mapping
}

// Attributes returns the canonical attribute names in declaration order.
func (t *AliasTable) Attributes() []string {
	names := make([]string, 0, len(t.entries))
	for _, entry := range t.entries {
		names = append(names, entry.Attribute)
	}
	return names
}
