package staging

import (
	"strings"
	"testing"

	"github.com/rytakahas/etl-demos/pkg/adapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildModel(t *testing.T) {
	t.Parallel()

	t.Run("home credit header produces the full model", func(t *testing.T) {
		t.Parallel()

		mapping := adapter.DefaultAliases().Map([]string{"SK_ID_CURR", "AMT_CREDIT", "DAYS_BIRTH", "TARGET"})

		got, err := BuildModel(mapping, "application_train_raw")
		require.NoError(t, err)

		expected := `{{ config(materialized='view') }}

with src as (
  select * from {{ source('raw', 'application_train_raw') }}
),

transformed as (
  select
    cast(SK_ID_CURR as string) as loan_id,
    cast(SK_ID_CURR as string) as customer_id,
    date_add(current_date(), interval cast(DAYS_BIRTH as int64) day) as date_of_birth,
    cast(AMT_CREDIT as numeric) as loan_amount,
    cast(TARGET as int64) as loan_default
  from src
)

select * from transformed`

		assert.Equal(t, expected, got)
	})

	t.Run("day-offset rule applies to raw columns containing days", func(t *testing.T) {
		t.Parallel()

		got, err := BuildModel(adapter.ColumnMapping{"application_date": "DAYS_DECISION"}, "src_raw")
		require.NoError(t, err)
		assert.Contains(t, got, "date_add(current_date(), interval cast(DAYS_DECISION as int64) day) as application_date")
	})

	t.Run("string dates are parsed as dd-mm-yy with soft failure", func(t *testing.T) {
		t.Parallel()

		got, err := BuildModel(adapter.ColumnMapping{"application_date": "DisbursalDate"}, "src_raw")
		require.NoError(t, err)
		assert.Contains(t, got, "safe.parse_date('%d-%m-%y', cast(DisbursalDate as string)) as application_date")
	})

	t.Run("unmapped attributes never appear in the projection", func(t *testing.T) {
		t.Parallel()

		got, err := BuildModel(adapter.ColumnMapping{"loan_amount": "AMT_CREDIT"}, "src_raw")
		require.NoError(t, err)

		assert.NotContains(t, got, "loan_id")
		assert.NotContains(t, got, "gender")
		assert.NotContains(t, got, "null")
	})

	t.Run("empty mapping is an error", func(t *testing.T) {
		t.Parallel()

		_, err := BuildModel(adapter.ColumnMapping{}, "src_raw")
		require.Error(t, err)
	})

	t.Run("repeated builds are identical", func(t *testing.T) {
		t.Parallel()

		mapping := adapter.DefaultAliases().Map([]string{"UniqueID", "disbursed_amount", "DisbursalDate", "ltv", "branch_id", "loan_default"})

		first, err := BuildModel(mapping, "vehicle_loans_raw")
		require.NoError(t, err)

		for i := 0; i < 5; i++ {
			again, err := BuildModel(mapping, "vehicle_loans_raw")
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("vehicle loan casts", func(t *testing.T) {
		t.Parallel()

		mapping := adapter.DefaultAliases().Map([]string{"UniqueID", "disbursed_amount", "ltv", "branch_id", "loan_default", "PERFORM_CNS_SCORE"})

		got, err := BuildModel(mapping, "vehicle_loans_raw")
		require.NoError(t, err)

		assert.Contains(t, got, "cast(disbursed_amount as numeric) as loan_amount")
		assert.Contains(t, got, "cast(ltv as numeric) as ltv_ratio")
		assert.Contains(t, got, "cast(branch_id as string) as branch_id")
		assert.Contains(t, got, "cast(loan_default as int64) as loan_default")
		assert.Contains(t, got, "cast(PERFORM_CNS_SCORE as int64) as credit_score")

		lines := strings.Split(got, "\n")
		assert.Equal(t, "{{ config(materialized='view') }}", lines[0])
		assert.Equal(t, "select * from transformed", lines[len(lines)-1])
	})
}

func TestNames(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "vehicle_loans_train", TableStem("data/Vehicle-Loans Train.csv"))
	assert.Equal(t, "stg_application_train", ModelName("/data/application_train.csv"))
	assert.Equal(t, "application_train_raw", SourceName("/data/application_train.csv"))
}
