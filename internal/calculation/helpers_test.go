package calculation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mikrosim/taxben/internal/params"
)

// testParamsYAML is a compact but complete parameter table for tests:
// retirement ages rise from 65 (pre-1947 cohorts) by a month per year to
// 67 (1964 on), the women's track sits at 63 for old cohorts, and the
// deduction phase-in climbs from 60% in 2005 to 100% in 2025.
const testParamsYAML = `
parameter_sets:
  - effective_date: "2004-01-01"
    ges_rente:
      regelaltersgrenze:
        thresholds: [-inf, 1947, 1964]
        rates: [0, 0.08333333333333333, 0]
        intercepts_at_lower_thresholds: [65, 65, 67]
      altersrente_fuer_frauen:
        thresholds: [-inf, 1952]
        rates: [0, 0]
        intercepts_at_lower_thresholds: [63, 67]
      zugangsfaktor_veraenderung_pro_jahr:
        vorzeitiger_renteneintritt: 0.036
        spaeterer_renteneintritt: 0.06
      umrechnung_entgeltp_beitrittsgebiet: 1.07
      beitragspflichtiges_durchschnittsentgelt: 36000
      rentenwert:
        ost: 33.23
        west: 34.19
      rentenwert_vorjahr:
        ost: 32.38
        west: 33.05
    soz_vers_beitr:
      beitr_bemess_grenze_m:
        ges_rentenv:
          ost: 6450
          west: 6900
        ges_krankenv:
          ost: 4837.50
          west: 4837.50
    eink_st_abzuege:
      einfuehrungsfaktor_vorsorgeaufw_alter:
        thresholds: [-inf, 2005, 2025]
        rates: [0, 0.02, 0]
        intercepts_at_lower_thresholds: [0.6, 0.6, 1.0]
      vorsorge_altersaufw_max: 25046
      vorsorge_sonstige_aufw_max: 1900
      vorsorge_kranken_minderung: 0.04
      vorsorge_2004_grundhoechstbetrag: 1334
      vorsorge_2004_vorwegabzug: 3068
      vorsorge_2004_kuerzung_vorwegabzug: 0.16
    arbeitsl_geld_2:
      regelsatz: 446
`

func testSet(t *testing.T) *params.Set {
	t.Helper()
	table, err := params.Load([]byte(testParamsYAML))
	require.NoError(t, err)
	set, err := table.At(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return set
}

func testTable(t *testing.T) *params.Table {
	t.Helper()
	table, err := params.Load([]byte(testParamsYAML))
	require.NoError(t, err)
	return table
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimalEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}
