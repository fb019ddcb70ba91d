package prices

import (
	"math"
	"testing"
	"time"

	"github.com/aristath/tearsheet/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func bars(closes map[int]float64) []Bar {
	out := make([]Bar, 0, len(closes))
	for d, c := range closes {
		out = append(out, Bar{Date: day(d), Open: c, High: c, Low: c, Close: c, Volume: 100})
	}
	return out
}

func TestMerge_OuterJoin(t *testing.T) {
	table, err := Merge([]SymbolData{
		{Symbol: "REE", Bars: bars(map[int]float64{2: 50, 3: 51, 4: 52})},
		{Symbol: "FMC", Bars: bars(map[int]float64{3: 40, 5: 41})},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"}, table.Time)
	assert.Len(t, table.Columns, 10)

	ree := table.Columns["REE_close"]
	assert.Equal(t, 50.0, ree[0])
	assert.True(t, math.IsNaN(ree[3]))

	fmc := table.Columns["FMC_close"]
	assert.True(t, math.IsNaN(fmc[0]))
	assert.Equal(t, 40.0, fmc[1])
	assert.Equal(t, 100.0, table.Columns["FMC_volume"][1])
}

func TestMerge_SkipsEmptySymbols(t *testing.T) {
	table, err := Merge([]SymbolData{
		{Symbol: "REE", Bars: bars(map[int]float64{2: 50})},
		{Symbol: "DHC"},
	})
	require.NoError(t, err)
	assert.True(t, table.HasColumn("REE_close"))
	assert.False(t, table.HasColumn("DHC_close"))
}

func TestMerge_AllEmpty(t *testing.T) {
	_, err := Merge([]SymbolData{{Symbol: "REE"}, {Symbol: "DHC"}})
	require.Error(t, err)
	assert.Equal(t, domain.KindDataFetch, domain.KindOf(err))
	assert.Equal(t, MsgNoData, err.Error())
}

func TestNormalize_ProjectsAndSorts(t *testing.T) {
	raw := &RawTable{
		Time: []string{"2024-01-03", "2024-01-02 00:00:00", "2024-01-04T00:00:00Z"},
		Columns: map[string][]float64{
			"REE_close":  {51, 50, 52},
			"REE_open":   {1, 1, 1},
			"FMC_close":  {40, math.NaN(), 41},
			"FMC_volume": {9, 9, 9},
		},
	}

	table, err := Normalize(raw, []string{"FMC", "REE"})
	require.NoError(t, err)

	assert.Equal(t, []time.Time{day(2), day(3), day(4)}, table.Dates)
	assert.Equal(t, []string{"FMC", "REE"}, table.Symbols)

	ree, ok := table.Column("REE")
	require.True(t, ok)
	assert.Equal(t, []float64{50, 51, 52}, ree)

	fmc, _ := table.Column("FMC")
	assert.True(t, math.IsNaN(fmc[0]))
	assert.False(t, table.Complete(0))
	assert.True(t, table.Complete(1))
}

func TestNormalize_MissingCloseColumn(t *testing.T) {
	raw := &RawTable{
		Time: []string{"2024-01-02"},
		Columns: map[string][]float64{
			"REE_close": {50},
			"FMC_close": {40},
			"DHC_open":  {30},
		},
	}

	_, err := Normalize(raw, []string{"REE", "FMC", "DHC"})
	require.Error(t, err)
	assert.Equal(t, domain.KindDataFetch, domain.KindOf(err))
	assert.Equal(t, "Missing columns in combined data: [DHC_close]", err.Error())
}

func TestNormalize_MissingTimeColumn(t *testing.T) {
	raw := &RawTable{Columns: map[string][]float64{"REE_close": {50}}}

	_, err := Normalize(raw, []string{"REE"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[time]")
}

func TestNormalize_RejectsDuplicateTimestamps(t *testing.T) {
	raw := &RawTable{
		Time:    []string{"2024-01-02", "2024-01-02 00:00:00"},
		Columns: map[string][]float64{"REE_close": {50, 51}},
	}

	_, err := Normalize(raw, []string{"REE"})
	require.Error(t, err)
	assert.Equal(t, domain.KindDataFetch, domain.KindOf(err))
	assert.Contains(t, err.Error(), "Duplicate timestamp")
}

func TestNormalize_RejectsBadTimestamp(t *testing.T) {
	raw := &RawTable{
		Time:    []string{"02/01/2024"},
		Columns: map[string][]float64{"REE_close": {50}},
	}

	_, err := Normalize(raw, []string{"REE"})
	require.Error(t, err)
	assert.Equal(t, domain.KindDataFetch, domain.KindOf(err))
}

func TestNormalize_RejectsRaggedColumn(t *testing.T) {
	raw := &RawTable{
		Time:    []string{"2024-01-02", "2024-01-03"},
		Columns: map[string][]float64{"REE_close": {50}},
	}

	_, err := Normalize(raw, []string{"REE"})
	require.Error(t, err)
	assert.Equal(t, domain.KindDataFetch, domain.KindOf(err))
}

func TestMergeThenNormalize(t *testing.T) {
	raw, err := Merge([]SymbolData{
		{Symbol: "REE", Bars: bars(map[int]float64{4: 52, 2: 50, 3: 51})},
	})
	require.NoError(t, err)

	table, err := Normalize(raw, []string{"REE"})
	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	ree, _ := table.Column("REE")
	assert.Equal(t, []float64{50, 51, 52}, ree)
}
