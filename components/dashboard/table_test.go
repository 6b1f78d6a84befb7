package dashboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTableMarket(t *testing.T) {
	table := BuildTable(DefaultFixtures().Dataset(DataTypeMarket))
	assert.Equal(t, []string{"Product", "Price", "Change", "Volume"}, table.Headers())
	require.Len(t, table.Rows, 6)

	assert.Equal(t, Cell{Text: "Wheat (ton)"}, table.Rows[0][0])
	assert.Equal(t, Cell{Text: "+5.2", Class: classPositive}, table.Rows[0][2])
	assert.Equal(t, Cell{Text: "-2.1", Class: classNegative}, table.Rows[1][2])
	assert.Equal(t, "3.5", table.Rows[5][1].Text)
}

func TestFormatSignedChange(t *testing.T) {
	cases := []struct {
		value Value
		want  Cell
	}{
		{NumberValue(0), Cell{Text: "+0", Class: classPositive}},
		{NumberValue(math.Copysign(0, -1)), Cell{Text: "+0", Class: classPositive}},
		{NumberValue(12.5), Cell{Text: "+12.5", Class: classPositive}},
		{NumberValue(-0.25), Cell{Text: "-0.25", Class: classNegative}},
		{StringValue("n/a"), Cell{Text: "n/a"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCell("change", tc.value), tc.value.String())
	}
	assert.Equal(t, Cell{Text: "12"}, FormatCell("price", NumberValue(12)))
}

func TestBuildTableUsesFirstRecordSchema(t *testing.T) {
	ds := Dataset{Type: DataTypeMarket, Records: []Record{
		NewRecord(Field{Name: "product", Value: StringValue("Wheat")}, Field{Name: "change", Value: NumberValue(1)}),
		NewRecord(Field{Name: "change", Value: NumberValue(-1)}, Field{Name: "extra", Value: StringValue("x")}),
	}}
	table := BuildTable(ds)
	assert.Equal(t, []string{"Product", "Change"}, table.Headers())
	require.Len(t, table.Rows, 2)
	assert.True(t, table.Rows[1][0].Missing)
	assert.Equal(t, "-1", table.Rows[1][1].Text)
	assert.Len(t, table.Rows[1], 2)
}

func TestBuildTableEmpty(t *testing.T) {
	table := BuildTable(Dataset{})
	assert.Empty(t, table.Columns)
	assert.Empty(t, table.Rows)
	assert.NotNil(t, table.Rows)
}

func TestHeaderLabelUpperCasesFirstRune(t *testing.T) {
	cases := map[string]string{
		"":         "",
		"yield":    "Yield",
		"émission": "Émission",
		"ñandú":    "Ñandú",
		"9am":      "9am",
	}
	for in, want := range cases {
		assert.Equal(t, want, headerLabel(in), in)
	}
	table := BuildTable(Dataset{Records: []Record{NewRecord(
		Field{Name: "émission", Value: NumberValue(1)},
		Field{Name: "change", Value: NumberValue(2)},
	)}})
	assert.Equal(t, []string{"Émission", "Change"}, table.Headers())
}
