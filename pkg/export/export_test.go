package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sample = Table{
	Title:   "Reports",
	Columns: []string{"Student", "Evaluation"},
	Rows: [][]string{
		{"سارة", "ممتاز"},
		{"أحمد", "جيد"},
	},
}

func TestCSVRendersHeaderAndRows(t *testing.T) {
	data, err := CSV(sample)
	require.NoError(t, err)
	assert.Equal(t, "Student,Evaluation\nسارة,ممتاز\nأحمد,جيد\n", string(data))
}

func TestTableValidation(t *testing.T) {
	_, err := CSV(Table{})
	assert.Error(t, err)

	_, err = CSV(Table{Columns: []string{"A", "B"}, Rows: [][]string{{"only-one"}}})
	assert.Error(t, err)
}

func TestPDFProducesDocument(t *testing.T) {
	data, err := PDF(sample)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestXLSXRoundTrip(t *testing.T) {
	data, err := XLSX(sample)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Student", "Evaluation"}, rows[0])
	assert.Equal(t, []string{"سارة", "ممتاز"}, rows[1])
}
