package output

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, map[string]int{"count": 2}))
	assert.Equal(t, "{\n  \"count\": 2\n}\n", buf.String())
}

func TestTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	w := Table(&buf)
	fmt.Fprintln(w, "ID\tNAME")
	fmt.Fprintln(w, "10\tAnn")
	require.NoError(t, w.Flush())
	assert.Equal(t, "ID  NAME\n10  Ann\n", buf.String())
}

func TestWarn(t *testing.T) {
	var buf bytes.Buffer
	Warn(&buf, "%d records skipped", 3)
	assert.Equal(t, "Warning: 3 records skipped\n", buf.String())
}
