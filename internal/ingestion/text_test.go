package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_Empty(t *testing.T) {
	assert.Equal(t, "", CleanText(""))
	assert.Equal(t, "", CleanText("   \n\t\n  "))
}

func TestCleanText_LineEndings(t *testing.T) {
	assert.Equal(t, "a\nb\nc", CleanText("a\r\nb\rc"))
}

func TestCleanText_TrailingWhitespace(t *testing.T) {
	assert.Equal(t, "heading\n- bullet", CleanText("heading   \n- bullet\t\t"))
}

func TestCleanText_CollapsesBlankRuns(t *testing.T) {
	in := "Experience\n\n\n\n- Built X\n\n- Shipped Y"
	assert.Equal(t, "Experience\n\n- Built X\n\n- Shipped Y", CleanText(in))
}

// Structure must survive cleaning: headings and bullets stay on their own lines.
func TestCleanText_PreservesStructure(t *testing.T) {
	in := "# Experience\n- Built X\n- Shipped Y\n\n# Education\n- BSc"
	assert.Equal(t, in, CleanText(in))
}

func TestCleanText_PreservesIndentation(t *testing.T) {
	in := "Experience\n  - nested bullet"
	assert.Equal(t, in, CleanText(in))
}
