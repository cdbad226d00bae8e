package problem

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderDescription_InlineMarkup(t *testing.T) {
	html := `<p>Given an array <code>nums</code>, return the <strong>maximum</strong> of 2<sup>n</sup> values, <em>in order</em>.</p>`
	got := RenderDescription(html)

	assert.Contains(t, got, "`nums`")
	assert.Contains(t, got, "**maximum**")
	assert.Contains(t, got, "2^n")
	assert.Contains(t, got, "*in order*")
}

func TestRenderDescription_Empty(t *testing.T) {
	assert.Equal(t, "No description available.", RenderDescription(""))
	assert.Equal(t, "No description available.", RenderDescription("   \n  "))
}

func TestRenderDescription_CollapsesBlankLines(t *testing.T) {
	html := "<p>First.</p>\n\n\n\n<p>Second.</p>"
	got := RenderDescription(html)
	assert.NotContains(t, got, "\n\n\n")
}

func TestRenderDescription_Truncates(t *testing.T) {
	html := "<p>" + strings.Repeat("a", previewLen+100) + "</p>"
	got := RenderDescription(html)

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Len(t, got, previewLen+3)
}

func TestTagNames_Dedup(t *testing.T) {
	wt := WithTags{Tags: []Tag{{Name: "Array"}, {Name: "Array"}, {Name: "Hash Table"}}}
	assert.Equal(t, []string{"Array", "Hash Table"}, wt.TagNames())
}
