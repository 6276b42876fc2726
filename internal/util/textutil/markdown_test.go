package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanMarkdown(t *testing.T) {
	in := "# Rover\n\n![logo](/logo.png)\n- [Home](/)\n- [Pricing](/pricing)\n\n\n\nBook a [trusted walker](/walkers) today.   \n<!-- tracking -->\n<img src=\"x.png\">"
	assert.Equal(t, "# Rover\n\nBook a [trusted walker](/walkers) today.", CleanMarkdown(in))
}

func TestCleanMarkdownPlainTextUnchanged(t *testing.T) {
	assert.Equal(t, "Dog walking\nBook a walker today.", CleanMarkdown("Dog walking\nBook a walker today."))
}
