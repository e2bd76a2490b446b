package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderer_PlainWhenNotTerminal(t *testing.T) {
	buf := new(bytes.Buffer)
	r := NewRenderer(buf)

	r.Println(r.Styles().Header.Render("Report"))
	r.Printf("%s %d\n", r.Styles().Error.Render("failed"), 2)

	assert.Equal(t, "Report\nfailed 2\n", buf.String())
}

func TestRenderer_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	buf := new(bytes.Buffer)
	r := NewRenderer(buf)

	r.Println(r.Styles().Success.Render("ok"))
	assert.Equal(t, "ok\n", buf.String())
}
