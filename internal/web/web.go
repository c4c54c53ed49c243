// Package web embeds the storefront page and its templates.
package web

import (
	"bytes"
	_ "embed"
	"io"
)

//go:embed index.html
var indexHTML []byte

// Index returns a fresh reader over the page markup.
func Index() io.Reader {
	return bytes.NewReader(indexHTML)
}
