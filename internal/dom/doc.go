// Package dom is a small document model over golang.org/x/net/html: element
// lookup by CSS selectors, template cloning, text/attribute/class mutation
// and bubbling events. Views render into it; the UI host serializes it.
package dom
