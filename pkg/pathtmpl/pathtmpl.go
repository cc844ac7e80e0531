// Package pathtmpl renders download destination paths from the
// configuration-declared template string.
package pathtmpl

import (
	"strings"

	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
)

// Render substitutes {name}-style placeholders in tmpl with values from
// subs. Referencing a placeholder absent from subs is an error; rendering is
// pure and creates no directories.
func Render(tmpl string, subs map[string]string) (string, error) {
	var out strings.Builder
	rest := tmpl
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		closing := strings.IndexByte(rest[open:], '}')
		if closing < 0 {
			out.WriteString(rest)
			return out.String(), nil
		}
		name := rest[open+1 : open+closing]
		value, ok := subs[name]
		if !ok {
			return "", pkgerrors.Wrapf(pkgerrors.ErrUnknownPlaceholder, "%q in template %q", name, tmpl)
		}
		out.WriteString(rest[:open])
		out.WriteString(value)
		rest = rest[open+closing+1:]
	}
}
