package text

import (
	"bufio"
	"io"
	"strings"
	"text/template"

	"github.com/midbel/textwrap"
)

var funcs = template.FuncMap{
	"wrap": textwrap.Wrap,
	"join": strings.Join,
}

// New parses body as a template with the wrap and join helpers available.
func New(name, body string) *template.Template {
	return template.Must(template.New(name).Funcs(funcs).Parse(body))
}

// Execute renders tpl into w, dropping the empty lines produced by the
// template actions. A line holding a single dot is written as an empty
// line.
func Execute(tpl *template.Template, w io.Writer, ctx interface{}) error {
	var (
		pr, pw = io.Pipe()
		scan   = bufio.NewScanner(pr)
		errch  = make(chan error, 1)
	)
	defer pr.Close()

	go func() {
		err := tpl.Execute(pw, ctx)
		pw.CloseWithError(err)
		errch <- err
	}()
	for scan.Scan() {
		line := scan.Text()
		if line == "" {
			continue
		}
		if line == "." {
			line = ""
		}
		io.WriteString(w, line)
		io.WriteString(w, "\n")
	}
	if err := <-errch; err != nil {
		return err
	}
	return scan.Err()
}
