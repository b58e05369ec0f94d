package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/go-kit/log/level"
	"github.com/midbel/cli"

	"github.com/midbel/taintkit/internal/logging"
	"github.com/midbel/taintkit/text"
)

const summary = `taintkit gathers the helpers of the hardening toolchain: it reports the
relocations of an ELF binary as flags for the build step, and turns the
shadow memory dumps of the taint tracer into images.`

const helpText = `{{wrap .Summary}}
.
Usage:
.
  {{.Name}} command [arguments]
.
The commands are:
.
{{range .Commands}}{{printf "  %-9s %s" .String .Short}}
{{end}}
.
Use {{.Name}} [command] -h for more information about its usage.
`

var commands = []*cli.Command{
	{
		Usage: "relocs [-e <env-file>] [-always-plt] [-split] <elf>",
		Short: "print relocation offsets of an ELF binary as build flags",
		Alias: []string{"relocations"},
		Run:   runRelocs,
	},
	{
		Usage: "vis [-d <directory>] [-a <archive>] [-no-merge] [-tracer] [-rows <n>] <dump,...>",
		Short: "render taint dumps as 1-bit PNG images",
		Alias: []string{"visualize", "render"},
		Run:   runVis,
	},
}

func main() {
	if err := cli.Run(commands, usage); err != nil {
		logger := logging.New(os.Stderr, false)
		level.Error(logger).Log("err", err)
		os.Exit(1)
	}
}

func usage() {
	help(os.Stderr)
	os.Exit(2)
}

func help(w io.Writer) error {
	data := struct {
		Name     string
		Summary  string
		Commands []*cli.Command
	}{
		Name:     filepath.Base(os.Args[0]),
		Summary:  summary,
		Commands: commands,
	}
	return text.Execute(text.New("help", helpText), w, data)
}
