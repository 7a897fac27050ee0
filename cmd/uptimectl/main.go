// Command uptimectl edits the targets file used by the monitor.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/repo/yamlfile"
)

const usage = `usage:
  uptimectl add --name NAME --url URL [--config PATH]
  uptimectl list [--config PATH]
`

func main() {
	_ = godotenv.Load()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "config/targets.yml"
	}

	fs := pflag.NewFlagSet("uptimectl "+args[0], pflag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.StringP("config", "c", defaultPath, "path to the targets YAML file")

	switch args[0] {
	case "add":
		name := fs.String("name", "", "target name (required)")
		url := fs.String("url", "", "target URL (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if strings.TrimSpace(*name) == "" || strings.TrimSpace(*url) == "" {
			fmt.Fprintln(stderr, "--name and --url are required")
			return 2
		}
		return add(*path, domain.Target{Name: strings.TrimSpace(*name), URL: strings.TrimSpace(*url)}, stdout, stderr)

	case "list":
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		return list(*path, stdout, stderr)

	case "-h", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	}

	fmt.Fprintf(stderr, "unknown command %q\n%s", args[0], usage)
	return 2
}

func add(path string, t domain.Target, stdout, stderr io.Writer) int {
	if err := domain.ValidateURL(t.URL); err != nil {
		fmt.Fprintln(stderr, "invalid url:", err)
		return 1
	}
	reg, err := yamlfile.Load(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	next, ok := reg.WithTarget(t)
	if !ok {
		fmt.Fprintln(stderr, "Target already exists")
		return 1
	}
	if err := yamlfile.Save(path, next); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "Added target: %s -> %s\n", t.Name, t.URL)
	return 0
}

func list(path string, stdout, stderr io.Writer) int {
	reg, err := yamlfile.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(stderr, "%s does not exist\n", path)
		return 1
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "interval=%ds timeout=%ds\n", reg.IntervalSeconds, reg.TimeoutSeconds)
	for _, t := range reg.Targets {
		fmt.Fprintf(stdout, "%s\t%s\n", t.Name, t.URL)
	}
	return 0
}
