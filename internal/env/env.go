package env

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// BindNow is the variable the dynamic loader reads to resolve every PLT
// slot at load time.
const BindNow = "LD_BIND_NOW"

// Load parses KEY=VALUE lines. Blank lines and lines starting with # are
// skipped; values may be wrapped in single or double quotes.
func Load(r io.Reader) (map[string]string, error) {
	return parse(r)
}

// Bool reports whether value turns a loader switch on. Only "1" does, as
// for the dynamic loader itself.
func Bool(value string) bool {
	return strings.TrimSpace(value) == "1"
}

// Lookup returns the value of key, preferring values over the process
// environment.
func Lookup(values map[string]string, key string) string {
	if v, ok := values[key]; ok {
		return v
	}
	return os.Getenv(key)
}

func parse(r io.Reader) (map[string]string, error) {
	var (
		list = make(map[string]string)
		scan = bufio.NewScanner(r)
		num  int
	)
	for scan.Scan() {
		num++
		line := strings.TrimSpace(scan.Text())
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		key, value, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", num, err)
		}
		list[key] = value
	}
	return list, scan.Err()
}

func parseLine(line string) (string, string, error) {
	k, v, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", fmt.Errorf("value should be separated from key by equal sign")
	}
	k = strings.TrimSpace(strings.TrimPrefix(k, "export "))
	if k == "" {
		return "", "", fmt.Errorf("empty key")
	}
	v, err := parseValue(strings.TrimSpace(v))
	if err != nil {
		return "", "", err
	}
	return k, v, nil
}

func parseValue(value string) (string, error) {
	if len(value) < 2 {
		return value, nil
	}
	switch value[0] {
	case '"':
		return strconv.Unquote(value)
	case '\'':
		if value[len(value)-1] != '\'' {
			return "", fmt.Errorf("unterminated quoted value")
		}
		return value[1 : len(value)-1], nil
	default:
		return value, nil
	}
}
