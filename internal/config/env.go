package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"
)

// LoadEnvFile parses a dotenv-style file of KEY=VALUE lines. Blank lines,
// comments and lines without '=' are ignored; an "export " prefix and
// matching surrounding quotes are stripped.
func LoadEnvFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	vars := map[string]string{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || s[0] == '#' {
			continue
		}
		s = strings.TrimPrefix(s, "export ")
		key, val, ok := strings.Cut(s, "=")
		if !ok {
			continue
		}
		vars[strings.TrimSpace(key)] = stripQuotes(strings.TrimSpace(val))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning env file %s: %w", path, err)
	}
	return vars, nil
}

// ApplyEnvFile loads path and sets every variable not already present in
// the process environment. It returns the names it set.
func ApplyEnvFile(path string) ([]string, error) {
	vars, err := LoadEnvFile(path)
	if err != nil {
		return nil, err
	}
	var set []string
	for k, v := range vars {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return set, fmt.Errorf("setting %s: %w", k, err)
		}
		set = append(set, k)
	}
	return set, nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
