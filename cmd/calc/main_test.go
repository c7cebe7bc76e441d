package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dinner = `{
  "version": 1,
  "title": "Dinner",
  "people": [
    {"id": "a", "name": "Ann"},
    {"id": "b", "name": "Ben"},
    {"id": "c", "name": "Cat"}
  ],
  "items": [
    {"id": "i1", "name": "Pizza", "priceCents": 1200, "participantIds": ["a", "b", "c"]},
    {"id": "i2", "name": "Cake", "priceCents": 300, "participantIds": []}
  ],
  "service": {"kind": "percent", "value": 10}
}`

func TestRun_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bill.json")
	require.NoError(t, os.WriteFile(path, []byte(dinner), 0o600))

	var out bytes.Buffer
	require.NoError(t, run([]string{"-f", path}, nil, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "Ann")
	assert.Contains(t, lines[1], "4.40")
	assert.Contains(t, lines[4], "Unassigned")
	assert.Contains(t, lines[4], "3.00")
	assert.Contains(t, lines[5], "13.20")
}

func TestRun_Stdin(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, strings.NewReader(dinner), &out))
	assert.Contains(t, out.String(), "Cat")
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer

	err := run([]string{"-f", filepath.Join(t.TempDir(), "missing.json")}, nil, &out)
	assert.Error(t, err)

	err = run(nil, strings.NewReader(`{"title": "no arrays"}`), &out)
	assert.Error(t, err)
}
