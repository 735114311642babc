package corpus

import (
	"bufio"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

const tokenArrayText = `0 0 1 0
2 0 0 0
3 0 0 1
1 1 1 0
4 1 0 0
4 1 0 0
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeTempGzip(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())
	return path
}

func TestLoadTokenArray(t *testing.T) {
	c, err := LoadTokenArray(writeTemp(t, "tokens.dat", tokenArrayText))
	require.NoError(t, err)

	assert.Equal(t, 6, c.N)
	assert.Equal(t, 2, c.D)
	assert.Equal(t, 5, c.W)
	assert.Equal(t, 5, c.NonStopwordN)
	assert.Equal(t, []int{0, 2, 3, 1, 4, 4}, c.Words)
	assert.Equal(t, []int{0, 0, 0, 1, 1, 1}, c.Documents)
	assert.Equal(t, []bool{true, false, false, true, false, false}, c.Toponyms)
	assert.Equal(t, []bool{false, false, true, false, false, false}, c.Stopwords)
	assert.Equal(t, []int{0, 3}, c.ToponymIdx)
}

func TestLoadTokenArrayGzip(t *testing.T) {
	c, err := LoadTokenArray(writeTempGzip(t, "tokens.dat.gz", tokenArrayText))
	require.NoError(t, err)
	assert.Equal(t, 6, c.N)
	assert.Equal(t, 2, c.D)
}

func TestLoadTokenArrayErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"short line", "0 0 0\n"},
		{"non-numeric", "0 x 0 0\n"},
		{"sparse documents", "0 0 0 0\n1 2 0 0\n"},
		{"decreasing documents", "0 1 0 0\n1 0 0 0\n"},
		{"negative document", "0 -1 0 0\n1 0 0 0\n"},
		{"negative word", "-3 0 0 0\n"},
		{"all stopwords", "0 0 0 1\n1 0 0 1\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadTokenArray(writeTemp(t, "tokens.dat", tc.text))
			assert.Error(t, err)
		})
	}
}

func TestLoadToponymCoordinates(t *testing.T) {
	lex, err := LoadToponymCoordinates(writeTemp(t, "coords.dat",
		"0 40.0 -74.0\n1 51.5 -0.1 35.0 139.7\n"))
	require.NoError(t, err)

	assert.Equal(t, 2, lex.T)
	assert.Equal(t, 3, lex.MaxCoord)
	require.Len(t, lex.Coordinates[0], 1)
	require.Len(t, lex.Coordinates[1], 2)
	for _, cands := range lex.Coordinates {
		for _, cand := range cands {
			assert.InDelta(t, 1, floats.Norm(cand, 2), 1e-12)
		}
	}
}

func TestLoadToponymCoordinatesErrors(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"missing longitude", "0 40.0\n"},
		{"unpaired coordinate", "0 40.0 -74.0 51.5\n"},
		{"non-numeric", "0 40.0 north\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadToponymCoordinates(writeTemp(t, "coords.dat", tc.text))
			assert.Error(t, err)
		})
	}
}

func TestWriteTokenArray(t *testing.T) {
	c, err := LoadTokenArray(writeTemp(t, "tokens.dat", tokenArrayText))
	require.NoError(t, err)

	dish := []int{3, 1, -1, 0, 2, 2}
	coordinate := []int{1, -1, -1, 0, -1, -1}
	path := filepath.Join(t.TempDir(), "resolved.dat.gz")
	require.NoError(t, WriteTokenArray(path, c, dish, coordinate))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	defer gz.Close()

	var lines []string
	sc := bufio.NewScanner(gz)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	require.Len(t, lines, c.N)
	assert.Equal(t, "0 0 1 0 3 1", lines[0])
	assert.Equal(t, "3 0 0 1 -1 -1", lines[2])
	assert.Equal(t, "4 1 0 0 2 -1", lines[5])
}
