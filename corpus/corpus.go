// Package corpus loads the token array and toponym coordinate lexicon the
// sampler trains on, and writes the resolved assignments back out. Files
// are line-oriented text, gzip-compressed when the path ends in .gz.
package corpus

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/utcompling/textgrounder/sphere"
)

// Corpus holds the parallel token arrays. Words, documents and the two
// flag vectors are immutable after loading; dish and coordinate
// assignments live in the model.
type Corpus struct {
	Words     []int
	Documents []int
	Toponyms  []bool
	Stopwords []bool

	N            int // tokens
	W            int // vocabulary size over non-stopwords
	D            int // documents
	NonStopwordN int

	// ToponymIdx indexes the non-stopword toponym tokens, so likelihood
	// scans touch only the tokens that carry coordinates.
	ToponymIdx []int
}

func openReader(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening gzip stream %s", path)
	}
	return &gzipReadCloser{gz: gz, f: f}, nil
}

type gzipReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (r *gzipReadCloser) Read(p []byte) (int, error) { return r.gz.Read(p) }

func (r *gzipReadCloser) Close() error {
	if err := r.gz.Close(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// LoadTokenArray reads lines of "word document toponym stopword". Document
// ids must form a dense, non-decreasing 0-based sequence.
func LoadTokenArray(path string) (*Corpus, error) {
	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	c := &Corpus{}
	maxWord, maxDoc := -1, -1
	lineno := 0

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, errors.Errorf("%s:%d: expected 4 fields, got %d", path, lineno, len(fields))
		}
		rec := make([]int, 4)
		for i, fld := range fields {
			rec[i], err = strconv.Atoi(fld)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d: field %d", path, lineno, i)
			}
		}
		word, doc := rec[0], rec[1]
		istop, isstop := rec[2] != 0, rec[3] != 0

		if word < 0 {
			return nil, errors.Errorf("%s:%d: negative word id %d", path, lineno, word)
		}
		if doc < 0 {
			return nil, errors.Errorf("%s:%d: negative document id %d", path, lineno, doc)
		}
		if doc < maxDoc {
			return nil, errors.Errorf("%s:%d: document ids must be non-decreasing, got %d after %d", path, lineno, doc, maxDoc)
		}
		if doc > maxDoc+1 {
			return nil, errors.Errorf("%s:%d: document ids must be dense, got %d after %d", path, lineno, doc, maxDoc)
		}
		maxDoc = doc

		if !isstop {
			c.NonStopwordN++
			if word > maxWord {
				maxWord = word
			}
			if istop {
				c.ToponymIdx = append(c.ToponymIdx, len(c.Words))
			}
		}

		c.Words = append(c.Words, word)
		c.Documents = append(c.Documents, doc)
		c.Toponyms = append(c.Toponyms, istop)
		c.Stopwords = append(c.Stopwords, isstop)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(c.Words) == 0 {
		return nil, errors.Errorf("%s: empty token array", path)
	}
	if c.NonStopwordN == 0 {
		return nil, errors.Errorf("%s: every token is a stopword", path)
	}

	c.N = len(c.Words)
	c.W = maxWord + 1
	c.D = maxDoc + 1
	return c, nil
}

// Lexicon maps toponym vocabulary ids to their candidate coordinates,
// stored as cartesian unit vectors.
type Lexicon struct {
	Coordinates [][][]float64
	T           int
	// MaxCoord strides the flattened dish-by-candidate conditional; it
	// carries one column of padding past the longest candidate list.
	MaxCoord int
}

// LoadToponymCoordinates reads lines of "toponym lat long lat long ...".
func LoadToponymCoordinates(path string) (*Lexicon, error) {
	r, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	records := map[int][]float64{}
	maxTop := -1
	lineno := 0

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 || len(fields)%2 == 0 {
			return nil, errors.Errorf("%s:%d: expected a toponym id and lat/long pairs", path, lineno)
		}
		topid, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d: toponym id", path, lineno)
		}
		vals := make([]float64, len(fields)-1)
		for i, fld := range fields[1:] {
			vals[i], err = strconv.ParseFloat(fld, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "%s:%d: coordinate %d", path, lineno, i)
			}
		}
		records[topid] = vals
		if topid > maxTop {
			maxTop = topid
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if maxTop < 0 {
		return nil, errors.Errorf("%s: empty coordinate lexicon", path)
	}

	lex := &Lexicon{
		Coordinates: make([][][]float64, maxTop+1),
		T:           maxTop + 1,
	}
	for topid, vals := range records {
		cands := make([][]float64, len(vals)/2)
		for i := range cands {
			cands[i] = sphere.GeographicToCartesian(vals[2*i], vals[2*i+1])
		}
		lex.Coordinates[topid] = cands
		if len(cands) > lex.MaxCoord {
			lex.MaxCoord = len(cands)
		}
	}
	lex.MaxCoord++
	return lex, nil
}

func openWriter(path string) (io.WriteCloser, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating %s", path)
	}
	if strings.HasSuffix(path, ".gz") {
		return gzip.NewWriter(f), f, nil
	}
	return f, nil, nil
}

// WriteTokenArray writes the input columns plus the resolved dish and
// coordinate candidate index per token.
func WriteTokenArray(path string, c *Corpus, dish, coordinate []int) error {
	w, f, err := openWriter(path)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < c.N; i++ {
		istop, isstop := 0, 0
		if c.Toponyms[i] {
			istop = 1
		}
		if c.Stopwords[i] {
			isstop = 1
		}
		fmt.Fprintf(bw, "%d %d %d %d %d %d\n", c.Words[i], c.Documents[i], istop, isstop, dish[i], coordinate[i])
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}
	if err := w.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", path)
	}
	if f != nil {
		return f.Close()
	}
	return nil
}
