// Package course reads the vocabulary courses shipped with the server.
//
// A catalog directory holds one subdirectory per language. Each course is a
// JSON object mapping a word to its frequency in the course material, in the
// order the words should be introduced. base.json is a JSON array with the
// starter vocabulary every learner begins with.
package course

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/heartmarshall/babble-backend/internal/domain"
)

const baseFile = "base.json"

// Course is one word list with its frequencies, in introduction order.
type Course struct {
	Name        string
	Words       []string
	Frequencies map[string]int
}

// TotalFrequency is the sum of all word frequencies.
func (c *Course) TotalFrequency() int {
	var total int
	for _, f := range c.Frequencies {
		total += f
	}
	return total
}

// Catalog loads courses lazily and caches them.
type Catalog struct {
	fsys fs.FS

	mu      sync.RWMutex
	courses map[string]*Course
}

// NewCatalog reads courses from dir.
func NewCatalog(dir string) *Catalog {
	return NewCatalogFS(os.DirFS(dir))
}

// NewCatalogFS reads courses from fsys.
func NewCatalogFS(fsys fs.FS) *Catalog {
	return &Catalog{fsys: fsys, courses: make(map[string]*Course)}
}

// List returns the course names available for lang, sorted.
func (c *Catalog) List(lang string) ([]string, error) {
	entries, err := fs.ReadDir(c.fsys, lang)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list courses %s: %w", lang, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == baseFile || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	slices.Sort(names)
	return names, nil
}

// BaseWords returns the starter vocabulary for lang. A language without
// base.json starts empty.
func (c *Catalog) BaseWords(lang string) ([]string, error) {
	data, err := fs.ReadFile(c.fsys, path.Join(lang, baseFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read base words %s: %w", lang, err)
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("decode base words %s: %w", lang, err)
	}
	return words, nil
}

// Get returns a course, or domain.ErrNotFound.
func (c *Catalog) Get(lang, name string) (*Course, error) {
	if !validName(lang) || !validName(name) || name+".json" == baseFile {
		return nil, fmt.Errorf("course %s/%s: %w", lang, name, domain.ErrNotFound)
	}

	key := lang + "/" + name
	c.mu.RLock()
	cached, ok := c.courses[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	f, err := c.fsys.Open(path.Join(lang, name+".json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("course %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("open course %s: %w", key, err)
	}
	defer f.Close()

	course, err := decodeCourse(name, f)
	if err != nil {
		return nil, fmt.Errorf("decode course %s: %w", key, err)
	}

	c.mu.Lock()
	c.courses[key] = course
	c.mu.Unlock()
	return course, nil
}

// Words returns the course words in introduction order.
func (c *Catalog) Words(lang, name string) ([]string, error) {
	course, err := c.Get(lang, name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(course.Words), nil
}

// Frequencies returns the word frequencies of a course.
func (c *Catalog) Frequencies(lang, name string) (map[string]int, error) {
	course, err := c.Get(lang, name)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(course.Frequencies))
	for w, f := range course.Frequencies {
		out[w] = f
	}
	return out, nil
}

// NewWords returns up to n course words not in known, in course order.
func (c *Catalog) NewWords(lang, name string, known domain.WordSet, n int) ([]string, error) {
	course, err := c.Get(lang, name)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, min(max(n, 0), len(course.Words)))
	for _, w := range course.Words {
		if len(out) >= n {
			break
		}
		if !known.Contains(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

// decodeCourse reads a JSON object keeping key order.
func decodeCourse(name string, r io.Reader) (*Course, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	course := &Course{Name: name, Frequencies: make(map[string]int)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		word, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected word, got %v", tok)
		}
		var freq int
		if err := dec.Decode(&freq); err != nil {
			return nil, fmt.Errorf("frequency of %q: %w", word, err)
		}
		if _, dup := course.Frequencies[word]; !dup {
			course.Words = append(course.Words, word)
		}
		course.Frequencies[word] = freq
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return course, nil
}

func validName(s string) bool {
	return s != "" && !strings.ContainsAny(s, `/\`) && s != "." && s != ".."
}
