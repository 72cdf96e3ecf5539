// Package catalog owns the master collection of course records: a single
// JSON array, loaded fully into memory, mutated by keyed upserts, and
// written back in full. Records are only ever created or merged into,
// never deleted.
package catalog

import (
	"fmt"
	"os"

	"course-catalog/internal/jsonval"
	"course-catalog/internal/merge"
)

type Catalog struct {
	courses *jsonval.List
	// index maps stringified course_id to position in courses.
	index map[string]int
}

func New() *Catalog {
	return &Catalog{courses: jsonval.NewList(), index: map[string]int{}}
}

// Load reads the master file. A missing file or a document that is not an
// array yields an empty catalog; a file that exists but does not parse is
// an error, because silently dropping accumulated data defeats the whole
// point of the store.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}

	v, err := jsonval.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: parse %s: %w", path, err)
	}

	list, ok := jsonval.AsList(v)
	if !ok {
		return New(), nil
	}

	c := &Catalog{courses: list, index: map[string]int{}}
	for i, it := range list.Items {
		obj, ok := jsonval.AsObject(it)
		if !ok {
			continue
		}
		key := jsonval.StringOf(obj.Field("course_id"))
		if key == "" {
			continue
		}
		if _, dup := c.index[key]; !dup {
			c.index[key] = i
		}
	}
	return c, nil
}

func (c *Catalog) Len() int { return c.courses.Len() }

// Courses exposes the backing list, primarily for export.
func (c *Catalog) Courses() *jsonval.List { return c.courses }

// Get returns the record for a course id, if present.
func (c *Catalog) Get(courseID string) (*jsonval.Object, bool) {
	idx, ok := c.index[courseID]
	if !ok {
		return nil, false
	}
	obj, ok := jsonval.AsObject(c.courses.Items[idx])
	return obj, ok
}

// Upsert merges incoming into the record with the same course_id, or
// appends it verbatim when the id is new. Not safe for concurrent use;
// the orchestrator applies upserts strictly sequentially.
func (c *Catalog) Upsert(incoming *jsonval.Object) {
	if incoming == nil {
		return
	}

	key := jsonval.StringOf(incoming.Field("course_id"))
	if key != "" {
		if idx, ok := c.index[key]; ok {
			if existing, ok := jsonval.AsObject(c.courses.Items[idx]); ok {
				merge.MergeCourse(existing, incoming)
				return
			}
		}
	}

	c.courses.Append(incoming)
	if key != "" {
		c.index[key] = c.courses.Len() - 1
	}
}

// Save rewrites the master file in full, indented. The write goes through
// a temp file and rename, which is atomic enough for the single-writer
// model this store assumes.
func (c *Catalog) Save(path string) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, jsonval.Encode(c.courses), 0o644); err != nil {
		return fmt.Errorf("catalog: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("catalog: rename %s: %w", tmp, err)
	}
	return nil
}
