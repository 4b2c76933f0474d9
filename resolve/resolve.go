// Package resolve picks the newest revision of each CL file in a directory.
//
// CAM systems write successive exports of a program as <base>.ncl.1,
// <base>.ncl.2 and so on; only the highest revision is translated.
package resolve

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var rxCLFile = regexp.MustCompile(`^(.+)\.ncl\.(\d+)$`)

// Candidate is one revision of a CL file.
type Candidate struct {
	Path     string
	Base     string // Path without the .ncl.<revision> suffix
	Revision int
}

// Target is the output path for the candidate, <base>.<extension>.
func (c Candidate) Target(extension string) string {
	return c.Base + "." + extension
}

// Parse splits a file name into base name and revision.
func Parse(name string) (base string, revision int, ok bool) {
	m := rxCLFile.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	revision, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], revision, true
}

func candidate(dir, name string) (Candidate, bool) {
	base, rev, ok := Parse(name)
	if !ok {
		return Candidate{}, false
	}
	return Candidate{
		Path:     filepath.Join(dir, name),
		Base:     filepath.Join(dir, base),
		Revision: rev,
	}, true
}

// Scan lists all candidates in dir, descending into subdirectories if
// recursive is set. Results are in lexical walk order.
func Scan(dir string, recursive bool) ([]Candidate, error) {
	var res []Candidate
	if !recursive {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if c, ok := candidate(dir, e.Name()); ok {
				res = append(res, c)
			}
		}
		return res, nil
	}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if c, ok := candidate(filepath.Dir(path), d.Name()); ok {
			res = append(res, c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Latest keeps the highest revision of every base name, in the order each
// base name first appears. On equal revisions the first one wins.
func Latest(cands []Candidate) []Candidate {
	done := make(map[string]bool, len(cands))
	var res []Candidate
	for _, c := range cands {
		if done[c.Base] {
			continue
		}
		max := c
		for _, o := range cands {
			if o.Base == c.Base && o.Revision > max.Revision {
				max = o
			}
		}
		done[c.Base] = true
		res = append(res, max)
	}
	return res
}
