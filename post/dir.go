package post

import (
	"os"
	"path/filepath"

	"github.com/mastercactapus/clpost/resolve"
	"github.com/mastercactapus/clpost/sink"
)

// DefaultExtension is used for targets when DirOptions.Extension is empty.
const DefaultExtension = "din"

// DirOptions configure translating every CL file of a directory.
type DirOptions struct {
	Options

	Extension string
	Force     bool
	Recursive bool

	// Done, if set, is called after each file.
	Done func(Outcome)
}

// Outcome is the result for one resolved file.
type Outcome struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Skipped bool   `json:"skipped,omitempty"`
	Stats   Stats  `json:"stats"`
	Err     error  `json:"-"`
	Error   string `json:"error,omitempty"`
}

// ProcessDir translates the newest revision of every CL file in dir to
// <base>.<extension>. Existing targets are skipped unless Force is set.
// A failed file does not stop the others; the returned error is only set
// when the directory could not be scanned.
func ProcessDir(dir string, opt DirOptions) ([]Outcome, error) {
	err := opt.Validate()
	if err != nil {
		return nil, err
	}
	if opt.Extension == "" {
		opt.Extension = DefaultExtension
	}
	log := opt.logger()
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = dir
	}
	log.Info("searching in directory", "dir", abs, "recursive", opt.Recursive)

	cands, err := resolve.Scan(dir, opt.Recursive)
	if err != nil {
		return nil, err
	}
	log.Debug("file list", "files", cands)

	todo := resolve.Latest(cands)
	log.Debug("todo list", "files", todo)
	if len(todo) == 0 {
		log.Warn("could not find any CL file", "dir", abs)
		return nil, nil
	}

	res := make([]Outcome, 0, len(todo))
	for _, c := range todo {
		o := processOne(c, opt)
		if o.Err != nil {
			o.Error = o.Err.Error()
			log.Error("translation failed", "file", o.Source, "err", o.Err)
		}
		if opt.Done != nil {
			opt.Done(o)
		}
		res = append(res, o)
	}
	return res, nil
}

func processOne(c resolve.Candidate, opt DirOptions) Outcome {
	log := opt.logger()
	o := Outcome{Source: c.Path, Target: c.Target(opt.Extension)}

	if !opt.Force {
		if _, err := os.Stat(o.Target); err == nil {
			log.Warn("target exists, skipping", "target", o.Target, "source", c.Path)
			o.Skipped = true
			return o
		}
	}

	log.Info("processing file", "source", c.Path, "target", o.Target)
	out, err := sink.NewFile(o.Target)
	if err != nil {
		o.Err = err
		return o
	}
	o.Stats, o.Err = TransformFile(c.Path, out, opt.Options)
	return o
}
