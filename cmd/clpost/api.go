package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/mastercactapus/clpost/config"
	"github.com/mastercactapus/clpost/post"
	"github.com/mastercactapus/clpost/sink"
)

const eventsChannel = "/events/translate"

type api struct {
	http.Handler
	cfg     *config.Config
	dataDir string
	log     *slog.Logger
	sse     *sse.Server
}

func newAPI(cfg *config.Config, dir string, logger *slog.Logger) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		cfg:     cfg,
		dataDir: dir,
		log:     logger,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(io.Discard, "", 0),
		}),
	}

	fs := http.FileServer(http.Dir(dir))
	r.PathPrefix("/data/").Handler(http.StripPrefix("/data", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case "GET", "HEAD":
			fs.ServeHTTP(w, req)
		case "PUT":
			a.putFile(w, req)
		case "DELETE":
			a.deleteFile(w, req)
		default:
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		}
	})))

	r.HandleFunc("/api/translate", a.translate).Methods("POST")
	r.HandleFunc("/api/process", a.process).Methods("POST")
	r.PathPrefix("/events/").Handler(a.sse)

	return a
}

func (a *api) Close() { a.sse.Shutdown() }

type event struct {
	post.Outcome
	Lines int `json:"lines"`
}

func (a *api) publish(o post.Outcome) {
	data, err := json.Marshal(event{Outcome: o, Lines: o.Stats.Lines})
	if err != nil {
		a.log.Error("marshal event", "err", err)
		return
	}
	a.sse.SendMessage(eventsChannel, sse.SimpleMessage(string(data)))
}

func safePath(base, name string) (bool, string) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		return false, ""
	}
	dir := string(base)
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return true, fullName
}

// options reads translation options from the query, falling back to the config.
func (a *api) options(req *http.Request) (post.Options, error) {
	opt := a.cfg.Options()
	opt.Logger = a.log

	var err error
	parse := func(param string, val *int) {
		s := req.FormValue(param)
		if err != nil || s == "" {
			return
		}
		*val, err = strconv.Atoi(s)
	}
	parse("numStart", &opt.LineStart)
	parse("numStep", &opt.LineStep)
	if s := req.FormValue("noComments"); s != "" {
		opt.NoComments = s == "1"
	}
	if err != nil {
		return opt, err
	}
	return opt, opt.Validate()
}

func (a *api) translate(w http.ResponseWriter, req *http.Request) {
	opt, err := a.options(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	out := &sink.Lines{}
	stats, err := post.Transform(req.Body, out, opt)
	o := post.Outcome{Source: "request", Stats: stats, Err: err}
	if err != nil {
		o.Error = err.Error()
	}
	a.publish(o)

	var cerr *post.CircleError
	if errors.As(err, &cerr) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		a.log.Error("translate", "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	for _, l := range out.Lines {
		buf.WriteString(l + "\n")
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(buf.Bytes())
}

func (a *api) process(w http.ResponseWriter, req *http.Request) {
	opt, err := a.options(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	dirOpt := a.cfg.DirOptions()
	dirOpt.Options = opt
	dirOpt.Force = req.FormValue("force") == "1"
	dirOpt.Recursive = req.FormValue("recursive") == "1"
	dirOpt.Done = a.publish

	res, err := post.ProcessDir(a.dataDir, dirOpt)
	if err != nil {
		a.log.Error("process", "dir", a.dataDir, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if res == nil {
		res = []post.Outcome{}
	}

	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(res)
	if err != nil {
		a.log.Error("encode", "err", err)
	}
}

func (a *api) putFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, req.URL.Path)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	err := os.MkdirAll(filepath.Dir(name), 0755)
	if err != nil {
		a.log.Error("create dir", "file", name, "err", err)
		http.Error(w, err.Error(), 500)
		return
	}
	f, err := os.Create(name)
	if err != nil {
		a.log.Error("create", "file", name, "err", err)
		http.Error(w, err.Error(), 500)
		return
	}
	defer f.Close()
	_, err = io.Copy(f, req.Body)
	if err != nil {
		a.log.Error("write", "file", name, "err", err)
		http.Error(w, err.Error(), 500)
		return
	}
}

func (a *api) deleteFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, req.URL.Path)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	err := os.Remove(name)
	if os.IsNotExist(err) {
		http.NotFound(w, req)
		return
	}
	if err != nil {
		a.log.Error("delete", "file", name, "err", err)
		http.Error(w, err.Error(), 500)
		return
	}
}
