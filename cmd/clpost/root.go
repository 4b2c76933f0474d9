package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mastercactapus/clpost/config"
	"github.com/mastercactapus/clpost/post"
	"github.com/mastercactapus/clpost/sink"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	configFile string
	verbose    int
	output     string

	cfg config.Config
}

const examples = `  transform a single file:
  clpost -o program.din program.ncl.1

  transform all files in directory "cncfiles":
  clpost cncfiles

  transform a single file to stdout:
  clpost program.ncl.1`

func newRootCmd() *cobra.Command {
	var f rootFlags
	cmd := &cobra.Command{
		Use:          "clpost [flags] FILE|DIR",
		Short:        "Transform CL files into DIN G-code",
		Example:      examples,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			return runTranslate(cmd, &f, cfg, args[0])
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configFile, "config", "", "TOML config file")
	pf.CountVarP(&f.verbose, "verbose", "v", "increase output verbosity")
	pf.BoolVarP(&f.cfg.NoComments, "no-comments", "c", false, "do not include comments")
	pf.IntVar(&f.cfg.NumStep, "num-steps", 1, "step size for line numbers")
	pf.IntVar(&f.cfg.NumStart, "num-start", 1, "start line numbers")

	fl := cmd.Flags()
	fl.BoolVarP(&f.cfg.Recursive, "recursive", "r", false, "recursive search for CL files")
	fl.BoolVarP(&f.cfg.Force, "force", "f", false, "overwrite generated G-code files")
	fl.StringVar(&f.cfg.Extension, "file-extension", post.DefaultExtension, "file extension of generated files")
	fl.StringVarP(&f.output, "output", "o", "", "G-code output file")

	cmd.AddCommand(newSendCmd(&f), newServeCmd(&f))
	return cmd
}

// load reads the config file and applies the flags given on the command line.
func (f *rootFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(f.configFile)
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("no-comments") {
		cfg.NoComments = f.cfg.NoComments
	}
	if changed("num-steps") {
		cfg.NumStep = f.cfg.NumStep
	}
	if changed("num-start") {
		cfg.NumStart = f.cfg.NumStart
	}
	if changed("recursive") {
		cfg.Recursive = f.cfg.Recursive
	}
	if changed("force") {
		cfg.Force = f.cfg.Force
	}
	if changed("file-extension") {
		cfg.Extension = f.cfg.Extension
	}
	return cfg, cfg.Validate()
}

func (f *rootFlags) logger(cmd *cobra.Command) *slog.Logger {
	return newLogger(cmd.ErrOrStderr(), f.verbose)
}

func runTranslate(cmd *cobra.Command, f *rootFlags, cfg *config.Config, name string) error {
	log := f.logger(cmd)

	info, err := os.Stat(name)
	if err != nil {
		return err
	}
	if info.IsDir() {
		if f.output != "" {
			log.Warn("ignoring output file " + f.output)
		}
		opt := cfg.DirOptions()
		opt.Logger = log
		res, err := post.ProcessDir(name, opt)
		if err != nil {
			return err
		}
		var failed int
		for _, o := range res {
			if o.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(res))
		}
		return nil
	}

	out, err := f.sink(cmd, log)
	if err != nil {
		return err
	}
	opt := cfg.Options()
	opt.Logger = log
	_, err = post.TransformFile(name, out, opt)
	return err
}

func (f *rootFlags) sink(cmd *cobra.Command, log *slog.Logger) (sink.Sink, error) {
	console := sink.NewConsole(cmd.OutOrStdout())
	if f.output == "" {
		if f.verbose > 0 {
			log.Warn("writing log and G-code to the terminal")
		}
		return console, nil
	}
	file, err := sink.NewFile(f.output)
	if err != nil {
		return nil, err
	}
	if f.verbose > 0 {
		return sink.NewDual(file, console), nil
	}
	return file, nil
}
