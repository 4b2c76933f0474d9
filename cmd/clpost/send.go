package main

import (
	"errors"
	"time"

	"github.com/mastercactapus/clpost/grbl"
	"github.com/mastercactapus/clpost/post"
	"github.com/mastercactapus/clpost/sink"
	"github.com/mastercactapus/clpost/spjs"
	"github.com/spf13/cobra"
)

func newSendCmd(root *rootFlags) *cobra.Command {
	var (
		port    string
		baud    int
		spjsURL string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "send [flags] FILE",
		Short: "Transform a CL file and stream the G-code to a machine",
		Long: `Transform a CL file and stream the G-code to a Grbl controller,
either on a local serial port (--port) or through a Serial Port JSON Server
(--spjs with --port naming the bridge's port).`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			log := root.logger(cmd)
			changed := cmd.Flags().Changed

			var out sink.Sink
			url := cfg.SPJS.URL
			if changed("spjs") {
				url = spjsURL
			}
			if url != "" {
				name := cfg.SPJS.Port
				if changed("port") {
					name = port
				}
				if name == "" {
					return errors.New("no SPJS port given")
				}
				s := sink.NewSPJS(spjs.NewClient(url, log), name, log)
				s.Timeout = timeout
				out = s
			} else {
				name, rate := cfg.Grbl.Port, cfg.Grbl.Baud
				if changed("port") {
					name = port
				}
				if changed("baud") {
					rate = baud
				}
				if name == "" {
					return errors.New("no serial port given")
				}
				rw, err := grbl.Open(name, rate)
				if err != nil {
					return err
				}
				out = sink.NewGrbl(rw, log)
			}

			opt := cfg.Options()
			opt.Logger = log
			_, err = post.TransformFile(args[0], out, opt)
			return err
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "serial port (or SPJS port name)")
	cmd.Flags().IntVar(&baud, "baud", grbl.DefaultBaud, "serial baud rate")
	cmd.Flags().StringVar(&spjsURL, "spjs", "", "websocket URL of the SPJS server to use")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "max wait for SPJS to finish the program (0 waits forever)")
	return cmd
}
