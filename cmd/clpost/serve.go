package main

import (
	"net/http"

	"github.com/spf13/cobra"
)

func newServeCmd(root *rootFlags) *cobra.Command {
	var addr, dir string
	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve the translator over HTTP",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Serve.Addr = addr
			}
			if cmd.Flags().Changed("dir") {
				cfg.Serve.Dir = dir
			}
			log := root.logger(cmd)

			a := newAPI(cfg, cfg.Serve.Dir, log)
			defer a.Close()

			log.Warn("listening", "addr", cfg.Serve.Addr, "dir", cfg.Serve.Dir)
			return http.ListenAndServe(cfg.Serve.Addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				w.Header().Set("Access-Control-Allow-Origin", "*")
				w.Header().Set("Access-Control-Allow-Methods", "*")
				log.Info(req.Method+" "+req.URL.Path, "remote", req.RemoteAddr)
				a.ServeHTTP(w, req)
			}))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":9091", "address to bind the server to")
	cmd.Flags().StringVar(&dir, "dir", "./data", "data directory to use")
	return cmd
}
