package main

import (
	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/corpusfilter/config"
	"github.com/mohammad-safakhou/corpusfilter/internal/pipeline"
	"github.com/mohammad-safakhou/corpusfilter/internal/runtime"
	srv "github.com/mohammad-safakhou/corpusfilter/internal/server"
)

func serveCMD() *cobra.Command {
	var (
		cfgPath string
		addr    string
	)

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API exposing the pipeline per document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}

			logger := runtime.NewLogger("SERVE")
			metrics := runtime.NewMetrics()
			pipe := buildPipeline(cfg, pipeline.AllStages(), logger, metrics)
			return srv.Run(cfg, pipe, logger, metrics)
		},
	}

	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file")
	serve.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return serve
}
