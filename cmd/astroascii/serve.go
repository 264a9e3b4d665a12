package main

import (
	"GoAstroASCII/internal/core"
	"GoAstroASCII/internal/network"
	"GoAstroASCII/internal/webui"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Web UIサーバーを起動します",
		Long: "アスキーアートを生成・閲覧するWebサーバーを起動します。\n" +
			"SIGINT/SIGTERM を受信すると処理中のリクエストを待ってから終了します。",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if addr != "" {
				cfg.Server.ListenAddress = addr
			}

			gen, err := core.NewGenerator(cfg, network.NewClient(cfg.Network), newLogger("core"))
			if err != nil {
				return err
			}
			server, err := webui.NewServer(gen, cfg.Server, newLogger("webui"))
			if err != nil {
				return err
			}
			return server.ListenAndServe(cmd.Context(), cfg.Server.ListenAddress)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "待ち受けアドレス (設定ファイルの server.listen_address を上書き)")
	return cmd
}
