package main

import (
	"fmt"

	"GoAstroASCII/internal/core"
	"GoAstroASCII/internal/network"

	"github.com/spf13/cobra"
)

func newGenerateCmd(opts *rootOptions) *cobra.Command {
	var (
		outDir    string
		printText bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "作品を1つ生成して保存します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if outDir != "" {
				cfg.Storage.SaveDirectory = outDir
			}

			gen, err := core.NewGenerator(cfg, network.NewClient(cfg.Network), newLogger("core"))
			if err != nil {
				return err
			}

			art, err := gen.Generate(cmd.Context())
			if err != nil {
				return err
			}
			path, err := gen.Persist(art)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if printText {
				fmt.Fprint(out, art.ASCII.Text())
			}
			fmt.Fprintln(out, path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outDir, "out", "", "保存先ディレクトリ (設定ファイルの storage.save_directory を上書き)")
	cmd.Flags().BoolVar(&printText, "print", false, "生成したテキストを標準出力にも表示します")
	return cmd
}
