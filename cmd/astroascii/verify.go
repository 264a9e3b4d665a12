package main

import (
	"errors"
	"fmt"

	"GoAstroASCII/internal/core"
	"GoAstroASCII/internal/storage"

	"github.com/spf13/cobra"
)

// errUnhealthy は、検証で問題が見つかったことを終了コードで伝えるためのエラーです。
var errUnhealthy = errors.New("ギャラリーに問題のある作品があります")

func newVerifyCmd(opts *rootOptions) *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "保存済みの作品をギャラリーインデックスと照合します",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			var gallery *storage.Gallery
			if cfg.Storage.GalleryIndexEnabled() {
				gallery = storage.NewGallery(cfg.Storage.SaveDirectory)
			}

			result, err := core.VerifyGallery(cmd.Context(), gallery, cfg.Storage.SaveDirectory, repair, newLogger("verify"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, detail := range result.MissingDetails {
				fmt.Fprintln(out, detail)
			}
			fmt.Fprintf(out, "チェック: %d, 欠損: %d, 破損: %d, 修復: %d\n",
				result.TotalChecked, result.TotalMissing, result.TotalCorrupt, result.TotalRepaired)
			if !result.Healthy() && !repair {
				return errUnhealthy
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "壊れたファイルを削除し、インデックスから除きます")
	return cmd
}
