// Command astroascii は、天文写真のアーカイブからランダムな画像を取得し、
// アスキーアートとして描画するWebサーバーとCLIです。
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"GoAstroASCII/internal/config"

	"github.com/spf13/cobra"
)

// main関数はアプリケーションのエントリーポイントです。
func main() {
	log.SetOutput(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// シグナルハンドリング
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("INFO: 終了シグナルを受信しました。シャットダウンを開始します...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	closeLogFile()
	if err != nil {
		os.Exit(1)
	}
}

// rootOptions は全サブコマンドで共有するフラグです。
type rootOptions struct {
	configFile string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "astroascii",
		Short: "天文写真からアスキーアートを生成します",
		Long: "Astronomy Picture of the Day のアーカイブからランダムな日付の画像を取得し、\n" +
			"明るさに応じた文字で描き直した画像を生成します。",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadAndResolve(opts.configFile)
			if err != nil {
				log.Printf("ERROR: 設定ファイルの読み込みに失敗しました: %v", err)
				return err
			}
			opts.cfg = cfg
			return setupLogger(cfg)
		},
	}
	root.PersistentFlags().StringVar(&opts.configFile, "config", config.DefaultConfigPath, "設定ファイルのパス")

	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newGenerateCmd(opts))
	root.AddCommand(newVerifyCmd(opts))
	return root
}
