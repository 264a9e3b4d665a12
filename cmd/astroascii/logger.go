package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"GoAstroASCII/internal/config"
)

// ログファイル管理用
var logFile *os.File

// setupLogger はログ出力先を設定します。
// config.EnableLogFile が true の場合、ファイルにも出力します。
func setupLogger(cfg *config.Config) error {
	return toggleLogger(cfg.EnableLogFile, cfg.LogFilePath)
}

// toggleLogger はログ出力のファイル書き込みを切り替えます。
// path が空の場合は日付形式のファイル名を使用します。
func toggleLogger(enable bool, path string) error {
	closeLogFile()

	if !enable {
		log.SetOutput(os.Stdout)
		return nil
	}

	if path == "" {
		path = fmt.Sprintf("astroascii_%s.log", time.Now().Format(time.DateOnly))
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("ERROR: ログファイルを開けませんでした (path=%s): %v", path, err)
		return fmt.Errorf("ログファイル '%s' を開けませんでした: %w", path, err)
	}
	logFile = f
	// 標準出力とファイルの両方に出力
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	log.Printf("INFO: ログ出力をファイル '%s' に開始しました", path)
	return nil
}

func closeLogFile() {
	if logFile != nil {
		log.SetOutput(os.Stdout)
		logFile.Close()
		logFile = nil
	}
}

// newLogger は、現在のログ出力先にコンポーネント名の接頭辞を付けたロガーを返します。
func newLogger(component string) *log.Logger {
	return log.New(log.Writer(), fmt.Sprintf("[%s] ", component), log.LstdFlags)
}
