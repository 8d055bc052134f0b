package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/shouni/go-story-kit/internal/config"
	"github.com/shouni/go-story-kit/internal/pipeline"

	"github.com/spf13/cobra"
)

// generateCmd は、ユーザープロフィールから6パネルの物語と各種アセットを生成するのだ。
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "AIに6パネルの物語と画像・音声アセットを生成させますなのだ。",
	Long: `ユーザープロフィール（気分、夢、ニックネームなど）を解析し、
6パネル構成の物語、パネル画像、ナレーション音声、BGMを生成するのだ。
出力は各アセットのURLを含む物語マニフェスト（JSON）になるのだよ。`,
	Example: "  go-story-kit generate -f profile.json -m streaming",
	RunE:    generateCommand,
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// 1. 必須チェック
	if opts.InputFile == "" && !isStdin() {
		return fmt.Errorf("ユーザープロフィール（--input-file）を指定してほしいのだ")
	}
	if opts.InputFile == "" {
		opts.InputFile = "-"
	}

	// 2. 環境変数等から基本設定をロードするのだ
	cfg := config.LoadConfig()
	cfg.GeminiModel = opts.AIModel
	cfg.GeminiImageModel = opts.ImageModel
	cfg.Options = opts

	in, err := pipeline.LoadInputs(ctx, opts.InputFile)
	if err != nil {
		return err
	}

	slog.Info("物語生成パイプラインを起動するのだ！",
		"mode", opts.Mode,
		"text_model", cfg.GeminiModel,
		"image_model", cfg.GeminiImageModel,
		"nickname", in.Nickname)

	// 3. 更新した config を考慮しつつパイプラインを実行するのだ
	story, err := pipeline.Execute(ctx, cfg, in)
	if err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	// 4. 物語マニフェストを標準出力へ書き出すのだ
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(story); err != nil {
		return fmt.Errorf("マニフェストの出力に失敗したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}

func isStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
