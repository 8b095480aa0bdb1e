package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/gemini-outpaint-kit/internal/config"
	"github.com/shouni/gemini-outpaint-kit/pkg/canvas"
	"github.com/shouni/gemini-outpaint-kit/pkg/domain"
	"github.com/shouni/gemini-outpaint-kit/pkg/generator"
	"github.com/shouni/gemini-outpaint-kit/pkg/history"
	"github.com/shouni/gemini-outpaint-kit/pkg/session"
	"github.com/shouni/gemini-outpaint-kit/pkg/source"
)

type options struct {
	input       string
	preset      string
	width       int
	height      int
	instruction string
	count       int
	outDir      string
	zipPath     string
	jpegQuality int
	listPresets bool
	setKey      string
	clearKey    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("outpaint", flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.input, "in", "", "元画像 (ローカルパス, http(s):// URL, gs:// URI)")
	fs.StringVar(&o.preset, "preset", "", "キャンバスのプリセット (例: 16:9, 4:3+50, 1:1+100)")
	fs.IntVar(&o.width, "width", 0, "キャンバスの幅 (プリセット適用後に上書き)")
	fs.IntVar(&o.height, "height", 0, "キャンバスの高さ (プリセット適用後に上書き)")
	fs.StringVar(&o.instruction, "prompt", "", "拡張部分への追加指示")
	fs.IntVar(&o.count, "count", 1, "生成回数 (2 回目以降は再生成として履歴に追加)")
	fs.StringVar(&o.outDir, "out", "", "画像の保存先ディレクトリ (未指定なら OUTPAINT_OUTPUT_DIR)")
	fs.StringVar(&o.zipPath, "zip", "", "全画像をまとめて書き出す zip ファイル")
	fs.IntVar(&o.jpegQuality, "jpeg-quality", 0, "1-100 を指定すると JPEG に変換して保存")
	fs.BoolVar(&o.listPresets, "list-presets", false, "プリセット一覧を表示して終了")
	fs.StringVar(&o.setKey, "set-key", "", "API キーをキーファイルに保存して終了")
	fs.BoolVar(&o.clearKey, "clear-key", false, "保存済みの API キーを削除して終了")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.count < 1 {
		return nil, fmt.Errorf("-count must be at least 1")
	}
	if o.jpegQuality < 0 || o.jpegQuality > 100 {
		return nil, fmt.Errorf("-jpeg-quality must be between 0 and 100")
	}
	return o, nil
}

// dependencies は run が外部サービスと通信するために使う生成関数です。
type dependencies struct {
	newModel  generator.ModelFactory
	newReader func(ctx context.Context, ref string) (source.Reader, func() error, error)
}

func defaultDependencies() dependencies {
	return dependencies{
		newModel:  generator.NewGenaiModelFactory(),
		newReader: newReader,
	}
}

// newReader は ref が gs:// なら GCS クライアント付きのリーダーを、それ以外ならローカル用のリーダーを返します。
// GCS クライアントは gs:// を読むときだけ初期化します。
func newReader(ctx context.Context, ref string) (source.Reader, func() error, error) {
	if !remoteio.IsGCSURI(ref) {
		return remoteio.NewUniversalInputReader(nil, nil), func() error { return nil }, nil
	}
	factory, err := gcsfactory.New(ctx)
	if err != nil {
		return nil, nil, domain.NewImageLoadError("failed to initialize GCS client", err)
	}
	reader, err := factory.InputReader()
	if err != nil {
		factory.Close()
		return nil, nil, domain.NewImageLoadError("failed to initialize GCS reader", err)
	}
	return reader, factory.Close, nil
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg, os.Stderr))

	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, opts, defaultDependencies(), os.Stdout); err != nil {
		slog.Error("outpaint failed", "kind", domain.KindOf(err), "error", err)
		fmt.Fprintln(os.Stderr, domain.UserMessage(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts *options, deps dependencies, stdout io.Writer) error {
	switch {
	case opts.listPresets:
		return listPresets(stdout)
	case opts.setKey != "":
		if err := cfg.StoreKey(opts.setKey); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "API key saved to %s\n", cfg.KeyFile)
		return nil
	case opts.clearKey:
		return cfg.ClearKey()
	}

	key, err := cfg.APIKey()
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "APIキーを解決しました", "key", key.String(), "provenance", key.Provenance)

	reader, closeReader, err := deps.newReader(ctx, opts.input)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeReader(); err != nil {
			slog.WarnContext(ctx, "リーダーのクローズに失敗しました", "error", err)
		}
	}()

	loader := source.NewLoader(
		httpkit.New(cfg.HTTPTimeout),
		reader,
		cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		cfg.CacheTTL,
	)

	outpainter, err := generator.NewGeminiOutpainter(deps.newModel, cfg.Model)
	if err != nil {
		return err
	}

	sess, err := session.New(outpainter, history.NewStore())
	if err != nil {
		return err
	}

	original, err := loader.Load(ctx, opts.input)
	if err != nil {
		return err
	}
	if err := sess.Load(original); err != nil {
		return err
	}
	if err := applyCanvas(sess, opts); err != nil {
		return err
	}

	target := sess.Target()
	fmt.Fprintf(stdout, "canvas: %dx%d -> %dx%d\n", original.Width, original.Height, target.Width, target.Height)

	genErr := generate(ctx, sess, opts, key)

	// 途中で失敗しても、それまでに生成できた画像は書き出す。
	if sess.History().Len() == 0 {
		return genErr
	}
	if err := export(sess.History().List(), cfg, opts, stdout); err != nil {
		return errors.Join(genErr, err)
	}
	return genErr
}

// generate は 1 回目を Generate、2 回目以降を Regenerate で実行し、最初の失敗で止まります。
func generate(ctx context.Context, sess *session.Session, opts *options, key domain.APIKey) error {
	if _, err := sess.Generate(ctx, opts.instruction, key); err != nil {
		return err
	}
	for i := range opts.count - 1 {
		if _, err := sess.Regenerate(ctx, key); err != nil {
			slog.WarnContext(ctx, "再生成に失敗しました", "attempt", i+2, "error", err)
			return err
		}
	}
	return nil
}

func applyCanvas(sess *session.Session, opts *options) error {
	p, err := canvas.ParsePreset(opts.preset)
	if err != nil {
		return domain.NewConfigurationError(err.Error())
	}
	if _, err := sess.ApplyPreset(p); err != nil {
		return err
	}
	if opts.width > 0 {
		if _, err := sess.SetWidth(opts.width); err != nil {
			return err
		}
	}
	if opts.height > 0 {
		if _, err := sess.SetHeight(opts.height); err != nil {
			return err
		}
	}
	return nil
}

func export(images []domain.GeneratedImage, cfg *config.Config, opts *options, stdout io.Writer) error {
	exportOpts := history.ExportOptions{JPEGQuality: opts.jpegQuality}

	if opts.zipPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.zipPath), 0o755); err != nil {
			return fmt.Errorf("zipの出力先ディレクトリ作成に失敗しました: %w", err)
		}
		f, err := os.Create(opts.zipPath)
		if err != nil {
			return fmt.Errorf("zipファイルの作成に失敗しました: %w", err)
		}
		if err := history.WriteZip(f, images, exportOpts); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("zipファイルのクローズに失敗しました: %w", err)
		}
		fmt.Fprintf(stdout, "%d image(s) written to %s\n", len(images), opts.zipPath)
		return nil
	}

	dir := opts.outDir
	if dir == "" {
		dir = cfg.OutputDir
	}
	paths, err := history.SaveAll(dir, images, exportOpts)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	return nil
}

func listPresets(w io.Writer) error {
	for _, p := range canvas.Presets() {
		if _, err := fmt.Fprintln(w, p.Name()); err != nil {
			return err
		}
	}
	return nil
}
