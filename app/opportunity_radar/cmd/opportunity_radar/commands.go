package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/internal/render"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/config"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/engine"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/logger"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/model"
	"github.com/iWorld-y/opportunity_radar/app/opportunity_radar/pkg/taxonomy"
)

// 输出格式
const (
	formatText = "text"
	formatHTML = "html"
	formatJSON = "json"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

type scanOptions struct {
	scopes []string
	format string
	out    string
	theme  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "opportunity_radar",
		Short:         "Scan business news for opportunity signals",
		Long:          "opportunity_radar fetches local, national and international headlines, matches them against an indicator taxonomy and ranks the business opportunities it finds.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/opportunity_radar/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newScanCmd(opts))
	root.AddCommand(newTaxonomyCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

// setup 加载配置并初始化日志
func setup(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	level := cfg.Log.Level
	if opts.verbose {
		level = "debug"
	}
	if err := logger.InitLogger(level, cfg.Log.File); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func newScanCmd(root *rootOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Fetch news for the selected scopes and list opportunities",
		Example: `  opportunity_radar scan
  opportunity_radar scan --scope local,national --format html --out report.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(root)
			if err != nil {
				return err
			}

			format, err := parseFormat(opts.format)
			if err != nil {
				return err
			}

			scopes := cfg.DefaultScopes()
			if cmd.Flags().Changed("scope") {
				if scopes, err = model.ParseScopes(opts.scopes); err != nil {
					return err
				}
			}

			theme := cfg.Render.Theme
			if opts.theme != "" {
				theme = opts.theme
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			res, err := runScan(ctx, cfg, scopes)
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), render.ErrorStyle.Render(engine.StatusMessage(err)))
				return err
			}

			page := render.NewPage(res, render.Options{Theme: theme, MaxArticles: cfg.Render.MaxArticles})
			if err := writeOutput(cmd.OutOrStdout(), opts.out, format, page); err != nil {
				return err
			}
			if opts.out != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", opts.out)
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&opts.scopes, "scope", "s", nil, "scopes to scan: local, national, international (comma separated)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatText, "output format: text, html, json")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&opts.theme, "theme", "", "html theme: light or dark (default from config)")
	return cmd
}

func runScan(ctx context.Context, cfg *config.Config, scopes []model.Scope) (*engine.Result, error) {
	eng, err := engine.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	return eng.Scan(ctx, engine.ScanOptions{
		Scopes: scopes,
		ProgressCallback: func(status string, progress int) {
			logger.Log.Debugf("[%3d%%] %s", progress, status)
		},
	})
}

func parseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", formatText:
		return formatText, nil
	case formatHTML, formatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: text, html, json)", s)
	}
}

func renderPage(w io.Writer, format string, page *render.Page) error {
	switch format {
	case formatHTML:
		return render.WriteHTML(w, page)
	case formatJSON:
		return render.WriteJSON(w, page)
	default:
		return render.WriteTerminal(w, page)
	}
}

// writeOutput 写到 stdout 或文件。写文件时先写临时文件再重命名，失败不会破坏已有报告。
func writeOutput(stdout io.Writer, path, format string, page *render.Page) error {
	if path == "" {
		return renderPage(stdout, format, page)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := renderPage(tmp, format, page); err != nil {
		tmp.Close()
		return fmt.Errorf("rendering %s: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func newTaxonomyCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "taxonomy",
		Short: "Print the indicator taxonomy in effect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup(root)
			if err != nil {
				return err
			}
			tax, err := taxonomy.FromFile(cfg.TaxonomyFile)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, c := range tax.Categories() {
				fmt.Fprintf(w, "%s %s\n", render.SectionStyle.Render(c.Name), render.DimStyle.Render(fmt.Sprintf("(%d)", len(c.Keywords))))
				fmt.Fprintf(w, "  %s\n", strings.Join(c.Keywords, ", "))
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "opportunity_radar %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
