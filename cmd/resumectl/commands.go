package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"resume-builder/internal/auth"
	"resume-builder/internal/config"
	"resume-builder/internal/model"
	"resume-builder/internal/pagination"
	"resume-builder/internal/templates"
	infra "resume-builder/pkg/infrastructure"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type renderFlags struct {
	template   string
	measure    string
	export     string
	chromePath string
	templates  string
}

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "resumectl",
		Short:        "Paginate and export resumes from the command line",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	root.AddCommand(newPaginateCmd(), newRenderCmd(), newTokenCmd())
	return root
}

func (f *renderFlags) register(cmd *cobra.Command, export bool) {
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "template id, overrides the document's")
	cmd.Flags().StringVar(&f.measure, "measure", "estimate", "measure mode: chrome or estimate")
	cmd.Flags().StringVar(&f.chromePath, "chrome", os.Getenv("CHROME_PATH"), "Chrome binary")
	cmd.Flags().StringVar(&f.templates, "templates", "", "template directory, overrides the embedded set")
	if export {
		cmd.Flags().StringVar(&f.export, "export", "raster", "export mode: raster or print")
	}
}

func newPaginateCmd() *cobra.Command {
	var f renderFlags
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "paginate <resume.json>",
		Short: "Print the page boundaries of a resume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, rendering, err := paginate(cmd.Context(), args[0], f, false)
			if err != nil {
				return err
			}
			defer rendering.Close()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printPages(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.register(cmd, false)
	f.export = "raster"
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var f renderFlags
	var out, htmlOut string
	cmd := &cobra.Command{
		Use:   "render <resume.json>",
		Short: "Paginate a resume and export it to PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" && htmlOut == "" {
				return fmt.Errorf("nothing to write: pass --out and/or --html")
			}
			res, rendering, err := paginate(cmd.Context(), args[0], f, out != "")
			if err != nil {
				return err
			}
			defer rendering.Close()

			if htmlOut != "" {
				fh, err := os.Create(htmlOut)
				if err != nil {
					return err
				}
				if err := pagination.RenderPages(fh, res); err != nil {
					fh.Close()
					return err
				}
				if err := fh.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", htmlOut)
			}
			if out == "" {
				return nil
			}
			o, err := rendering.Exporter.Export(cmd.Context(), res)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, o.PDF, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d pages)\n", out, o.Pages)
			return nil
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVarP(&out, "out", "o", "", "PDF output path")
	cmd.Flags().StringVar(&htmlOut, "html", "", "also write the paginated HTML here")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var user, email string
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = cfg.JWTTTL
			}
			tok, err := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, ttl).Generate(user, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "user id (token subject)")
	cmd.Flags().StringVar(&email, "email", "", "optional email claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime, defaults to JWT_TTL_MINUTES")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// paginate loads a document file and runs one pagination pass over it. The
// returned Rendering must be closed by the caller.
func paginate(ctx context.Context, path string, f renderFlags, export bool) (*pagination.Result, *infra.Rendering, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	doc, err := loadDocument(path)
	if err != nil {
		return nil, nil, err
	}
	if f.template != "" {
		doc.TemplateID = f.template
	}

	reg, err := templates.New()
	if f.templates != "" {
		reg, err = templates.NewFromDir(f.templates)
	}
	if err != nil {
		return nil, nil, err
	}
	if !reg.Has(doc.Template()) {
		return nil, nil, fmt.Errorf("%w: %q", pagination.ErrTemplateNotFound, doc.Template())
	}

	rendering, err := infra.NewRendering(ctx, infra.RenderingConfig{
		MeasureMode: strings.ToLower(f.measure),
		ExportMode:  f.export,
		ChromePath:  f.chromePath,
		PageSize:    pagination.PageSizeA4,
		Export:      export,
	})
	if err != nil {
		return nil, nil, err
	}
	host, release, err := rendering.NewHost(ctx)
	if err != nil {
		rendering.Close()
		return nil, nil, err
	}
	defer release()

	res, err := pagination.NewPaginator(reg, host, pagination.DefaultOptions()).Paginate(ctx, doc)
	if err != nil {
		rendering.Close()
		return nil, nil, err
	}
	return res, rendering, nil
}

func loadDocument(path string) (model.Document, error) {
	var doc model.Document
	b, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := model.Validate(doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func printPages(w io.Writer, res *pagination.Result) {
	fmt.Fprintf(w, "template %s, %s %.0fx%.0f px, %d page(s)\n",
		res.TemplateID, res.PageSize.Name, res.PageSize.Width, res.PageSize.Height, len(res.Pages))
	for i, p := range res.Pages {
		fmt.Fprintf(w, "page %d: %d block(s), %.0f px\n", i+1, len(p.Blocks), p.Height())
	}
}
