package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	appdocs "github.com/bryanwahyu/rentdoc/internal/application/documents"
	"github.com/bryanwahyu/rentdoc/internal/bootstrap"
	"github.com/bryanwahyu/rentdoc/internal/infra/storage"
)

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	var docType, tenant string
	cmd := &cobra.Command{
		Use:   "analyze <file-or-url>",
		Short: "Score one document and print the verdict as JSON",
		Example: "  doccheck analyze --type payslip ./bulletin_salaire_2026-09.pdf\n" +
			"  doccheck analyze --type tax_notice https://minio.local/rental-documents/acme/tax_notice/avis.pdf",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			target := args[0]
			ctx := cmd.Context()

			var svc *appdocs.Service
			var fileURL, fileName string
			if u, err := url.Parse(target); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
				// stored document: full wiring, verdict is recorded
				app, err := bootstrap.New(ctx, cfg)
				if err != nil {
					return err
				}
				defer app.Close()
				svc, fileURL = app.Docs, target
			} else {
				abs, err := filepath.Abs(target)
				if err != nil {
					return err
				}
				// local file: serve its directory as a throwaway store
				files := &storage.LocalStore{Dir: filepath.Dir(abs)}
				analyzer, err := bootstrap.NewAnalyzer(cfg, files)
				if err != nil {
					return err
				}
				svc = &appdocs.Service{Analyzer: analyzer, Files: files}
				// the throwaway store has no tenant prefix and nothing is recorded
				tenant = ""
				fileURL = (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
				fileName = filepath.Base(abs)
			}

			res, err := svc.Analyze(ctx, appdocs.AnalyzeCommand{
				TenantID:     tenant,
				FileURL:      fileURL,
				FileName:     fileName,
				DocumentType: docType,
			})
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("write verdict: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&docType, "type", "t", "", "document type (tax_notice, payslip, identity, bank_statement, employment_contract)")
	cmd.Flags().StringVar(&tenant, "tenant", "cli", "tenant recorded with the verdict")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
