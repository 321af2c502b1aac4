package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dharc-org/provgen/sharepoint"
)

func structureCmd(configPath, logLevel *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "structure",
		Short: "Extract the folder structure from SharePoint",
		Long: `Extracts the digitisation folder hierarchy from the project's
SharePoint document library and writes it as a structure JSON document.

Authentication uses the FedAuth and rtFa cookies of an existing browser
session, read from the SHAREPOINT_FEDAUTH and SHAREPOINT_RTFA environment
variables. SHAREPOINT_SITE_URL overrides the configured site URL.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(*logLevel)
			cfg, err := loadConfig(*configPath, logger)
			if err != nil {
				return err
			}

			siteURL := cfg.SharePoint.SiteURL
			if env := os.Getenv("SHAREPOINT_SITE_URL"); env != "" {
				siteURL = env
			}
			if siteURL == "" {
				return fmt.Errorf("sharepoint.site_url or SHAREPOINT_SITE_URL must be set")
			}

			fedAuth := os.Getenv("SHAREPOINT_FEDAUTH")
			rtFa := os.Getenv("SHAREPOINT_RTFA")
			if fedAuth == "" || rtFa == "" {
				return fmt.Errorf("SHAREPOINT_FEDAUTH and SHAREPOINT_RTFA must be set")
			}

			ctx, cancel := signalContext()
			defer cancel()

			client := sharepoint.NewClient(siteURL, fedAuth, rtFa, sharepoint.WithLogger(logger))
			doc, err := sharepoint.NewExtractor(client).ExtractAll(ctx, cfg.SharePoint.Sale)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("marshal structure: %w", err)
			}
			if err := os.WriteFile(output, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("write structure: %w", err)
			}

			fmt.Printf("Structure saved to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "data/sharepoint_structure.json", "Output path for the structure document")
	return cmd
}
