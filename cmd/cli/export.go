package cli

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sicfor/sicfor/cmd"
	"github.com/spf13/cobra"
)

var exportOutputFlag string

// ExportCmd représente la commande 'export'
var ExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Exports the full certificate history as a JSON file",
	Long: `Serializes every certificate record to a JSON array and writes it to a
file. Without --output the file name embeds the current date
(certificates-export-YYYY-MM-DD.json).`,
	Run: func(cobraCmd *cobra.Command, args []string) {
		certService, _, cleanup, err := openService()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer cleanup()

		data, filename, err := certService.ExportJSON(time.Now())
		if err != nil {
			log.Fatalf("Failed to export certificates: %v", err)
		}

		outPath := exportOutputFlag
		if outPath == "" {
			outPath = filename
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			log.Fatalf("Failed to write export file: %v", err)
		}

		fmt.Printf("Certificate history exported to %s\n", outPath)
	},
}

func init() {
	ExportCmd.Flags().StringVarP(&exportOutputFlag, "output", "o", "", "Output JSON path")
	cmd.RootCmd.AddCommand(ExportCmd)
}
