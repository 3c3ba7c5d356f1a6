package cli

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/sicfor/sicfor/cmd"
	customerrors "github.com/sicfor/sicfor/internal/errors"
	"github.com/sicfor/sicfor/internal/render"
	"github.com/spf13/cobra"
)

var renderOutputFlag string

// RenderCmd représente la commande 'render'
var RenderCmd = &cobra.Command{
	Use:   "render [certificate-id]",
	Short: "Renders a certificate to a PNG file",
	Long: `Draws the fixed 1200×675 certificate layout for the record with the given
id and writes it as a PNG. Without --output the file is named after the
record id (certificate-<id>.png).`,
	Args: cobra.ExactArgs(1),
	Run: func(cobraCmd *cobra.Command, args []string) {
		certService, _, cleanup, err := openService()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer cleanup()

		record, err := certService.GetByID(args[0])
		if err != nil {
			if errors.Is(err, customerrors.ErrCertificateNotFound) {
				fmt.Printf("Error: certificate '%s' not found\n", args[0])
				os.Exit(1)
			}
			log.Fatalf("Failed to load certificate: %v", err)
		}

		renderer, err := render.NewRenderer()
		if err != nil {
			log.Fatalf("Failed to initialize renderer: %v", err)
		}

		data, err := renderer.ExportPNG(record)
		if err != nil {
			log.Fatalf("Failed to render certificate: %v", err)
		}

		outPath := renderOutputFlag
		if outPath == "" {
			outPath = render.ImageFileName(record)
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			log.Fatalf("Failed to write image file: %v", err)
		}

		fmt.Printf("Certificate image written to %s\n", outPath)
	},
}

func init() {
	RenderCmd.Flags().StringVarP(&renderOutputFlag, "output", "o", "", "Output PNG path")
	cmd.RootCmd.AddCommand(RenderCmd)
}
