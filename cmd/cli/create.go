package cli

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/sicfor/sicfor/cmd"
	"github.com/sicfor/sicfor/internal/services"
	"github.com/spf13/cobra"
)

var (
	nameFlag   string
	titleFlag  string
	issuerFlag string
	dateFlag   string
	noteFlag   string
)

// CreateCmd représente la commande 'create'
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issues a new certificate record and stores it in the history.",
	Long: `This command creates a certificate record from the provided fields, assigns
a fresh id and verification code and persists it at the head of the history.

Example:
  sicfor create --name="Ana Ruiz" --title="Curso de Primeros Auxilios" --issuer="Centro X" --date="2024-03-01" --note="Completó el curso satisfactoriamente."`,
	Run: func(cmd *cobra.Command, args []string) {
		// The recipient name is the only required field. Validate it here, at
		// the boundary, before any record is created.
		if strings.TrimSpace(nameFlag) == "" {
			fmt.Println("Error: --name flag must not be empty")
			os.Exit(1)
		}

		// An omitted date defaults to today, matching the form behavior.
		if dateFlag == "" {
			dateFlag = time.Now().Format("2006-01-02")
		}

		certService, cfg, cleanup, err := openService()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer cleanup()

		record, err := certService.CreateCertificate(services.CertificateInput{
			Name:   nameFlag,
			Title:  titleFlag,
			Issuer: issuerFlag,
			Date:   dateFlag,
			Note:   noteFlag,
		})
		if err != nil {
			log.Fatalf("Failed to create certificate: %v", err)
		}

		fmt.Printf("Certificate created successfully:\n")
		fmt.Printf("ID: %s\n", record.ID)
		fmt.Printf("Verification code: %s\n", record.VerificationCode)
		fmt.Printf("Verify URL: %s/verify/%s\n", cfg.Server.BaseURL, record.VerificationCode)
	},
}

func init() {
	CreateCmd.Flags().StringVar(&nameFlag, "name", "", "Recipient name (required)")
	CreateCmd.Flags().StringVar(&titleFlag, "title", "", "Certificate title or subject")
	CreateCmd.Flags().StringVar(&issuerFlag, "issuer", "", "Issuing entity name")
	CreateCmd.Flags().StringVar(&dateFlag, "date", "", "Effective date (YYYY-MM-DD, defaults to today)")
	CreateCmd.Flags().StringVar(&noteFlag, "note", "", "Free-text body shown on the certificate")

	// Marquer le flag comme requis
	CreateCmd.MarkFlagRequired("name")

	// Ajouter la commande à RootCmd
	cmd.RootCmd.AddCommand(CreateCmd)
}
