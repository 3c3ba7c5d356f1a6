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

// LookupCmd représente la commande 'lookup'
var LookupCmd = &cobra.Command{
	Use:   "lookup [verification-code]",
	Short: "Resolves a verification code to its certificate record",
	Long: `Looks up a certificate by its verification code. The lookup is
case-insensitive since codes are generated upper-case. It also reports how
many verifications have been recorded for the certificate.`,
	Args: cobra.ExactArgs(1),
	Run:  runLookup,
}

func init() {
	cmd.RootCmd.AddCommand(LookupCmd)
}

// runLookup exécute la logique pour la commande lookup
func runLookup(cmd *cobra.Command, args []string) {
	code := args[0]

	certService, _, cleanup, err := openService()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer cleanup()

	record, err := certService.VerifyByCode(code)
	if err != nil {
		if errors.Is(err, customerrors.ErrCertificateNotFound) {
			// Un échec de recherche est un résultat normal, pas une panne.
			fmt.Printf("No certificate matches the code '%s'\n", code)
			os.Exit(1)
		}
		fmt.Printf("Error looking up certificate: %v\n", err)
		os.Exit(1)
	}

	_, totalVerifications, err := certService.GetVerificationStats(record.ID)
	if err != nil {
		log.Printf("Warning: could not count verifications: %v", err)
	}

	// Afficher les résultats
	fmt.Printf("Certificate found for code %s:\n", record.VerificationCode)
	fmt.Printf("Recipient: %s\n", record.Name)
	fmt.Printf("Title: %s\n", record.Title)
	fmt.Printf("Issuer: %s\n", record.Issuer)
	fmt.Printf("Date: %s\n", render.FormatDate(record.Date))
	fmt.Printf("Created at: %s\n", record.CreatedAt)
	fmt.Printf("Recorded verifications: %d\n", totalVerifications)
}
