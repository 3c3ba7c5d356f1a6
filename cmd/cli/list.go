package cli

import (
	"fmt"
	"log"

	"github.com/sicfor/sicfor/cmd"
	"github.com/spf13/cobra"
)

// ListCmd représente la commande 'list'
var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints the certificate history, most recent first",
	Run: func(cmd *cobra.Command, args []string) {
		certService, _, cleanup, err := openService()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer cleanup()

		records := certService.List()
		if len(records) == 0 {
			fmt.Println("No certificates in the history.")
			return
		}

		fmt.Printf("%d certificate(s):\n", len(records))
		for _, record := range records {
			fmt.Printf("- %s | %s | %s | code %s | created %s\n",
				record.ID, record.Name, record.Title, record.VerificationCode, record.CreatedAt)
		}
	},
}

func init() {
	cmd.RootCmd.AddCommand(ListCmd)
}
