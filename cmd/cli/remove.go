package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/sicfor/sicfor/cmd"
	"github.com/spf13/cobra"
)

var removeAllFlag bool

// RemoveCmd représente la commande 'remove'
var RemoveCmd = &cobra.Command{
	Use:   "remove [certificate-id]",
	Short: "Deletes a certificate from the history",
	Long: `Deletes the record with the given id and rewrites the storage slot.
With --all the whole history is cleared and the slot removed entirely.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cobraCmd *cobra.Command, args []string) {
		if !removeAllFlag && len(args) == 0 {
			fmt.Println("Error: provide a certificate id or use --all")
			os.Exit(1)
		}

		certService, _, cleanup, err := openService()
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		defer cleanup()

		if removeAllFlag {
			certService.DeleteAll()
			fmt.Println("Certificate history cleared.")
			return
		}

		certService.Delete(args[0])
		fmt.Printf("Certificate %s removed.\n", args[0])
	},
}

func init() {
	RemoveCmd.Flags().BoolVar(&removeAllFlag, "all", false, "Clear the whole history")
	cmd.RootCmd.AddCommand(RemoveCmd)
}
