package cmd

import (
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/minichain/minichain/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the public key for the wallet",
	Run:   addressRun,
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

func addressRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(privateKeyPath())
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	pterm.Info.Println(signature.PublicKeyString(privateKey))
}
