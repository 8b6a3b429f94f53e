package cmd

import (
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair",
	Run:   generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func generateRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.GenerateKey()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	path := privateKeyPath()
	if err := crypto.SaveECDSA(path, privateKey); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	pterm.Success.Printfln("new key pair written to %s", path)
}
