package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/minichain/minichain/foundation/blockchain/ledger"
	"github.com/minichain/minichain/foundation/blockchain/signature"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	url       string
	recipient string
	amount    uint64
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit a transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&recipient, "to", "t", "", "Public key of the recipient.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "m", 0, "Amount to send.")
}

func sendRun(cmd *cobra.Command, args []string) {
	privateKey, err := crypto.LoadECDSA(privateKeyPath())
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	tx := ledger.Tx{
		SenderPublicKey:    signature.PublicKeyString(privateKey),
		RecipientPublicKey: recipient,
		Amount:             amount,
	}

	sig, err := signature.Sign(tx, privateKey)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	payload := struct {
		SenderPublicKey    string `json:"sender_public_key"`
		RecipientPublicKey string `json:"recipient_public_key"`
		Signature          string `json:"signature"`
		Amount             uint64 `json:"amount"`
	}{
		SenderPublicKey:    tx.SenderPublicKey,
		RecipientPublicKey: tx.RecipientPublicKey,
		Signature:          sig,
		Amount:             tx.Amount,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}

	if resp.StatusCode != http.StatusCreated {
		pterm.Error.Printfln("node rejected the transaction: %s", string(body))
		os.Exit(1)
	}

	pterm.Success.Printfln("transaction accepted: %s", string(body))
}
