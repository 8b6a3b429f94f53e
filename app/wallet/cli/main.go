package main

import (
	"github.com/minichain/minichain/app/wallet/cli/cmd"
)

func main() {
	cmd.Execute()
}
