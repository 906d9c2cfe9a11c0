package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/apostille"
)

var cmdAccount = &cobra.Command{
	Use:   "account [seed]",
	Short: "Print the apostille account derived from a seed",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccount,
}

var flagAccount struct {
	ShowPrivateKey bool
}

func init() {
	cmdMain.AddCommand(cmdAccount)
	cmdAccount.Flags().BoolVar(&flagAccount.ShowPrivateKey, "show-private-key", false, "Also print the account private key")
}

func runAccount(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	session, err := apostille.New(args[0], config.GeneratorPrivateKey, config.Network)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "network:     %s\n", session.Network())
	fmt.Fprintf(out, "address:     %s\n", session.Address())
	fmt.Fprintf(out, "public key:  %s\n", strings.ToUpper(session.PublicKey().StringRaw()))
	fmt.Fprintf(out, "hash signer: %s\n", strings.ToUpper(session.HashSigner().StringRaw()))
	if flagAccount.ShowPrivateKey {
		fmt.Fprintf(out, "private key: %s\n", strings.ToUpper(session.PrivateKey().StringRaw()))
	}
	return nil
}
