package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/hashing"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

var cmdHash = &cobra.Command{
	Use:   "hash [file]",
	Short: "Print the hash-based apostille message of a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runHash,
}

var flagHash struct {
	Algorithm string
	Signed    bool
}

func init() {
	cmdMain.AddCommand(cmdHash)
	cmdHash.Flags().StringVarP(&flagHash.Algorithm, "algorithm", "a", "sha256", "Hash function: md5, sha1, sha256, keccak-256, keccak-512, sha3-256 or sha3-512")
	cmdHash.Flags().BoolVar(&flagHash.Signed, "signed", false, "Sign the digest with the initiator key")
}

func runHash(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	function, err := hashing.ByName(flagHash.Algorithm)
	if err != nil {
		return err
	}

	message := function.NonSignedHashing(data)
	if flagHash.Signed {
		config, err := loadConfig()
		if err != nil {
			return err
		}
		if strings.TrimSpace(config.InitiatorPrivateKey) == "" {
			return fmt.Errorf("--signed requires APOSTILLE_INITIATOR_KEY")
		}
		key, err := shared.ParsePrivateKey(config.InitiatorPrivateKey)
		if err != nil {
			return err
		}
		message, err = function.SignedHashing(data, key)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "algorithm: %s\n", function.Name())
	fmt.Fprintf(out, "message:   %s\n", message)
	fmt.Fprintf(out, "cid:       %s\n", hashing.ContentID(data))
	return nil
}
