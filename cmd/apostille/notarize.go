package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/announce"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/apostille"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/hashing"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/initiator"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/network"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

var cmdNotarize = &cobra.Command{
	Use:   "notarize [file]",
	Short: "Create an apostille for a file and announce it",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotarize,
}

var flagNotarize struct {
	Seed        string
	Algorithm   string
	Raw         bool
	Mosaics     []string
	Updates     []string
	MetricsFile string
}

func init() {
	cmdMain.AddCommand(cmdNotarize)
	cmdNotarize.Flags().StringVar(&flagNotarize.Seed, "seed", "", "Apostille seed (defaults to the file name)")
	cmdNotarize.Flags().StringVarP(&flagNotarize.Algorithm, "algorithm", "a", "sha256", "Hash function used for the creation message")
	cmdNotarize.Flags().BoolVar(&flagNotarize.Raw, "raw", false, "Record the file content instead of its hash")
	cmdNotarize.Flags().StringArrayVarP(&flagNotarize.Mosaics, "mosaic", "m", nil, "Mosaic sent with the creation transfer, as id:amount or amount of the network currency")
	cmdNotarize.Flags().StringArrayVarP(&flagNotarize.Updates, "update", "u", nil, "Message of an additional update transfer")
	cmdNotarize.Flags().StringVar(&flagNotarize.MetricsFile, "metrics-file", "", "Write pass metrics to this file in the Prometheus text format")
}

func runNotarize(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(config)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	seed := flagNotarize.Seed
	if seed == "" {
		seed = filepath.Base(args[0])
	}

	mosaics, err := parseMosaics(flagNotarize.Mosaics)
	if err != nil {
		return err
	}

	options := apostille.CreateOptions{Mosaics: mosaics}
	if !flagNotarize.Raw {
		function, err := hashing.ByName(flagNotarize.Algorithm)
		if err != nil {
			return err
		}
		options.HashFunction = function
	}

	if strings.TrimSpace(config.InitiatorPrivateKey) == "" {
		return fmt.Errorf("APOSTILLE_INITIATOR_KEY is required")
	}
	initiatorKey, err := shared.ParsePrivateKey(config.InitiatorPrivateKey)
	if err != nil {
		return err
	}
	owner, err := initiator.NewSolo(initiatorKey, config.Network)
	if err != nil {
		return err
	}

	endpoint, err := network.NewEndpoint(config, network.EndpointOptions{Logger: logger})
	if err != nil {
		return err
	}
	defer endpoint.Close()

	registry := prometheus.NewRegistry()
	metrics, err := announce.NewMetrics(registry)
	if err != nil {
		return err
	}

	session, err := apostille.New(
		seed,
		config.GeneratorPrivateKey,
		config.Network,
		apostille.WithLogger(logger),
		apostille.WithHistoryReader(endpoint.Client),
		apostille.WithAnnounceOptions(
			announce.WithMetrics(metrics),
			announce.WithConfirmationTimeout(config.ConfirmationTimeout),
		),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := session.Create(ctx, owner, data, options); err != nil {
		return err
	}
	for _, message := range flagNotarize.Updates {
		if err := session.Update(ctx, owner, message, nil); err != nil {
			return err
		}
	}

	results, err := session.Announce(ctx, endpoint)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "apostille %s (%s)\n", session.Address(), strings.ToUpper(session.PublicKey().StringRaw()))
	if hash := session.ApostilleHash(); hash != "" {
		fmt.Fprintf(out, "hash:      %s\n", hash)
	}
	fmt.Fprintf(out, "cid:       %s\n", session.ContentID())

	failed := printResults(out, results)

	if flagNotarize.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(flagNotarize.MetricsFile, registry); err != nil {
			logger.Warn().Err(err).Str("path", flagNotarize.MetricsFile).Msg("failed to write metrics")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d units failed; %d items still pending", failed, len(results), len(session.Pending()))
	}
	return nil
}

func printResults(out io.Writer, results []announce.Result) int {
	failed := 0
	for _, result := range results {
		status := result.State
		if result.Err != nil {
			failed++
			status = fmt.Sprintf("%s (%s: %v)", result.State, apostille.KindOf(result.Err), result.Err)
		}
		fmt.Fprintf(out, "unit %d %-18s items=%d hash=%s %s\n",
			result.UnitIndex, result.Kind, len(result.ItemIDs), result.Hash, status)
	}
	return failed
}

// parseMosaics reads id:amount pairs with relative amounts. A bare amount is
// taken in the network currency.
func parseMosaics(values []string) ([]ledger.Mosaic, error) {
	mosaics := make([]ledger.Mosaic, 0, len(values))
	for _, value := range values {
		id, amount := ledger.NetworkCurrencyID, value
		if index := strings.LastIndex(value, ":"); index >= 0 {
			id, amount = value[:index], value[index+1:]
		}
		mosaic, err := ledger.MosaicFromRelative(id, amount, ledger.NetworkCurrencyDivisibility)
		if err != nil {
			return nil, fmt.Errorf("invalid --mosaic %q: %w", value, err)
		}
		mosaics = append(mosaics, mosaic)
	}
	return mosaics, nil
}
