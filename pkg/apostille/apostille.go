package apostille

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	hedera "github.com/hashgraph/hedera-sdk-go/v2"
	"github.com/rs/zerolog"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/announce"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/batch"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/bonded"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/hashing"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/initiator"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/network"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/shared"
)

// HistoryReader answers whether an account already has transactions on
// chain. *network.Client implements it.
type HistoryReader interface {
	HasTransactions(ctx context.Context, publicKey string) (bool, error)
}

type CreateOptions struct {
	Mosaics []ledger.Mosaic
	// HashFunction, when set, replaces the raw data by its hash-based
	// message.
	HashFunction hashing.HashFunction
}

type Option func(*Apostille)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Apostille) {
		a.logger = logger
	}
}

// WithHistoryReader enables the on-chain creation lookup used by Create,
// Update, Announce and IsCreated.
func WithHistoryReader(reader HistoryReader) Option {
	return func(a *Apostille) {
		a.history = reader
	}
}

// WithAnnounceOptions forwards options to every announcement pass.
func WithAnnounceOptions(options ...announce.Option) Option {
	return func(a *Apostille) {
		a.announceOptions = append(a.announceOptions, options...)
	}
}

// WithEndpointOptions configures the endpoint built by Announce when none is
// passed in.
func WithEndpointOptions(options network.EndpointOptions) Option {
	return func(a *Apostille) {
		a.endpointOptions = options
	}
}

// Apostille is a notarization session: a deterministic account derived from
// a seed and a queue of pending transfers to it.
type Apostille struct {
	seed      string
	network   string
	generator hedera.PrivateKey
	account   hedera.PrivateKey
	address   ledger.Address

	logger          zerolog.Logger
	history         HistoryReader
	announceOptions []announce.Option
	endpointOptions network.EndpointOptions

	mu              sync.Mutex
	created         bool
	createdOnLedger bool
	apostilleHash   string
	contentID       string
	queue           []batch.PreparedItem
}

// New derives the apostille account of seed. The generator signs the hex
// SHA-256 digest of the seed; the last 32 bytes of that signature are the
// ed25519 private key of the account.
func New(seed string, generatorPrivateKey string, networkName string, opts ...Option) (*Apostille, error) {
	generator, err := shared.ParsePrivateKey(generatorPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	return NewWithKey(seed, generator, networkName, opts...)
}

func NewWithKey(seed string, generator hedera.PrivateKey, networkName string, opts ...Option) (*Apostille, error) {
	if len(generator.BytesRaw()) == 0 {
		return nil, ErrInvalidPrivateKey
	}
	normalized, err := shared.NormalizeNetwork(networkName)
	if err != nil {
		return nil, err
	}

	account, err := deriveAccount(seed, generator)
	if err != nil {
		return nil, err
	}

	a := &Apostille{
		seed:      seed,
		network:   normalized,
		generator: generator,
		account:   account,
		address:   ledger.AddressFromPublicKey(account.PublicKey()),
		logger:    zerolog.Nop(),
	}
	for _, option := range opts {
		option(a)
	}
	return a, nil
}

func deriveAccount(seed string, generator hedera.PrivateKey) (hedera.PrivateKey, error) {
	digest := hex.EncodeToString(hashing.SHA256.Digest([]byte(seed)))
	signature := generator.Sign([]byte(digest))
	if len(signature) < 32 {
		return hedera.PrivateKey{}, fmt.Errorf("%w: generator produced a %d byte signature", ErrInvalidPrivateKey, len(signature))
	}
	account, err := hedera.PrivateKeyFromBytesEd25519(signature[len(signature)-32:])
	if err != nil {
		return hedera.PrivateKey{}, fmt.Errorf("failed to derive apostille account: %w", err)
	}
	return account, nil
}

// Create queues the first transfer to the apostille account. The message is
// the raw data, or its hash-based message when opts.HashFunction is set.
func (a *Apostille) Create(ctx context.Context, i initiator.Initiator, rawData []byte, opts CreateOptions) error {
	if err := a.checkNetwork(i); err != nil {
		return err
	}
	if a.isCreated(ctx) {
		return ErrAlreadyCreated
	}

	message := string(rawData)
	hashed := opts.HashFunction != nil
	if hashed {
		fileHash, err := initiator.FileHashMessage(i, rawData, opts.HashFunction)
		if err != nil {
			return err
		}
		message = fileHash
	}

	item, err := a.prepare(i, message, opts.Mosaics)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.created {
		return ErrAlreadyCreated
	}
	a.created = true
	a.queue = append(a.queue, item)
	a.contentID = hashing.ContentID(rawData)
	if hashed {
		a.apostilleHash = message
	}
	a.logger.Debug().
		Str("network", a.network).
		Str("address", a.address.String()).
		Str("item", item.ID.String()).
		Msg("apostille created")
	return nil
}

// Update queues a further transfer carrying message.
func (a *Apostille) Update(ctx context.Context, i initiator.Initiator, message string, mosaics []ledger.Mosaic) error {
	if err := a.checkNetwork(i); err != nil {
		return err
	}
	if !a.isCreated(ctx) {
		return ErrNotCreated
	}

	item, err := a.prepare(i, message, mosaics)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.queue = append(a.queue, item)
	a.mu.Unlock()
	return nil
}

// Announce runs one announcement pass over the pending queue against
// endpoint, or against the default endpoint of the network when endpoint is
// nil. Items of successful units leave the queue; items of failed units stay
// in order for the next call. Asynchronous failures are reported in the
// results only.
func (a *Apostille) Announce(ctx context.Context, endpoint *network.Endpoint) ([]announce.Result, error) {
	if !a.isCreated(ctx) {
		return nil, ErrNotCreated
	}
	if endpoint == nil {
		resolved, err := network.NewEndpoint(shared.Config{Network: a.network}, a.endpointOptions)
		if err != nil {
			return nil, err
		}
		endpoint = resolved
	}
	if endpoint.Client == nil {
		return nil, fmt.Errorf("endpoint has no submission client")
	}
	if endpoint.Client.Network() != a.network {
		return nil, fmt.Errorf("%w: endpoint is on %s", ErrNetworkMismatch, endpoint.Client.Network())
	}

	var feed bonded.Feed
	if endpoint.Feed != nil {
		feed = endpoint.Feed
	}
	return a.AnnounceTo(ctx, endpoint.Client, feed)
}

// AnnounceTo is Announce over an explicit submitter and confirmation feed.
func (a *Apostille) AnnounceTo(ctx context.Context, submitter announce.Submitter, feed bonded.Feed) ([]announce.Result, error) {
	if submitter == nil {
		return nil, fmt.Errorf("submitter is required")
	}
	if !a.isCreated(ctx) {
		return nil, ErrNotCreated
	}

	snapshot := a.Pending()
	if len(snapshot) == 0 {
		return nil, nil
	}

	options := append([]announce.Option{announce.WithLogger(a.logger)}, a.announceOptions...)
	results := announce.NewPass(submitter, feed, options...).Run(ctx, snapshot)

	announced := map[uuid.UUID]struct{}{}
	failed := 0
	for _, result := range results {
		if !result.Succeeded() {
			failed++
			continue
		}
		for _, id := range result.ItemIDs {
			announced[id] = struct{}{}
		}
	}

	a.mu.Lock()
	kept := a.queue[:0]
	for _, item := range a.queue {
		if _, ok := announced[item.ID]; !ok {
			kept = append(kept, item)
		}
	}
	a.queue = kept
	remaining := len(a.queue)
	a.mu.Unlock()

	a.logger.Info().
		Str("network", a.network).
		Int("units", len(results)).
		Int("failed", failed).
		Int("pending", remaining).
		Msg("announcement pass finished")
	return results, nil
}

// IsCreated reports whether Create succeeded locally or the account already
// has transactions on chain.
func (a *Apostille) IsCreated(ctx context.Context) bool {
	return a.isCreated(ctx)
}

func (a *Apostille) isCreated(ctx context.Context) bool {
	a.mu.Lock()
	created := a.created
	a.mu.Unlock()
	if created || a.history == nil {
		return created
	}

	found, err := a.history.HasTransactions(ctx, strings.ToUpper(a.PublicKey().StringRaw()))
	if err != nil {
		a.logger.Warn().Err(err).Str("address", a.address.String()).Msg("creation lookup failed")
		return false
	}
	if !found {
		return false
	}

	a.mu.Lock()
	a.created = true
	a.createdOnLedger = true
	a.mu.Unlock()
	return true
}

func (a *Apostille) checkNetwork(i initiator.Initiator) error {
	if i == nil {
		return fmt.Errorf("initiator is required")
	}
	initiatorNetwork, err := shared.NormalizeNetwork(i.Network())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetworkMismatch, err)
	}
	if initiatorNetwork != a.network {
		return fmt.Errorf("%w: initiator is on %s, apostille on %s", ErrNetworkMismatch, initiatorNetwork, a.network)
	}
	return nil
}

func (a *Apostille) prepare(i initiator.Initiator, message string, mosaics []ledger.Mosaic) (batch.PreparedItem, error) {
	payload := ledger.NewTransfer(
		ledger.NewDeadline(0),
		a.address,
		mosaics,
		ledger.PlainMessage(message),
		a.network,
	)
	return batch.NewPreparedItem(i, payload)
}

func (a *Apostille) Seed() string { return a.seed }

func (a *Apostille) Network() string { return a.network }

func (a *Apostille) PrivateKey() hedera.PrivateKey { return a.account }

func (a *Apostille) PublicKey() hedera.PublicKey { return a.account.PublicKey() }

func (a *Apostille) Address() ledger.Address { return a.address }

// HashSigner is the public key of the generator that derived the account.
func (a *Apostille) HashSigner() hedera.PublicKey { return a.generator.PublicKey() }

// ApostilleHash is the hash-based message recorded by Create, empty when the
// raw data was recorded.
func (a *Apostille) ApostilleHash() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.apostilleHash
}

// ContentID is the CID of the data passed to Create.
func (a *Apostille) ContentID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.contentID
}

// CreatedOnLedger reports whether creation was detected through the
// history reader rather than by a local Create.
func (a *Apostille) CreatedOnLedger() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.createdOnLedger
}

// Pending returns a copy of the queue.
func (a *Apostille) Pending() []batch.PreparedItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]batch.PreparedItem(nil), a.queue...)
}
