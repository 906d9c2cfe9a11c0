package announce

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hashgraph-online/apostille-sdk-go/pkg/batch"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/bonded"
	"github.com/hashgraph-online/apostille-sdk-go/pkg/ledger"
)

// Pass announces one queue snapshot. Planning and signing follow queue
// order; submissions and bonded commits then run concurrently.
type Pass struct {
	announcer *Announcer
	protocol  *bonded.Protocol
	feed      bonded.Feed
	options   options
}

func NewPass(submitter Submitter, feed bonded.Feed, opts ...Option) *Pass {
	resolved := buildOptions(opts)
	metrics := resolved.metrics
	protocol := bonded.New(
		submitter,
		feed,
		bonded.WithConfirmationTimeout(resolved.confirmationTimeout),
		bonded.WithLogger(resolved.logger),
		bonded.WithTransitionHook(func(_ *bonded.Commitment, state bonded.State) {
			metrics.observeTransition(state.String())
		}),
	)
	return &Pass{
		announcer: &Announcer{submitter: submitter, options: resolved},
		protocol:  protocol,
		feed:      feed,
		options:   resolved,
	}
}

// Run returns one result per planned unit, ordered by unit index. Failures
// are reported in the results, never as an error. The feed is closed when
// every unit has finished.
func (p *Pass) Run(ctx context.Context, items []batch.PreparedItem) []Result {
	units := batch.Plan(items)
	results := make([]Result, len(units))
	if len(units) == 0 {
		return results
	}

	deadline := ledger.NewDeadline(p.options.deadline)
	group, groupCtx := errgroup.WithContext(ctx)

	for index, unit := range units {
		index, unit := index, unit
		base := Result{UnitIndex: unit.Index, Kind: unit.Kind, ItemIDs: unit.ItemIDs()}

		if unit.Kind == batch.UnitBonded {
			item := unit.Items[0]
			commitment, err := bonded.Prepare(item.Initiator, item.Payload, deadline)
			if err != nil {
				base.State = bonded.StateAbandoned.String()
				base.Err = err
				results[index] = base
				p.announcer.Report(base)
				continue
			}
			group.Go(func() error {
				result := base
				result.Hash = commitment.Aggregate.Hash
				result.Err = p.protocol.Commit(groupCtx, commitment)
				result.State = commitment.State().String()
				results[index] = result
				p.announcer.Report(result)
				return nil
			})
			continue
		}

		signed, err := batch.SignUnit(unit, deadline)
		if err != nil {
			base.State = StateFailed
			base.Err = err
			results[index] = base
			p.announcer.Report(base)
			continue
		}
		group.Go(func() error {
			results[index] = p.announcer.Submit(groupCtx, unit, signed)
			return nil
		})
	}

	_ = group.Wait()
	if closer, ok := p.feed.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			p.options.logger.Debug().Err(err).Msg("failed to close confirmation feed")
		}
	}
	return results
}
