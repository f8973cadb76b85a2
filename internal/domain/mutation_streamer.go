package domain

import (
	"context"
	"log/slog"

	m "gooze.dev/pkg/weave/internal/model"
)

// MutantStreamer feeds mutation points to the harness workers.
type MutantStreamer interface {
	Stream(ctx context.Context, points []m.MutationPoint, buffer int) <-chan m.MutationPoint
	Shard(ctx context.Context, in <-chan m.MutationPoint, buffer, shardIndex, totalShardCount int) <-chan m.MutationPoint
}

type mutantStreamer struct{}

// NewMutantStreamer creates a MutantStreamer.
func NewMutantStreamer() MutantStreamer {
	return &mutantStreamer{}
}

// Stream sends points in order. The channel closes when done or when ctx is
// cancelled.
func (ms *mutantStreamer) Stream(ctx context.Context, points []m.MutationPoint, buffer int) <-chan m.MutationPoint {
	ch := make(chan m.MutationPoint, normalizeBufferSize(buffer))

	go func() {
		defer close(ch)

		for _, p := range points {
			select {
			case <-ctx.Done():
				slog.Debug("Mutant streaming cancelled")
				return
			case ch <- p:
			}
		}
	}()

	return ch
}

// Shard keeps every totalShardCount-th point starting at shardIndex, so
// separate processes can split one run. A non-positive count passes every
// point through.
func (ms *mutantStreamer) Shard(
	ctx context.Context,
	in <-chan m.MutationPoint,
	buffer, shardIndex, totalShardCount int,
) <-chan m.MutationPoint {
	ch := make(chan m.MutationPoint, normalizeBufferSize(buffer))

	go func() {
		defer close(ch)

		if totalShardCount > 0 {
			slog.Debug("Sharding mutants", "shardIndex", shardIndex, "totalShardCount", totalShardCount)
		}

		index := 0

		for p := range in {
			keep := totalShardCount <= 0 || index%totalShardCount == shardIndex
			index++

			if !keep {
				continue
			}

			select {
			case <-ctx.Done():
				slog.Debug("Mutant sharding cancelled")
				return
			case ch <- p:
			}
		}
	}()

	return ch
}

func normalizeBufferSize(n int) int {
	if n <= 0 {
		return 1
	}

	return n
}
