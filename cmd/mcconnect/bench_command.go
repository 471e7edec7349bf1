package main

import (
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/codemob-dev/mc-connect/internal/protocol"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newBenchCommand(ctx *commandContext) *cobra.Command {
	var count int
	var concurrency int
	var body string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Send many concurrent print requests over one connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 || concurrency <= 0 {
				return fmt.Errorf("--count and --concurrency must be positive")
			}
			client, err := ctx.dial(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()

			latencies := make([]time.Duration, count)
			var next atomic.Int64
			var failures atomic.Int64
			start := time.Now()

			g, gctx := errgroup.WithContext(cmd.Context())
			for w := 0; w < concurrency; w++ {
				g.Go(func() error {
					for {
						i := int(next.Add(1)) - 1
						if i >= count {
							return nil
						}
						callCtx, cancel := ctx.callContext(gctx)
						sent := time.Now()
						reply, err := client.Call(callCtx, protocol.NewText(body))
						cancel()
						if err != nil {
							return fmt.Errorf("request %d: %w", i, err)
						}
						latencies[i] = time.Since(sent)
						if reply.Tag() == protocol.TagFailure {
							failures.Add(1)
						}
					}
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			elapsed := time.Since(start)

			sort.Slice(latencies, func(i, j int) bool {
				return latencies[i] < latencies[j]
			})
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "requests=%d concurrency=%d failures=%d elapsed=%s rate=%.0f/s\n",
				count, concurrency, failures.Load(), elapsed.Round(time.Millisecond), float64(count)/elapsed.Seconds())
			fmt.Fprintf(out, "p50=%s p99=%s max=%s\n",
				latencies[count/2], latencies[(count*99)/100], latencies[count-1])
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 1000, "Number of requests")
	cmd.Flags().IntVar(&concurrency, "concurrency", 16, "Concurrent senders")
	cmd.Flags().StringVar(&body, "body", "", "Text body for each request")
	return cmd
}
