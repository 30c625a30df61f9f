// Command sse_load opens many concurrent subscriptions to the invoiceview
// snapshot stream and reports how many view events each round delivered.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type counters struct {
	connected   atomic.Int64
	connectErrs atomic.Int64
	streamErrs  atomic.Int64
	events      atomic.Int64
	badPayloads atomic.Int64
}

func main() {
	targetURL := flag.String("url", "http://localhost:8080/api/view/stream", "view stream URL")
	connections := flag.Int("conns", 500, "number of concurrent subscriptions")
	testDuration := flag.Duration("dur", 60*time.Second, "test duration (0 for until interrupted)")
	rampUp := flag.Duration("ramp", time.Second, "spread connection starts across this window")
	flag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	if *connections <= 0 {
		logger.Fatal("invalid conns", zap.Int("conns", *connections))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *testDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *testDuration)
		defer cancel()
	}

	client := &http.Client{
		Transport: &http.Transport{
			MaxConnsPerHost:     *connections + 10,
			MaxIdleConnsPerHost: *connections + 10,
			DisableCompression:  true,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
		},
	}

	logger.Info("starting view stream load",
		zap.String("url", *targetURL),
		zap.Int("conns", *connections),
		zap.Duration("dur", *testDuration),
		zap.Duration("ramp", *rampUp))

	var c counters
	start := time.Now()
	interval := *rampUp / time.Duration(*connections)

	go report(ctx, logger, &c, start)

	g := new(errgroup.Group)
	for i := 0; i < *connections; i++ {
		if i > 0 && interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(interval):
			}
		}
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			subscribe(ctx, client, *targetURL, &c)
			return nil
		})
	}
	_ = g.Wait()

	elapsed := time.Since(start)
	fmt.Printf("done: connected=%d connect_errs=%d stream_errs=%d events=%d bad_payloads=%d elapsed=%s events/s=%.2f\n",
		c.connected.Load(),
		c.connectErrs.Load(),
		c.streamErrs.Load(),
		c.events.Load(),
		c.badPayloads.Load(),
		elapsed.Truncate(time.Millisecond),
		float64(c.events.Load())/elapsed.Seconds(),
	)
}

func subscribe(ctx context.Context, client *http.Client, url string, c *counters) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		c.connectErrs.Add(1)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.connectErrs.Add(1)
		return
	}

	c.connected.Add(1)
	if err := readStream(resp.Body, c); err != nil && ctx.Err() == nil {
		c.streamErrs.Add(1)
	}
}

func report(ctx context.Context, logger *zap.Logger, c *counters, start time.Time) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			logger.Info("status",
				zap.Int64("connected", c.connected.Load()),
				zap.Int64("connect_errs", c.connectErrs.Load()),
				zap.Int64("stream_errs", c.streamErrs.Load()),
				zap.Int64("events", c.events.Load()),
				zap.Int64("bad_payloads", c.badPayloads.Load()),
				zap.Duration("elapsed", time.Since(start).Truncate(time.Second)))
		}
	}
}
