// loadgen drives random order flow at a hermes server over HTTP.
// Rate and concurrency are knobs here, not engine behavior.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"hermes/domain/instrument"
	"hermes/domain/orderbook"
	"hermes/sim"
)

func main() {
	var (
		addr     = flag.String("addr", "http://localhost:8080", "server base URL")
		prefix   = flag.String("prefix", "STK", "universe symbol prefix")
		size     = flag.Int("size", 1024, "universe size")
		scale    = flag.Int("scale", 2, "price decimal places")
		workers  = flag.Int("workers", 4, "concurrent submitters")
		orders   = flag.Int("orders", 1000, "orders per worker")
		interval = flag.Duration("interval", 0, "pause between orders per worker")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	)
	flag.Parse()

	reg, err := instrument.NewRegistry(instrument.GenerateUniverse(*prefix, *size))
	if err != nil {
		log.Fatalf("registry: %v", err)
	}

	var sent, failed, fills atomic.Uint64

	var wg sync.WaitGroup
	start := time.Now()
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			src := sim.NewSource(reg, *seed+int64(w), sim.Config{})
			client := &http.Client{Timeout: 5 * time.Second}

			for i := 0; i < *orders; i++ {
				o := src.Next()
				n, err := submit(client, *addr, reg, o, int32(*scale))
				if err != nil {
					failed.Add(1)
				} else {
					sent.Add(1)
					fills.Add(uint64(n))
				}
				if *interval > 0 {
					time.Sleep(*interval)
				}
			}
		}(w)
	}
	wg.Wait()

	elapsed := time.Since(start)
	fmt.Printf("sent=%d failed=%d fills=%d elapsed=%s rate=%.0f/s\n",
		sent.Load(), failed.Load(), fills.Load(), elapsed,
		float64(sent.Load())/elapsed.Seconds())
}

type submitResponse struct {
	Trades []json.RawMessage `json:"trades"`
}

func submit(client *http.Client, addr string, reg *instrument.Registry, o sim.Order, scale int32) (int, error) {
	sym, _ := reg.Symbol(o.Instrument)
	side := "BUY"
	if o.Side == orderbook.Ask {
		side = "SELL"
	}

	body, err := json.Marshal(map[string]any{
		"symbol":   sym,
		"side":     side,
		"quantity": o.Qty,
		"price":    decimal.New(o.Price, -scale).String(),
	})
	if err != nil {
		return 0, err
	}

	resp, err := client.Post(addr+"/api/v1/orders", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}

	var out submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return len(out.Trades), nil
}
