// Command demo walks the storefront purchase flow end to end against a
// running gateway, using the simulated wallet in place of a real
// wallet connection.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/hakimbdev/tonstoremarketspot/internal/auth"
	"github.com/hakimbdev/tonstoremarketspot/internal/catalog"
	"github.com/hakimbdev/tonstoremarketspot/internal/client"
	"github.com/hakimbdev/tonstoremarketspot/internal/config"
	"github.com/hakimbdev/tonstoremarketspot/internal/purchase"
	"github.com/hakimbdev/tonstoremarketspot/internal/wallet"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	baseURL := flag.String("gateway", getenv("GATEWAY_URL", "http://localhost:8081"), "gateway base URL")
	productID := flag.String("product", "", "product id to buy (default: first in catalog)")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gw := client.New(*baseURL)

	// log in as a demo Telegram user; with no bot token configured the
	// gateway skips hash verification
	sess, user, err := gw.TelegramLogin(ctx, auth.TelegramAuthRequest{
		TelegramID: "1000001",
		Username:   "demo_buyer",
		FirstName:  "Demo",
		AuthDate:   fmt.Sprint(time.Now().Unix()),
	})
	if err != nil {
		log.Fatalf("telegram login: %v", err)
	}
	fmt.Printf("logged in as %s (user %s)\n", user.Username, user.ID)

	cat := catalog.Sample()
	if err := cat.Refresh(ctx, gw, sess); err != nil {
		log.Printf("catalog refresh failed, using sample set: %v", err)
	}
	products := cat.Products()
	if len(products) == 0 {
		log.Fatal("empty catalog")
	}
	target := products[0]
	if *productID != "" {
		p, ok := cat.Get(*productID)
		if !ok {
			log.Fatalf("product %q not in catalog", *productID)
		}
		target = p
	}

	sim := wallet.NewSimulator("UQBuyer00000000000000000000000000000000000000000")
	coord := purchase.New(sim, gw, cfg.ReceiverAddress, cfg.IntentValidity)

	// first attempt with the wallet disconnected: the flow must stop at
	// the connect prompt without touching the gateway
	res := coord.Purchase(ctx, sess, target)
	fmt.Printf("disconnected attempt: %s (prompts shown: %d)\n", res.Status, sim.Prompts())

	sim.Connect()
	res = coord.Purchase(ctx, sess, target)
	switch res.Status {
	case purchase.StatusPurchased:
		fmt.Printf("purchased %q for %s TON, order %s, tx %s\n",
			target.Name, target.Price.Format(), res.Order.ID, res.Receipt)
	case purchase.StatusRecordFailed:
		fmt.Printf("payment sent but order recording failed (receipt %s): %v\n", res.Receipt, res.Err)
		os.Exit(1)
	default:
		fmt.Printf("purchase ended with %s: %v\n", res.Status, res.Err)
		os.Exit(1)
	}

	if err := coord.RefreshPurchased(ctx, sess); err == nil {
		fmt.Printf("purchased state for %q: %v\n", target.ID, coord.Purchased(target.ID))
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
