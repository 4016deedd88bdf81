package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"

	"github.com/rl1809/storefront/internal/adapter/handler"
	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
	"github.com/rl1809/storefront/internal/logging"
)

const (
	totalRequests = 200
	concurrency   = 20
)

func main() {
	ctx := context.Background()
	quiet := logging.Discard()

	// In-process storefront with a logged-in customer
	sessions := service.NewSessionStore(storage.NewMemoryAdapter(), quiet)
	sessions.Login(domain.RoleUser)
	cart := service.NewCartStore(quiet)
	orders := service.NewOrderService(nil, cart, sessions, quiet)

	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(handler.GuardInterceptor(service.NewRouteGuard(sessions), domain.RoleUser)))
	handler.RegisterCartServer(grpcServer, handler.NewGRPCHandler(cart, orders, quiet))

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}
	go grpcServer.Serve(lis)
	defer grpcServer.Stop()

	conn, err := handler.DialCart(lis.Addr().String())
	if err != nil {
		log.Fatalf("failed to dial: %v", err)
	}
	defer conn.Close()
	client := handler.NewCartClient(conn)

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent adds
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(n int) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := client.AddItem(ctx, &handler.AddItemRequest{
				Name:     fmt.Sprintf("item-%d", n),
				Price:    int64(100 + n),
				Quantity: 1,
			})
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Concurrency:      %d\n", concurrency)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == totalRequests && fail == 0 {
		fmt.Printf("PASS: all %d adds succeeded\n", totalRequests)
	} else {
		fmt.Printf("FAIL: expected %d successful adds, got %d\n", totalRequests, success)
	}

	// Verify the final cart
	resp, err := client.ListItems(ctx)
	if err != nil {
		log.Fatalf("failed to list cart: %v", err)
	}

	seen := make(map[int64]bool, len(resp.Items))
	ordered := true
	for i, item := range resp.Items {
		if seen[item.ID] {
			fmt.Printf("FAIL: duplicate id %d\n", item.ID)
		}
		seen[item.ID] = true
		if i > 0 && resp.Items[i-1].ID <= item.ID {
			ordered = false
		}
	}

	if len(seen) == totalRequests {
		fmt.Printf("PASS: %d unique ids\n", len(seen))
	} else {
		fmt.Printf("FAIL: expected %d unique ids, got %d\n", totalRequests, len(seen))
	}
	if ordered {
		fmt.Println("PASS: newest item first")
	} else {
		fmt.Println("FAIL: cart is not ordered newest first")
	}
	fmt.Printf("Cart Count: %d, Total: %d\n", resp.Count, resp.Total)
}
