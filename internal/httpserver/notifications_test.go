package httpserver

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"minishop/internal/cart"
	"minishop/internal/domain"
)

func readUntil(t *testing.T, sc *bufio.Scanner, want string) {
	t.Helper()
	for sc.Scan() {
		if strings.Contains(sc.Text(), want) {
			return
		}
	}
	t.Fatalf("stream ended before %q: %v", want, sc.Err())
}

func TestStreamNotifications(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/cart/notifications", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}
	sc := bufio.NewScanner(resp.Body)
	readUntil(t, sc, "event:connected")

	widget := domain.Product{ID: 1, Name: "Widget", Price: decimal.NewFromInt(10)}
	if _, err := env.provider.Dispatch(ctx, cart.AddItem{Product: widget}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	readUntil(t, sc, "event:added")
	readUntil(t, sc, "Widget added to cart!")

	if _, err := env.provider.Dispatch(ctx, cart.UpdateQuantity{ID: 1, Quantity: 3}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	readUntil(t, sc, "Updated Widget quantity in cart!")

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for env.hub.Subscribers() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriber not released after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
