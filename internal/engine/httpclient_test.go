package engine

import (
	"context"
	"testing"
	"time"
)

func TestBrowserClientHonorsContext(t *testing.T) {
	bc, err := NewBrowserClient(15)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, _, _, err = bc.Do(ctx, "GET", "http://127.0.0.1:1/unreachable", ChromeHeaders(), nil)
	if err == nil {
		t.Fatal("expected error, context was already cancelled")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("cancelled request returned after %s, not promptly", elapsed)
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		if !IsRetryableStatus(code) {
			t.Errorf("status %d should be retryable", code)
		}
	}
	for _, code := range []int{200, 301, 403, 404} {
		if IsRetryableStatus(code) {
			t.Errorf("status %d should not be retryable", code)
		}
	}
}

func TestHeaderSetsCarryUserAgent(t *testing.T) {
	if ChromeHeaders()["user-agent"] == "" {
		t.Error("chrome header set missing user-agent")
	}
	if FirefoxHeaders()["user-agent"] == "" {
		t.Error("firefox header set missing user-agent")
	}
}
