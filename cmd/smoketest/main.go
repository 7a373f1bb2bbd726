// smoketest verifies live connectivity against a running bot instance.
// Run with: go run ./cmd/smoketest/main.go
// Reads the same env vars as the main server (source .env first).
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const localAPI = "http://localhost:8080"

func main() {
	passed := 0
	failed := 0

	run := func(name string, fn func() error) {
		fmt.Printf("  %-55s", name)
		if err := fn(); err != nil {
			fmt.Printf("FAIL — %v\n", err)
			failed++
		} else {
			fmt.Printf("OK\n")
			passed++
		}
	}

	fmt.Println("\n── Local API ───────────────────────────────────────────────")
	run("GET /health returns 200 + {status:healthy}", checkHealth)

	fmt.Println("\n── Webhook verification ────────────────────────────────────")
	run("GET /webhook with correct token echoes challenge", checkWebhookVerify)
	run("GET /webhook with wrong token returns 403", checkWebhookWrongToken)

	fmt.Println("\n── Webhook delivery path ───────────────────────────────────")
	run("POST /webhook with status payload returns ignored", checkWebhookStatusPayload)

	fmt.Printf("\n%d passed, %d failed\n\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

func checkHealth() error {
	resp, err := get(localAPI + "/health")
	if err != nil {
		return fmt.Errorf("could not reach server (is it running?): %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if body["status"] != "healthy" {
		return fmt.Errorf("expected status=healthy, got %q", body["status"])
	}
	return nil
}

func checkWebhookVerify() error {
	token := requireEnv("WHATSAPP_VERIFY_TOKEN")
	url := fmt.Sprintf("%s/webhook?hub.mode=subscribe&hub.challenge=12345&hub.verify_token=%s", localAPI, token)
	resp, err := get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("expected 200, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if string(b) != "12345" {
		return fmt.Errorf("expected challenge=12345, got %q", string(b))
	}
	return nil
}

func checkWebhookWrongToken() error {
	url := localAPI + "/webhook?hub.mode=subscribe&hub.challenge=12345&hub.verify_token=definitely-wrong"
	resp, err := get(url)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		return fmt.Errorf("expected 403, got %d", resp.StatusCode)
	}
	return nil
}

func checkWebhookStatusPayload() error {
	// A delivery receipt: well-formed, contains no messages. The server
	// must answer ignored without calling the WhatsApp API.
	payload := map[string]any{
		"object": "whatsapp_business_account",
		"entry": []any{
			map[string]any{
				"changes": []any{
					map[string]any{
						"value": map[string]any{
							"statuses": []any{map[string]any{"id": "wamid.smoke", "status": "delivered"}},
						},
					},
				},
			},
		},
	}
	b, _ := json.Marshal(payload)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, localAPI+"/webhook", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("POST /webhook failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return fmt.Errorf("gateway not configured on the server (503)")
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("expected 200, got %d: %s", resp.StatusCode, string(body))
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if body["status"] != "ignored" {
		return fmt.Errorf("expected status=ignored, got %q", body["status"])
	}
	return nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func get(url string) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Printf("\n  WARN: %s is not set — test will fail\n", key)
	}
	return v
}
