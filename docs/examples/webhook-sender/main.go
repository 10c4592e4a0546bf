// VidTrack Webhook Sender Example
//
// Posts signed sample Calendly and Stripe events at a running VidTrack
// instance, for testing the attribution pipeline end to end without
// real provider accounts.
//
// Usage:
//   export CALENDLY_WEBHOOK_SECRET="your_calendly_secret"
//   export STRIPE_WEBHOOK_SECRET="your_stripe_secret"
//   go run main.go -base-url http://localhost:8080 -campaign spring-launch -click-id 01HYX...
package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

func main() {
	var (
		baseURL  = flag.String("base-url", "http://localhost:8080", "VidTrack base URL")
		campaign = flag.String("campaign", "demo-launch", "utm_campaign value (the video slug)")
		clickID  = flag.String("click-id", "", "utm_term click ID from a /go/{slug} redirect")
		email    = flag.String("email", "demo.lead@example.com", "invitee and buyer email")
		amount   = flag.Int64("amount", 250000, "sale amount in cents")
	)
	flag.Parse()

	calendlySecret := os.Getenv("CALENDLY_WEBHOOK_SECRET")
	stripeSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")

	client := &http.Client{Timeout: 10 * time.Second}

	booking := fmt.Sprintf(`{
		"event": "invitee.created",
		"payload": {
			"email": %q,
			"name": "Demo Lead",
			"tracking": {"utm_campaign": %q, "utm_term": %q}
		}
	}`, *email, *campaign, *clickID)

	headers := map[string]string{}
	if calendlySecret != "" {
		headers["Calendly-Webhook-Signature"] = hexHMAC(calendlySecret, booking)
	}
	send(client, *baseURL+"/webhooks/calendly", booking, headers)

	sale := fmt.Sprintf(`{
		"type": "checkout.session.completed",
		"data": {"object": {"customer_email": %q, "amount_total": %d, "metadata": {}}}
	}`, *email, *amount)

	headers = map[string]string{}
	if stripeSecret != "" {
		ts := time.Now().Unix()
		signed := strconv.FormatInt(ts, 10) + "." + sale
		headers["Stripe-Signature"] = fmt.Sprintf("t=%d,v1=%s", ts, hexHMAC(stripeSecret, signed))
	}
	send(client, *baseURL+"/webhooks/stripe", sale, headers)
}

func hexHMAC(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func send(client *http.Client, url, body string, headers map[string]string) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	log.Printf("POST %s -> %d %s", url, resp.StatusCode, respBody)
}
