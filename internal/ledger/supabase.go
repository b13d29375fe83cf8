// Package ledger is the client side of the external balance ledger. The
// content-resolution core never touches it; only the HTTP layer charges a
// request fee before resolving.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrInsufficientBalance signals that the user cannot afford the operation.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Client talks to the Supabase REST surface that owns user balances.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
}

func NewClient(baseURL, anonKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c.baseURL != "" && c.anonKey != ""
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Content-Type", "application/json")
}

// CheckBalance reports whether the user's balance covers the amount.
func (c *Client) CheckBalance(ctx context.Context, userID int64, amount float64) (bool, error) {
	url := fmt.Sprintf("%s/rest/v1/user_data?select=balance&user_id=eq.%d", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("balance lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("balance lookup returned status %d", resp.StatusCode)
	}

	var rows []struct {
		Balance float64 `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return false, fmt.Errorf("failed to decode balance response: %w", err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	return rows[0].Balance >= amount, nil
}

// Debit charges the user through the spend_balance stored procedure. The
// procedure performs the decrement atomically; there is deliberately no
// client-side fallback that patches the balance column directly.
func (c *Client) Debit(ctx context.Context, userID int64, amount float64, description string) error {
	ok, err := c.CheckBalance(ctx, userID, amount)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientBalance
	}

	payload, err := json.Marshal(map[string]interface{}{
		"p_user_id":     userID,
		"p_amount":      amount,
		"p_description": description,
	})
	if err != nil {
		return err
	}

	url := c.baseURL + "/rest/v1/rpc/spend_balance"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("debit call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("spend_balance returned status %d", resp.StatusCode)
	}
	return nil
}
