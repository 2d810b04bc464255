// Package store talks to the local persistence server. The server owns the
// durable side of the system: pet diet config, discovered item catalogs,
// snapshots of state and inventory, and the action log. Everything here is
// last-write-wins; the client never caches.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PetDiet is the feeding config for one pet: crop species in preference
// order plus the hunger ceiling used to decide when a pet counts as full.
type PetDiet struct {
	Diets     []string `json:"diets"`
	MaxHunger int      `json:"maxHunger"`
}

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string, opts ...ClientOpt) *Client {
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State fetches the last pushed state snapshot. Missing state comes back as
// an empty document, not an error.
func (c *Client) State(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	if err := c.getJSON(ctx, "/api/state", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PushState uploads the full state snapshot.
func (c *Client) PushState(ctx context.Context, doc map[string]any) error {
	return c.postJSON(ctx, "/api/state", doc)
}

// Inventory fetches the last pushed inventory listing.
func (c *Client) Inventory(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := c.getJSON(ctx, "/api/inventory", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PushInventory uploads the inventory listing.
func (c *Client) PushInventory(ctx context.Context, items []map[string]any) error {
	return c.postJSON(ctx, "/api/inventory", items)
}

// RemoveInventoryID flags an item id as gone on the server side. Used by
// the feeder when the mirror keeps advertising an item the game no longer
// honors.
func (c *Client) RemoveInventoryID(ctx context.Context, id string) error {
	return c.postJSON(ctx, "/api/inventory/remove_id", map[string]string{"id": id})
}

// PetDiets fetches the full diet config. The server has served two shapes
// over time: a flat {petId: [species...]} map and the richer
// {"pets": {petId: {"diets": [...], "maxHunger": n}}}. Both normalize to
// the same result.
func (c *Client) PetDiets(ctx context.Context) (map[string]PetDiet, error) {
	var raw map[string]json.RawMessage
	if err := c.getJSON(ctx, "/api/pet_diets", &raw); err != nil {
		return nil, err
	}
	return normalizeDiets(raw)
}

// PetDiet fetches the diet for a single pet id.
func (c *Client) PetDiet(ctx context.Context, petID string) (PetDiet, error) {
	var diet PetDiet
	if err := c.getJSON(ctx, "/api/pet_diet/"+url.PathEscape(petID), &diet); err != nil {
		return PetDiet{}, err
	}
	return diet, nil
}

// DiscoveredItems fetches the catalog of item names seen so far, keyed by
// shop kind.
func (c *Client) DiscoveredItems(ctx context.Context) (map[string][]string, error) {
	var out map[string][]string
	if err := c.getJSON(ctx, "/api/discovered_items", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Log appends one line to the server-side action log. The server stamps
// the time.
func (c *Client) Log(ctx context.Context, line string) error {
	return c.postJSON(ctx, "/api/log", map[string]string{"message": line})
}

func normalizeDiets(raw map[string]json.RawMessage) (map[string]PetDiet, error) {
	out := map[string]PetDiet{}

	if pets, ok := raw["pets"]; ok {
		var nested map[string]PetDiet
		if err := json.Unmarshal(pets, &nested); err != nil {
			return nil, fmt.Errorf("decoding pet diets: %w", err)
		}
		for id, diet := range nested {
			out[id] = diet
		}
		return out, nil
	}

	// Legacy flat shape: petId -> [species...].
	for id, v := range raw {
		var diets []string
		if err := json.Unmarshal(v, &diets); err != nil {
			return nil, fmt.Errorf("decoding diet for %q: %w", id, err)
		}
		out[id] = PetDiet{Diets: diets}
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned %d: %s", req.URL.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", req.URL.Path, err)
	}
	return nil
}
