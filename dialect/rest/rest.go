// Package rest reads schema snapshots over the platform's REST API.
//
//	c := &rest.Client{BaseURL: "https://cms.example.com", Token: os.Getenv("VELOXTS_TOKEN")}
//	snap, err := c.Snapshot(ctx)
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/veloxts/compiler/gen"
	"github.com/syssam/veloxts/schema"
)

// Client fetches the collections, fields and relations endpoints
// concurrently and assembles them into a snapshot.
type Client struct {
	// BaseURL is the root of the API, e.g. "https://cms.example.com".
	BaseURL string
	// Token is sent as a bearer token when set.
	Token string
	// HTTP is the client used for requests. Nil uses http.DefaultClient.
	HTTP *http.Client
}

// String returns the base URL.
func (c *Client) String() string {
	return c.BaseURL
}

// Snapshot fetches the schema. System collections and the platform's own
// fields and relations are left out; their shape comes from the catalog.
// Fields and relations users added to system collections are kept.
func (c *Client) Snapshot(ctx context.Context) (*schema.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := &schema.Snapshot{Version: 1}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return c.get(ctx, "collections", &s.Collections) })
	eg.Go(func() error { return c.get(ctx, "fields", &s.Fields) })
	eg.Go(func() error { return c.get(ctx, "relations", &s.Relations) })
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	s.Collections = slices.DeleteFunc(s.Collections, func(coll *schema.Collection) bool {
		return coll == nil || schema.IsSystem(coll.Collection)
	})
	s.Fields = slices.DeleteFunc(s.Fields, func(f *schema.Field) bool {
		return f == nil || f.Builtin()
	})
	s.Relations = slices.DeleteFunc(s.Relations, func(r *schema.Relation) bool {
		return r == nil || r.Builtin()
	})
	return s, nil
}

// apiError is the error body returned by the platform.
type apiError struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// get decodes the data member of GET /endpoint into v.
func (c *Client) get(ctx context.Context, endpoint string, v any) error {
	u, err := url.JoinPath(c.BaseURL, endpoint)
	if err != nil {
		return gen.NewSourceError("rest", c.BaseURL, "invalid base URL", err)
	}
	u += "?limit=-1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return gen.NewSourceError("rest", u, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return gen.NewSourceError("rest", u, "", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("GET %s: %s", endpoint, resp.Status)
		var body apiError
		if json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body) == nil && len(body.Errors) > 0 {
			msg += ": " + body.Errors[0].Message
		}
		return gen.NewSourceError("rest", u, msg, nil)
	}
	env := struct {
		Data any `json:"data"`
	}{Data: v}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return gen.NewSourceError("rest", u, "decode "+endpoint, err)
	}
	return nil
}
