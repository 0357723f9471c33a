package rest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/veloxts/compiler/gen"
	"github.com/syssam/veloxts/schema"
)

var responses = map[string]string{
	"/api/collections": `{"data": [
		{"collection": "directus_users", "meta": {"singleton": false}},
		{"collection": "posts", "meta": {"note": "Blog posts"}, "schema": {"name": "posts"}}
	]}`,
	"/api/fields": `{"data": [
		{"collection": "directus_users", "field": "id", "type": "uuid", "schema": {"is_primary_key": true}},
		{"collection": "posts", "field": "id", "type": "integer", "schema": {"is_primary_key": true, "is_nullable": false}},
		{"collection": "posts", "field": "author", "type": "uuid", "meta": {"special": ["m2o"]}, "schema": {"is_nullable": true}}
	]}`,
	"/api/relations": `{"data": [
		{"collection": "directus_users", "field": "role", "related_collection": "directus_roles"},
		{"collection": "posts", "field": "author", "related_collection": "directus_users", "meta": {"many_collection": "posts", "many_field": "author"}}
	]}`,
}

func server(t *testing.T, token string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+token {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"errors": [{"message": "Invalid user credentials."}]}`))
			return
		}
		body, ok := responses[r.URL.Path]
		if !ok || r.URL.Query().Get("limit") != "-1" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Snapshot(t *testing.T) {
	require := require.New(t)
	var hits atomic.Int32
	srv := server(t, "secret", &hits)

	c := &Client{BaseURL: srv.URL + "/api/", Token: "secret", HTTP: srv.Client()}
	require.Equal(srv.URL+"/api/", c.String())
	s, err := c.Snapshot(context.Background())
	require.NoError(err)
	require.Equal(int32(3), hits.Load())

	require.Len(s.Collections, 1, "system collections are left out")
	require.Equal("Blog posts", s.Collections[0].Note())
	require.Len(s.Fields, 2)
	require.True(s.Fields[1].HasSpecial(schema.SpecialM2O))
	require.Len(s.Relations, 1)
	require.Equal("directus_users", s.Relations[0].Related())

	out := string(gen.NewGraph(nil, s).Gen())
	require.Contains(out, "export interface Post {\n  id: number;\n  author?: string | DirectusUser;\n}\n")
}

func TestClient_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := server(t, "secret", &hits)

	t.Run("unauthorized", func(t *testing.T) {
		_, err := (&Client{BaseURL: srv.URL + "/api", Token: "wrong"}).Snapshot(context.Background())
		var serr *gen.SourceError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, "rest", serr.Source)
		assert.Contains(t, serr.Message, "401 Unauthorized: Invalid user credentials.")
	})

	t.Run("not found", func(t *testing.T) {
		_, err := (&Client{BaseURL: srv.URL + "/v2", Token: "secret"}).Snapshot(context.Background())
		assert.True(t, gen.IsSourceError(err))
		assert.ErrorContains(t, err, "404 Not Found")
	})

	t.Run("decode", func(t *testing.T) {
		bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": [`))
		}))
		defer bad.Close()
		_, err := (&Client{BaseURL: bad.URL}).Snapshot(context.Background())
		assert.True(t, gen.IsSourceError(err))
		assert.ErrorContains(t, err, "decode")
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := (&Client{BaseURL: "http://[::1"}).Snapshot(context.Background())
		assert.True(t, gen.IsSourceError(err))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		before := hits.Load()
		_, err := (&Client{BaseURL: srv.URL + "/api", Token: "secret"}).Snapshot(ctx)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, before, hits.Load())
	})
}

func TestClient_SystemCollectionFields(t *testing.T) {
	require := require.New(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collections":
			_, _ = w.Write([]byte(`{"data": [
				{"collection": "directus_users", "meta": {"system": true}},
				{"collection": "companies", "schema": {"name": "companies"}}
			]}`))
		case "/fields":
			_, _ = w.Write([]byte(`{"data": [
				{"collection": "directus_users", "field": "email", "type": "string", "meta": {"system": true}, "schema": {"is_nullable": true}},
				{"collection": "directus_users", "field": "phone", "type": "string", "meta": {"system": false}, "schema": {"is_nullable": true}},
				{"collection": "directus_users", "field": "company", "type": "integer", "meta": {"special": ["m2o"]}, "schema": {"is_nullable": true}},
				{"collection": "companies", "field": "id", "type": "integer", "schema": {"is_primary_key": true}}
			]}`))
		case "/relations":
			_, _ = w.Write([]byte(`{"data": [
				{"collection": "directus_users", "field": "role", "related_collection": "directus_roles", "meta": {"system": true}},
				{"collection": "directus_users", "field": "company", "related_collection": "companies", "meta": {"many_collection": "directus_users", "many_field": "company"}}
			]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s, err := (&Client{BaseURL: srv.URL}).Snapshot(context.Background())
	require.NoError(err)
	require.Len(s.Collections, 1)
	require.Len(s.Fields, 3, "platform fields are left out")
	require.Equal("phone", s.Fields[0].Field)
	require.Len(s.Relations, 1)
	require.Equal("companies", s.Relations[0].Related())

	out := string(gen.NewGraph(nil, s).Gen())
	require.Contains(out, "export interface DirectusUser {\n  id: string;\n  phone?: string;\n  company?: number | Company;\n}\n")
	require.NotContains(out, "email")
}
