package datastore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRESTClientRequiresConfig(t *testing.T) {
	_, err := NewRESTClient(RESTConfig{BaseURL: "https://example.supabase.co"})
	assert.ErrorIs(t, err, errMissingRESTConfig)
	_, err = NewRESTClient(RESTConfig{APIKey: "anon"})
	assert.ErrorIs(t, err, errMissingRESTConfig)
}

func TestRESTClientCheckSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/crops" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		assert.Equal(t, "count", r.URL.Query().Get("select"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"count":8}]`))
	}))
	t.Cleanup(server.Close)

	client, err := NewRESTClient(RESTConfig{BaseURL: server.URL + "/", APIKey: "anon"})
	require.NoError(t, err)
	result := client.Check(context.Background(), "crops", 1)
	assert.True(t, result.Success)
	assert.Nil(t, result.Error)
}

func TestRESTClientCheckFailureMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"relation \"public.crops\" does not exist"}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewRESTClient(RESTConfig{BaseURL: server.URL, APIKey: "anon"})
	require.NoError(t, err)
	result := client.Check(context.Background(), "crops", 1)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, `relation "public.crops" does not exist`, result.Error.Message)
}

func TestRESTClientCheckEmptyErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := NewRESTClient(RESTConfig{BaseURL: server.URL, APIKey: "anon"})
	require.NoError(t, err)
	result := client.Check(context.Background(), "crops", 1)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Empty(t, result.Error.Message)
}

func TestRESTClientCheckRejectsBadCollection(t *testing.T) {
	client, err := NewRESTClient(RESTConfig{BaseURL: "http://127.0.0.1:1", APIKey: "anon"})
	require.NoError(t, err)
	result := client.Check(context.Background(), "crops;drop", 1)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error.Message, "invalid collection")
}

func TestRESTClientFetchRecordsKeepsColumnOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*", r.URL.Query().Get("select"))
		_, _ = w.Write([]byte(`[
			{"product":"Wheat (ton)","price":320,"change":5.2,"volume":1200},
			{"product":"Rice (ton)","price":450,"change":-2.1}
		]`))
	}))
	t.Cleanup(server.Close)

	client, err := NewRESTClient(RESTConfig{BaseURL: server.URL, APIKey: "anon"})
	require.NoError(t, err)
	records, err := client.FetchRecords(context.Background(), "market", 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, Record{
		{Name: "product", Value: "Wheat (ton)"},
		{Name: "price", Value: 320.0},
		{Name: "change", Value: 5.2},
		{Name: "volume", Value: 1200.0},
	}, records[0])
	assert.Len(t, records[1], 3)
}

func TestRESTClientFetchRecordsFlattensNested(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"name":"Wheat","meta":{"a":1},"tags":["grain",2],"change":2}]`))
	}))
	t.Cleanup(server.Close)

	client, err := NewRESTClient(RESTConfig{BaseURL: server.URL, APIKey: "anon"})
	require.NoError(t, err)
	records, err := client.FetchRecords(context.Background(), "crops", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, Record{
		{Name: "name", Value: "Wheat"},
		{Name: "meta", Value: `{"a":1}`},
		{Name: "tags", Value: `["grain",2]`},
		{Name: "change", Value: 2.0},
	}, records[0])
}

func TestRESTClientFetchRecordsRejectsMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Wheat"}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewRESTClient(RESTConfig{BaseURL: server.URL, APIKey: "anon"})
	require.NoError(t, err)
	_, err = client.FetchRecords(context.Background(), "crops", 10)
	assert.Error(t, err)
}
