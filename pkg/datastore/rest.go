package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var errMissingRESTConfig = errors.New("datastore: rest url and api key are required")

// RESTConfig configures the REST client.
type RESTConfig struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// RESTClient talks to a PostgREST-style endpoint ({base}/rest/v1/{collection}).
type RESTClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRESTClient builds a client. Both the base URL and the API key are required.
func NewRESTClient(cfg RESTConfig) (*RESTClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" || strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errMissingRESTConfig
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &RESTClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client:  httpClient,
	}, nil
}

// Check selects a row count from collection, capped at limit rows.
func (c *RESTClient) Check(ctx context.Context, collection string, limit int) Result {
	if err := validateQuery(collection, limit); err != nil {
		return Failed(err.Error())
	}
	body, err := c.get(ctx, collection, "count", limit)
	if err != nil {
		return Failed(err.Error())
	}
	defer body.Close()
	_, _ = io.Copy(io.Discard, body)
	return Succeeded()
}

// FetchRecords loads up to limit rows. Column order follows the JSON response.
func (c *RESTClient) FetchRecords(ctx context.Context, collection string, limit int) ([]Record, error) {
	if err := validateQuery(collection, limit); err != nil {
		return nil, err
	}
	body, err := c.get(ctx, collection, "*", limit)
	if err != nil {
		return nil, fmt.Errorf("datastore: fetch %s: %w", collection, err)
	}
	defer body.Close()
	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("datastore: decode %s: %w", collection, err)
	}
	return records, nil
}

func (c *RESTClient) get(ctx context.Context, collection, selectExpr string, limit int) (io.ReadCloser, error) {
	query := url.Values{}
	query.Set("select", selectExpr)
	query.Set("limit", strconv.Itoa(limit))
	endpoint := c.baseURL + "/rest/v1/" + collection + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, errors.New(remoteMessage(resp))
	}
	return resp.Body, nil
}

// remoteMessage extracts {"message": ...} from an error body, falling back to the raw text.
func remoteMessage(resp *http.Response) string {
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(buf.Bytes(), &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(buf.String())
}

// decodeRecords reads a JSON array of objects, keeping key order.
func decodeRecords(r io.Reader) ([]Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}
	var records []Record
	for dec.More() {
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		var rec Record
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			name, ok := tok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected key %v", tok)
			}
			var raw any
			if err := dec.Decode(&raw); err != nil {
				return nil, err
			}
			value, err := scalar(raw)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", name, err)
			}
			rec = append(rec, Field{Name: name, Value: value})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return records, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// scalar keeps strings, bools and numbers. Objects and arrays become their compact JSON text.
func scalar(raw any) (any, error) {
	switch v := raw.(type) {
	case nil, string, bool:
		return v, nil
	case json.Number:
		return v.Float64()
	default:
		text, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(text), nil
	}
}
