//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/supplychain-tracker/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type productPayload struct {
	ID              string `json:"id"`
	TrackingNumber  string `json:"trackingNumber"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	CurrentLocation string `json:"currentLocation"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

type apiError struct {
	status int
	title  string
	detail string
}

func (e apiError) Error() string {
	msg := e.title
	if msg == "" {
		msg = "api error"
	}
	if e.detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.detail)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

const statusPattern = "manufactured|quality-check|in-supply|in-distribution|delivered|delayed"

func productMatcher(id, tracking, status string) matchers.Map {
	return matchers.Map{
		"id":              matchers.Like(id),
		"trackingNumber":  matchers.Term(tracking, "^PRD-[0-9A-Z]{12}$"),
		"name":            matchers.Like(pacttest.ExampleProductName()),
		"status":          matchers.Term(status, statusPattern),
		"currentLocation": matchers.Like(pacttest.ExampleLocation()),
	}
}

func bearer(token string) matchers.Matcher {
	return matchers.Term("Bearer "+token, "^Bearer .+$")
}

func TestTrackerPortalContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemBody := func(typ, title string, status int) matchers.Map {
		return matchers.Map{
			"type":   matchers.S(typ),
			"title":  matchers.S(title),
			"status": matchers.Like(status),
		}
	}

	pact.AddInteraction().
		Given(pacttest.StateProductsBaseline).
		UponReceiving("a manufacturer registering a product").
		WithRequest("POST", "/api/products", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", bearer(pacttest.ManufacturerToken))
			b.JSONBody(pacttest.ExampleCreateProductPayload())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(productMatcher("3f1c0e0a-7d1f-4d8e-9a57-0c1f3e2b4a55", "PRD-3F1C0E0A7D1F", "manufactured"))
		})

	pact.AddInteraction().
		Given(pacttest.StateProductExists).
		UponReceiving("a request to track a product").
		WithRequest("GET", "/api/products/tracking/"+pacttest.ExistingTrackingNumber, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer(pacttest.ManufacturerToken))
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(productMatcher(pacttest.ExistingProductID, pacttest.ExistingTrackingNumber, "manufactured"))
		})

	pact.AddInteraction().
		Given(pacttest.StateProductExists).
		UponReceiving("an inspector moving a product to quality check").
		WithRequest("PATCH", "/api/products/"+pacttest.ExistingProductID+"/status", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", bearer(pacttest.InspectorToken))
			b.JSONBody(map[string]any{"status": "quality-check", "location": "QA Lab"})
		}).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"id":     matchers.S(pacttest.ExistingProductID),
				"status": matchers.S("quality-check"),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateProductMissing).
		UponReceiving("a request for a missing product").
		WithRequest("GET", "/api/products/"+pacttest.MissingProductID, func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Authorization", bearer(pacttest.ManufacturerToken))
		}).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody("/problems/not-found", "Resource Not Found", http.StatusNotFound))
		})

	pact.AddInteraction().
		Given(pacttest.StateProductsBaseline).
		UponReceiving("an anonymous product listing").
		WithRequest("GET", "/api/products").
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody("/problems/unauthorized", "Unauthorized", http.StatusUnauthorized))
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newTrackerClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		created, err := client.do(ctx, http.MethodPost, "/api/products", pacttest.ManufacturerToken, pacttest.ExampleCreateProductPayload())
		if err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if created.ID == "" || created.Status != "manufactured" {
			return fmt.Errorf("unexpected created product %+v", created)
		}

		tracked, err := client.do(ctx, http.MethodGet, "/api/products/tracking/"+pacttest.ExistingTrackingNumber, pacttest.ManufacturerToken, nil)
		if err != nil {
			return fmt.Errorf("track product: %w", err)
		}
		if tracked.TrackingNumber != pacttest.ExistingTrackingNumber {
			return fmt.Errorf("expected tracking number %s, got %+v", pacttest.ExistingTrackingNumber, tracked)
		}

		moved, err := client.do(ctx, http.MethodPatch, "/api/products/"+pacttest.ExistingProductID+"/status", pacttest.InspectorToken,
			map[string]any{"status": "quality-check", "location": "QA Lab"})
		if err != nil {
			return fmt.Errorf("transition product: %w", err)
		}
		if moved.Status != "quality-check" {
			return fmt.Errorf("expected quality-check, got %s", moved.Status)
		}

		if status := expectStatus(client.do(ctx, http.MethodGet, "/api/products/"+pacttest.MissingProductID, pacttest.ManufacturerToken, nil)); status != http.StatusNotFound {
			return fmt.Errorf("expected 404 for missing product, got %d", status)
		}
		if status := expectStatus(client.do(ctx, http.MethodGet, "/api/products", "", nil)); status != http.StatusUnauthorized {
			return fmt.Errorf("expected 401 without a token, got %d", status)
		}
		return nil
	})
	require.NoError(t, err)
}

func expectStatus(_ *productPayload, err error) int {
	if apiErr, ok := err.(apiError); ok {
		return apiErr.Status()
	}
	return 0
}

type trackerClient struct {
	baseURL    string
	httpClient *http.Client
}

func newTrackerClient(config pactconsumer.MockServerConfig) *trackerClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	client := &http.Client{Transport: transport, Timeout: 10 * time.Second}
	return &trackerClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: client,
	}
}

func (c *trackerClient) do(ctx context.Context, method, path, token string, body any) (*productPayload, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		return nil, decodeAPIError(res)
	}

	var payload productPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{
		status: status,
		title:  problem.Title,
		detail: problem.Detail,
	}
}
