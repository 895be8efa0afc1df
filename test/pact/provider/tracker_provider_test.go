//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/supplychain-tracker/test/pact"

	trackerserver "github.com/Apurer/supplychain-tracker/go"
	productmemory "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/memory"
	productobs "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/observability"
	productworkflows "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/workflows"
	productapp "github.com/Apurer/supplychain-tracker/internal/domains/products/application"
	productdomain "github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	usertypes "github.com/Apurer/supplychain-tracker/internal/domains/users/application/types"
	apierrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestTrackerProviderPact(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateProductsBaseline: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
		pacttest.StateProductExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.seedProduct(t)
			}
			return nil, nil
		},
		pacttest.StateProductMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset()
			return nil
		},
	})
	require.NoError(t, err)
}

// fixedTokens resolves the contract's bearer tokens without a users store.
type fixedTokens map[string]identity.Actor

func (f fixedTokens) Authenticate(_ context.Context, token string) (*usertypes.Principal, error) {
	actor, ok := f[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", apierrors.ErrUnauthorized)
	}
	return &usertypes.Principal{Actor: actor, SessionID: "pact-" + actor.ID}, nil
}

type contractProviderApp struct {
	mu      sync.RWMutex
	repo    *productmemory.Repository
	handler http.Handler
	server  *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset()
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		h := app.handler
		app.mu.RUnlock()
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

// reset swaps in a router backed by empty stores.
func (a *contractProviderApp) reset() {
	repo := productmemory.NewRepository()
	productService := productobs.New(productapp.NewService(repo, productapp.WithClaimStore(productmemory.NewClaimStore())))
	handlers := trackerserver.ApiHandleFunctions{
		ProductAPI: trackerserver.NewProductAPI(productService, productworkflows.NewInlineProductWorkflows(productService)),
	}
	tokens := fixedTokens{
		pacttest.ManufacturerToken: {ID: pacttest.ManufacturerID, Role: identity.RoleManufacturer, DisplayName: "Pact Manufacturing"},
		pacttest.InspectorToken:    {ID: pacttest.InspectorID, Role: identity.RoleQualityInspector, DisplayName: "Pact QA"},
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router = trackerserver.NewRouterWithGinEngine(router, handlers, tokens)

	a.mu.Lock()
	a.repo = repo
	a.handler = router
	a.mu.Unlock()
}

func (a *contractProviderApp) seedProduct(t testing.TB) {
	t.Helper()
	maker := identity.Reference{ID: pacttest.ManufacturerID, DisplayName: "Pact Manufacturing"}
	product, err := productdomain.NewProduct(pacttest.ExistingProductID, pacttest.ExistingTrackingNumber,
		pacttest.ExampleProductName(), pacttest.ExampleLocation(), maker, time.Now().UTC())
	require.NoError(t, err)
	a.mu.RLock()
	repo := a.repo
	a.mu.RUnlock()
	_, err = repo.Create(context.Background(), product)
	require.NoError(t, err)
}
