//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "supplychain-tracker-api"
	ConsumerName = "tracker-portal"

	StateProductsBaseline = "products baseline"
	StateProductExists    = "product PRD-PACT00000001 exists"
	StateProductMissing   = "no product prod-missing"
)

const (
	ExistingProductID      = "prod-pact-1"
	ExistingTrackingNumber = "PRD-PACT00000001"
	MissingProductID       = "prod-missing"

	// The provider resolves these bearer tokens to fixed actors.
	ManufacturerToken = "pact-manufacturer-token"
	InspectorToken    = "pact-inspector-token"
	ManufacturerID    = "user-pact-maker"
	InspectorID       = "user-pact-qa"
)

const (
	exampleProductName = "Pact Hex Bolt"
	exampleLocation    = "Plant 7"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the tracker portal consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleCreateProductPayload provides stable request data for registration.
func ExampleCreateProductPayload() map[string]any {
	return map[string]any{
		"name":            exampleProductName,
		"category":        "fasteners",
		"currentLocation": exampleLocation,
		"quantity":        500,
		"price":           0.25,
	}
}

// ExampleProductName and ExampleLocation seed the provider.
func ExampleProductName() string { return exampleProductName }
func ExampleLocation() string    { return exampleLocation }

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
