package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
)

type normalizedCreateProductInput struct {
	ActorID         string                   `json:"actorId"`
	Name            string                   `json:"name"`
	Description     string                   `json:"description"`
	Category        string                   `json:"category"`
	SubCategory     string                   `json:"subCategory"`
	CurrentLocation string                   `json:"currentLocation"`
	Quantity        int64                    `json:"quantity"`
	Price           float64                  `json:"price"`
	Specifications  normalizedSpecifications `json:"specifications"`
}

type normalizedSpecifications struct {
	Material  string   `json:"material"`
	Size      string   `json:"size"`
	Grade     string   `json:"grade"`
	Finish    string   `json:"finish"`
	Standards []string `json:"standards"`
}

// FingerprintCreateProduct builds a deterministic hash of the registration
// payload, excluding the idempotency key itself.
func FingerprintCreateProduct(input types.CreateProductInput) (string, error) {
	standards := append([]string{}, input.Specifications.Standards...)
	sort.Strings(standards)
	normalized := normalizedCreateProductInput{
		ActorID:         input.Actor.ID,
		Name:            input.Name,
		Description:     input.Description,
		Category:        input.Category,
		SubCategory:     input.SubCategory,
		CurrentLocation: input.CurrentLocation,
		Quantity:        input.Quantity,
		Price:           input.Price,
		Specifications: normalizedSpecifications{
			Material:  input.Specifications.Material,
			Size:      input.Specifications.Size,
			Grade:     input.Specifications.Grade,
			Finish:    input.Specifications.Finish,
			Standards: standards,
		},
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
