package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	productmemory "github.com/Apurer/supplychain-tracker/internal/domains/products/adapters/memory"
	producttypes "github.com/Apurer/supplychain-tracker/internal/domains/products/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	apperrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var (
	maker     = identity.Actor{ID: "u-maker", Role: identity.RoleManufacturer, DisplayName: "Acme Steel"}
	inspector = identity.Actor{ID: "u-qa", Role: identity.RoleQualityInspector, DisplayName: "QA Lab"}
	supplier  = identity.Actor{ID: "u-sup", Role: identity.RoleSupplier, DisplayName: "Parts Co"}
	carrier   = identity.Actor{ID: "u-dist", Role: identity.RoleDistributor, DisplayName: "FastFreight"}
	buyer     = identity.Actor{ID: "u-cust", Role: identity.RoleCustomer, DisplayName: "Buyer"}
)

func createInput() producttypes.CreateProductInput {
	return producttypes.CreateProductInput{
		Actor:           maker,
		Name:            "Hex bolt M8",
		Category:        "fasteners",
		CurrentLocation: "Plant 1",
		Quantity:        500,
		Price:           0.12,
		Specifications:  producttypes.SpecificationsInput{Material: "steel", Standards: []string{"ISO 4017"}},
	}
}

func newTestService(opts ...Option) (*Service, *productmemory.Repository) {
	repo := productmemory.NewRepository()
	return NewService(repo, opts...), repo
}

func transition(svc *Service, id string, actor identity.Actor, target string) (*producttypes.ProductProjection, error) {
	return svc.RequestStatusTransition(context.Background(), producttypes.TransitionInput{
		ProductID:    id,
		Actor:        actor,
		TargetStatus: target,
		Location:     "Hub",
	})
}

func TestCreateProduct_SeedsTimeline(t *testing.T) {
	svc, _ := newTestService(WithIDGenerator(func() string { return "0b1c2d3e-aaaa-bbbb-cccc-000000000001" }))

	proj, err := svc.CreateProduct(context.Background(), createInput())
	require.NoError(t, err)
	require.Equal(t, "0b1c2d3e-aaaa-bbbb-cccc-000000000001", proj.Entity.ID)
	require.Equal(t, "PRD-0B1C2D3EAAAA", proj.Entity.TrackingNumber)
	require.Equal(t, domain.StatusManufactured, proj.Entity.Status)
	require.Len(t, proj.Entity.Timeline, 1)
	require.Equal(t, identity.Reference{ID: "u-maker", DisplayName: "Acme Steel"}, proj.Entity.Manufacturer)
	require.EqualValues(t, 1, proj.Metadata.Version)
}

func TestCreateProduct_RoleAndValidation(t *testing.T) {
	svc, _ := newTestService()

	in := createInput()
	in.Actor = supplier
	_, err := svc.CreateProduct(context.Background(), in)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	in = createInput()
	in.CurrentLocation = " "
	_, err = svc.CreateProduct(context.Background(), in)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	in = createInput()
	in.Quantity = 0
	_, err = svc.CreateProduct(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestCreateProduct_IdempotencyReplay(t *testing.T) {
	svc, _ := newTestService(WithClaimStore(productmemory.NewClaimStore()))

	in := createInput()
	in.IdempotencyKey = "req-1"
	first, err := svc.CreateProduct(context.Background(), in)
	require.NoError(t, err)

	replay, err := svc.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, first.Entity.ID, replay.Entity.ID)

	in.Quantity = 9
	_, err = svc.CreateProduct(context.Background(), in)
	require.ErrorIs(t, err, apperrors.ErrConflict)
	require.ErrorIs(t, err, ports.ErrKeyReused)
}

func TestCreateProduct_ConcurrentSameKeyCreatesOneProduct(t *testing.T) {
	svc, repo := newTestService(WithClaimStore(productmemory.NewClaimStore()))
	in := createInput()
	in.IdempotencyKey = "req-race"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateProduct(context.Background(), in)
			if err != nil {
				assert.ErrorIs(t, err, ports.ErrRegistrationInFlight)
			}
		}()
	}
	wg.Wait()

	all, err := repo.List(context.Background(), ports.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)

	replay, err := svc.CreateProduct(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, all[0].Entity.ID, replay.Entity.ID)
}

func TestCreateProduct_FailedCreateReleasesKey(t *testing.T) {
	svc, _ := newTestService(WithClaimStore(productmemory.NewClaimStore()))
	in := createInput()
	in.IdempotencyKey = "req-bad"
	in.Quantity = 0
	_, err := svc.CreateProduct(context.Background(), in)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	in.Quantity = 5
	_, err = svc.CreateProduct(context.Background(), in)
	require.NoError(t, err)
}

func TestCreateProduct_RetriesTrackingCollision(t *testing.T) {
	const id = "0b1c2d3e-aaaa-bbbb-cccc-000000000002"
	svc, repo := newTestService(WithIDGenerator(func() string { return id }))
	taken, err := domain.NewProduct("other", "PRD-0B1C2D3EAAAA", "Washer", "Plant 2", maker.Reference(), time.Now())
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), taken)
	require.NoError(t, err)

	proj, err := svc.CreateProduct(context.Background(), createInput())
	require.NoError(t, err)
	require.Equal(t, id, proj.Entity.ID)
	require.NotEqual(t, "PRD-0B1C2D3EAAAA", proj.Entity.TrackingNumber)
	require.Regexp(t, `^PRD-[0-9A-F]{12}$`, proj.Entity.TrackingNumber)
}

func TestRequestStatusTransition_Errors(t *testing.T) {
	svc, _ := newTestService()
	proj, err := svc.CreateProduct(context.Background(), createInput())
	require.NoError(t, err)
	id := proj.Entity.ID

	_, err = transition(svc, id, buyer, "not-a-status")
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = transition(svc, id, supplier, "shipped")
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = transition(svc, id, carrier, "in-distribution")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	var te *domain.TransitionError
	require.True(t, errors.As(err, &te))
	require.Equal(t, domain.StatusManufactured, te.From)

	_, err = svc.RequestStatusTransition(context.Background(), producttypes.TransitionInput{
		ProductID: id, Actor: supplier, TargetStatus: "in-supply",
	})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = transition(svc, "missing", supplier, "in-supply")
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	current, err := svc.GetByID(context.Background(), producttypes.ProductIdentifier{ID: id})
	require.NoError(t, err)
	require.Len(t, current.Entity.Timeline, 1)
}

func TestRequestStatusTransition_RepeatFailsInsteadOfDuplicating(t *testing.T) {
	svc, _ := newTestService()
	proj, err := svc.CreateProduct(context.Background(), createInput())
	require.NoError(t, err)

	_, err = transition(svc, proj.Entity.ID, supplier, "in-supply")
	require.NoError(t, err)
	_, err = transition(svc, proj.Entity.ID, supplier, "in-supply")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	timeline, err := svc.Timeline(context.Background(), producttypes.ProductIdentifier{ID: proj.Entity.ID})
	require.NoError(t, err)
	require.Len(t, timeline, 2)
}

func TestQualityCheck_PassFailAndAuto(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	proj, err := svc.CreateProduct(ctx, createInput())
	require.NoError(t, err)
	id := proj.Entity.ID

	_, err = svc.PerformQualityCheck(ctx, producttypes.QualityCheckInput{ProductID: id, Actor: inspector, Passed: true})
	require.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = transition(svc, id, inspector, "quality-check")
	require.NoError(t, err)

	_, err = svc.PerformQualityCheck(ctx, producttypes.QualityCheckInput{ProductID: id, Actor: supplier, Passed: true})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	failed, err := svc.PerformQualityCheck(ctx, producttypes.QualityCheckInput{ProductID: id, Actor: inspector, Passed: false, Notes: "burrs"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusQualityCheck, failed.Entity.Status)
	require.False(t, failed.Entity.QualityCheck.Passed)
	require.Len(t, failed.Entity.Timeline, 2)

	passed, err := svc.AutoQualityCheck(ctx, producttypes.AutoQualityCheckInput{ProductID: id, Actor: inspector})
	require.NoError(t, err)
	require.Equal(t, domain.StatusInSupply, passed.Entity.Status)
	require.True(t, passed.Entity.QualityCheck.Automated)
	require.Equal(t, "u-qa", passed.Entity.QualityCheck.PerformedBy.ID)
	require.Len(t, passed.Entity.Timeline, 3)
}

func TestLifecycleScenario_PublishesEvents(t *testing.T) {
	publisher := events.NewMemoryPublisher()
	svc, _ := newTestService(WithPublisher(publisher))
	ctx := context.Background()

	proj, err := svc.CreateProduct(ctx, createInput())
	require.NoError(t, err)
	id := proj.Entity.ID

	_, err = transition(svc, id, inspector, "quality-check")
	require.NoError(t, err)
	_, err = svc.PerformQualityCheck(ctx, producttypes.QualityCheckInput{ProductID: id, Actor: inspector, Passed: true})
	require.NoError(t, err)
	_, err = transition(svc, id, supplier, "in-distribution")
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	_, err = transition(svc, id, carrier, "in-distribution")
	require.NoError(t, err)
	final, err := transition(svc, id, carrier, "delivered")
	require.NoError(t, err)

	require.Equal(t, domain.StatusDelivered, final.Entity.Status)
	last, _ := final.Entity.LastEntry()
	require.Equal(t, final.Entity.Status, last.Status)
	require.Len(t, publisher.Published(), 6)
	for _, p := range publisher.Published() {
		require.Equal(t, id, p.Key)
	}
}

// barrierRepository holds every read until n readers arrived, so racing
// writers are guaranteed to start from the same version.
type barrierRepository struct {
	*productmemory.Repository
	wg *sync.WaitGroup
}

func (b barrierRepository) GetByID(ctx context.Context, id string) (*producttypes.ProductProjection, error) {
	proj, err := b.Repository.GetByID(ctx, id)
	b.wg.Done()
	b.wg.Wait()
	return proj, err
}

func TestRequestStatusTransition_ConcurrentWritersOneWins(t *testing.T) {
	ctx := context.Background()
	repo := productmemory.NewRepository()
	setup := NewService(repo)
	proj, err := setup.CreateProduct(ctx, createInput())
	require.NoError(t, err)
	id := proj.Entity.ID
	_, err = transition(setup, id, supplier, "in-supply")
	require.NoError(t, err)

	wg := &sync.WaitGroup{}
	wg.Add(2)
	svc := NewService(barrierRepository{Repository: repo, wg: wg})

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := transition(svc, id, carrier, "in-distribution")
			errs <- err
		}()
	}

	var failures []error
	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			if err != nil {
				failures = append(failures, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("writers did not finish")
		}
	}
	require.Len(t, failures, 1)
	require.ErrorIs(t, failures[0], apperrors.ErrConflict)

	final, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Len(t, final.Entity.Timeline, 3)
	require.Equal(t, domain.StatusInDistribution, final.Entity.Status)
}

func TestList_FiltersAndValidatesStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	_, err := svc.CreateProduct(ctx, createInput())
	require.NoError(t, err)

	list, err := svc.List(ctx, producttypes.ListProductsInput{Statuses: []string{"manufactured"}})
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.List(ctx, producttypes.ListProductsInput{Statuses: []string{"lost"}})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	found, err := svc.GetByTrackingNumber(ctx, producttypes.TrackingLookup{TrackingNumber: list[0].Entity.TrackingNumber})
	require.NoError(t, err)
	require.Equal(t, list[0].Entity.ID, found.Entity.ID)
}

func TestLookup_ResolvesProductName(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	proj, err := svc.CreateProduct(ctx, createInput())
	require.NoError(t, err)

	ref, err := svc.Lookup(ctx, proj.Entity.ID)
	require.NoError(t, err)
	require.Equal(t, identity.Reference{ID: proj.Entity.ID, DisplayName: "Hex bolt M8"}, ref)

	_, err = svc.Lookup(ctx, "missing")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
