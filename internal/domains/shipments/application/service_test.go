package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	shipmentmemory "github.com/Apurer/supplychain-tracker/internal/domains/shipments/adapters/memory"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/application/types"
	"github.com/Apurer/supplychain-tracker/internal/domains/shipments/domain"
	apperrors "github.com/Apurer/supplychain-tracker/internal/shared/errors"
	"github.com/Apurer/supplychain-tracker/internal/shared/events"
	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var (
	sender   = identity.Actor{ID: "u-sup", Role: identity.RoleSupplier, DisplayName: "Parts Co"}
	receiver = identity.Actor{ID: "u-dist", Role: identity.RoleDistributor, DisplayName: "FastFreight"}
	outsider = identity.Actor{ID: "u-x", Role: identity.RoleQualityInspector, DisplayName: "QA"}
	buyer    = identity.Actor{ID: "u-cust", Role: identity.RoleCustomer, DisplayName: "Jane"}
)

type mapDirectory map[string]identity.Reference

func (m mapDirectory) Lookup(_ context.Context, id string) (identity.Reference, error) {
	ref, ok := m[id]
	if !ok {
		return identity.Reference{}, fmt.Errorf("%w: %s", apperrors.ErrNotFound, id)
	}
	return ref, nil
}

var (
	parties = mapDirectory{
		sender.ID:   sender.Reference(),
		receiver.ID: receiver.Reference(),
	}
	products = mapDirectory{"p-1": {ID: "p-1", DisplayName: "Hex bolt"}}
)

func newService(repo *shipmentmemory.Repository, opts ...Option) *Service {
	ids := 0
	opts = append([]Option{WithIDGenerator(func() string {
		ids++
		return fmt.Sprintf("%08x-0000-0000-0000-000000000000", ids)
	})}, opts...)
	return NewService(repo, parties, products, opts...)
}

func createShipment(t *testing.T, svc *Service) *types.ShipmentProjection {
	t.Helper()
	proj, err := svc.CreateShipment(context.Background(), types.CreateShipmentInput{
		Actor:                sender,
		ProductID:            "p-1",
		ToUserID:             receiver.ID,
		ExpectedDeliveryDate: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return proj
}

func TestCreateShipment_ResolvesReferences(t *testing.T) {
	svc := newService(shipmentmemory.NewRepository())
	proj := createShipment(t, svc)
	s := proj.Entity
	require.Equal(t, "SHP-000000010000", s.TrackingNumber)
	require.Equal(t, identity.Reference{ID: "p-1", DisplayName: "Hex bolt"}, s.Product)
	require.Equal(t, sender.Reference(), s.From)
	require.Equal(t, receiver.Reference(), s.To)
	require.Equal(t, domain.StatusPending, s.Status)
}

func TestCreateShipment_RetriesTrackingCollision(t *testing.T) {
	repo := shipmentmemory.NewRepository()
	taken, err := domain.NewShipment("s-other", "SHP-000000010000", products["p-1"], sender.Reference(), receiver.Reference(), time.Now(), "", time.Now())
	require.NoError(t, err)
	_, err = repo.Create(context.Background(), taken)
	require.NoError(t, err)

	s := createShipment(t, newService(repo)).Entity
	require.NotEqual(t, "SHP-000000010000", s.TrackingNumber)
	require.Regexp(t, `^SHP-[0-9A-F]{12}$`, s.TrackingNumber)
}

func TestCreateShipment_Rejections(t *testing.T) {
	ctx := context.Background()
	svc := newService(shipmentmemory.NewRepository())
	base := types.CreateShipmentInput{Actor: sender, ProductID: "p-1", ToUserID: receiver.ID, ExpectedDeliveryDate: time.Now()}

	in := base
	in.Actor = buyer
	_, err := svc.CreateShipment(ctx, in)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	in = base
	in.ProductID = "p-404"
	_, err = svc.CreateShipment(ctx, in)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	in = base
	in.ExpectedDeliveryDate = time.Time{}
	_, err = svc.CreateShipment(ctx, in)
	require.ErrorIs(t, err, apperrors.ErrValidation)

	in = base
	in.FromUserID = receiver.ID
	_, err = svc.CreateShipment(ctx, in)
	require.ErrorIs(t, err, apperrors.ErrForbidden, "only admins and manufacturers ship on behalf of others")
}

func TestUpdateShipmentStatus_PartyGatingAndHistory(t *testing.T) {
	ctx := context.Background()
	publisher := events.NewMemoryPublisher()
	svc := newService(shipmentmemory.NewRepository(), WithPublisher(publisher))
	id := createShipment(t, svc).Entity.ID

	_, err := svc.UpdateShipmentStatus(ctx, types.UpdateStatusInput{ShipmentID: id, Actor: outsider, Status: "in-transit", Location: "Hub"})
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = svc.UpdateShipmentStatus(ctx, types.UpdateStatusInput{ShipmentID: id, Actor: sender, Status: "teleported"})
	require.ErrorIs(t, err, apperrors.ErrValidation)

	proj, err := svc.UpdateShipmentStatus(ctx, types.UpdateStatusInput{ShipmentID: id, Actor: sender, Status: "in-transit", Location: "Hub"})
	require.NoError(t, err)
	require.Len(t, proj.Entity.History, 1)

	proj, err = svc.UpdateShipmentStatus(ctx, types.UpdateStatusInput{ShipmentID: id, Actor: receiver, Status: "delivered"})
	require.NoError(t, err)
	require.Len(t, proj.Entity.History, 2)
	require.NotNil(t, proj.Entity.DeliveredAt)
	require.Equal(t, "Hub", proj.Entity.CurrentLocation)

	require.Equal(t, []string{
		"shipments.shipment.created",
		"shipments.shipment.status_changed",
		"shipments.shipment.status_changed",
	}, publisher.Names())

	_, err = svc.UpdateShipmentStatus(ctx, types.UpdateStatusInput{ShipmentID: "missing", Actor: sender, Status: "pending"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDelays_ReportAndResolve(t *testing.T) {
	ctx := context.Background()
	svc := newService(shipmentmemory.NewRepository())
	id := createShipment(t, svc).Entity.ID

	proj, err := svc.ReportDelay(ctx, types.ReportDelayInput{ShipmentID: id, Actor: receiver, Reason: "Customs"})
	require.NoError(t, err)
	require.Equal(t, domain.StatusDelayed, proj.Entity.Status)

	proj, err = svc.ResolveDelay(ctx, types.ResolveDelayInput{ShipmentID: id, Actor: receiver, Index: 0})
	require.NoError(t, err)
	require.NotNil(t, proj.Entity.Delays[0].ResolvedAt)

	_, err = svc.ResolveDelay(ctx, types.ResolveDelayInput{ShipmentID: id, Actor: receiver, Index: 0})
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
	_, err = svc.ResolveDelay(ctx, types.ResolveDelayInput{ShipmentID: id, Actor: receiver, Index: 7})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = svc.ReportDelay(ctx, types.ReportDelayInput{ShipmentID: id, Actor: receiver})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

type barrierRepository struct {
	*shipmentmemory.Repository
	wg *sync.WaitGroup
}

func (b barrierRepository) GetByID(ctx context.Context, id string) (*types.ShipmentProjection, error) {
	proj, err := b.Repository.GetByID(ctx, id)
	b.wg.Done()
	b.wg.Wait()
	return proj, err
}

func TestUpdateShipmentStatus_ConcurrentWritersOneWins(t *testing.T) {
	ctx := context.Background()
	repo := shipmentmemory.NewRepository()
	id := createShipment(t, newService(repo)).Entity.ID

	wg := &sync.WaitGroup{}
	wg.Add(2)
	svc := NewService(barrierRepository{Repository: repo, wg: wg}, parties, products)

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.UpdateShipmentStatus(ctx, types.UpdateStatusInput{ShipmentID: id, Actor: receiver, Status: "in-transit", Location: "Hub"})
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
	require.Len(t, final.Entity.History, 1)
}

func TestList_FiltersByParty(t *testing.T) {
	ctx := context.Background()
	svc := newService(shipmentmemory.NewRepository())
	createShipment(t, svc)
	createShipment(t, svc)

	list, err := svc.List(ctx, types.ListShipmentsInput{PartyID: receiver.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)

	list, err = svc.List(ctx, types.ListShipmentsInput{PartyID: "nobody"})
	require.NoError(t, err)
	require.Empty(t, list)

	_, err = svc.List(ctx, types.ListShipmentsInput{Status: "bogus"})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}
