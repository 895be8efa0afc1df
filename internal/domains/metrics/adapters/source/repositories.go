// Package source reads metric facts straight from the other contexts'
// repositories.
package source

import (
	"context"
	"time"

	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/domain"
	"github.com/Apurer/supplychain-tracker/internal/domains/metrics/ports"
	productports "github.com/Apurer/supplychain-tracker/internal/domains/products/ports"
	shipmentports "github.com/Apurer/supplychain-tracker/internal/domains/shipments/ports"
	txdomain "github.com/Apurer/supplychain-tracker/internal/domains/transactions/domain"
	txports "github.com/Apurer/supplychain-tracker/internal/domains/transactions/ports"
	userports "github.com/Apurer/supplychain-tracker/internal/domains/users/ports"
)

var _ ports.Source = (*Repositories)(nil)

// Repositories adapts the repositories of the write side.
type Repositories struct {
	products     productports.Repository
	shipments    shipmentports.Repository
	transactions txports.Repository
	users        userports.Repository
}

func New(products productports.Repository, shipments shipmentports.Repository, transactions txports.Repository, users userports.Repository) *Repositories {
	return &Repositories{products: products, shipments: shipments, transactions: transactions, users: users}
}

func (r *Repositories) Snapshot(ctx context.Context, activitySince time.Time) (domain.Snapshot, error) {
	var snap domain.Snapshot

	users, err := r.users.List(ctx)
	if err != nil {
		return snap, err
	}
	snap.Users = len(users)

	if snap.Products, err = r.Products(ctx); err != nil {
		return snap, err
	}

	if snap.Shipments, err = r.Shipments(ctx); err != nil {
		return snap, err
	}

	recent, total, err := r.transactions.List(ctx, txports.ListFilter{
		SortBy:     txports.SortByCreatedAt,
		Descending: true,
		Limit:      domain.RecentTransactions,
	})
	if err != nil {
		return snap, err
	}
	snap.TransactionTotal = total
	for _, t := range recent {
		snap.Recent = append(snap.Recent, transactionFact(t.Entity, t.Metadata.CreatedAt))
	}

	since, _, err := r.transactions.List(ctx, txports.ListFilter{From: &activitySince, SortBy: txports.SortByCreatedAt})
	if err != nil {
		return snap, err
	}
	for _, t := range since {
		snap.TransactionsSince = append(snap.TransactionsSince, t.Metadata.CreatedAt)
	}
	return snap, nil
}

func (r *Repositories) Shipments(ctx context.Context) ([]domain.ShipmentFact, error) {
	shipments, err := r.shipments.List(ctx, shipmentports.ListFilter{})
	if err != nil {
		return nil, err
	}
	facts := make([]domain.ShipmentFact, 0, len(shipments))
	for _, s := range shipments {
		fact := domain.ShipmentFact{
			Status:      string(s.Entity.Status),
			CreatedAt:   s.Metadata.CreatedAt,
			DeliveredAt: s.Entity.DeliveredAt,
			OnTime:      s.Entity.OnTime(),
		}
		for _, d := range s.Entity.Delays {
			fact.Delays = append(fact.Delays, domain.DelayFact{Reason: d.Reason, ReportedAt: d.ReportedAt, ResolvedAt: d.ResolvedAt})
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

// Products flattens every product with its timeline.
func (r *Repositories) Products(ctx context.Context) ([]domain.ProductFact, error) {
	products, err := r.products.List(ctx, productports.ListFilter{})
	if err != nil {
		return nil, err
	}
	facts := make([]domain.ProductFact, 0, len(products))
	for _, p := range products {
		fact := domain.ProductFact{
			Status:             string(p.Entity.Status),
			Category:           p.Entity.Category,
			SubCategory:        p.Entity.SubCategory,
			FailedQualityCheck: p.Entity.QualityCheck != nil && !p.Entity.QualityCheck.Passed,
			CreatedAt:          p.Metadata.CreatedAt,
		}
		for _, e := range p.Entity.Timeline {
			fact.Timeline = append(fact.Timeline, domain.StageFact{Status: string(e.Status), At: e.Date})
		}
		facts = append(facts, fact)
	}
	return facts, nil
}

// Transactions reads every transaction created inside w.
func (r *Repositories) Transactions(ctx context.Context, w domain.Window) ([]domain.TransactionFact, error) {
	start, end := w.Start, w.End
	txs, _, err := r.transactions.List(ctx, txports.ListFilter{From: &start, To: &end, SortBy: txports.SortByCreatedAt})
	if err != nil {
		return nil, err
	}
	facts := make([]domain.TransactionFact, 0, len(txs))
	for _, t := range txs {
		facts = append(facts, transactionFact(t.Entity, t.Metadata.CreatedAt))
	}
	return facts, nil
}

func (r *Repositories) Users(ctx context.Context) ([]domain.UserFact, error) {
	users, err := r.users.List(ctx)
	if err != nil {
		return nil, err
	}
	facts := make([]domain.UserFact, 0, len(users))
	for _, u := range users {
		facts = append(facts, domain.UserFact{Role: string(u.Role), Verification: string(u.Verification), CreatedAt: u.CreatedAt})
	}
	return facts, nil
}

func transactionFact(tx *txdomain.Transaction, createdAt time.Time) domain.TransactionFact {
	return domain.TransactionFact{
		ID:            tx.ID,
		TransactionID: tx.TransactionID,
		Product:       tx.Product,
		From:          tx.From.Reference,
		To:            tx.To.Reference,
		Quantity:      tx.Quantity,
		Status:        string(tx.Status),
		CreatedAt:     createdAt,
	}
}
