package domain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Apurer/supplychain-tracker/internal/shared/identity"
)

var (
	// ErrTransitionForbidden is returned for roles that hold no transition rights at all.
	ErrTransitionForbidden = errors.New("role may not change product status")
	// ErrTransitionNotAllowed is returned when the table has no edge for the move.
	ErrTransitionNotAllowed = errors.New("transition not permitted")
)

// TransitionError describes a rejected status change.
type TransitionError struct {
	Role identity.Role
	From Status
	To   Status
	Err  error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot move product from %s to %s: %v", e.Role, e.From, e.To, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

func (e *TransitionError) TransitionFrom() string { return string(e.From) }
func (e *TransitionError) TransitionTo() string   { return string(e.To) }
func (e *TransitionError) TransitionRole() string { return string(e.Role) }

type statusSet map[Status]struct{}

// baseEdges is the single source of truth for who may move a product where.
// Admin and the delay edges are derived from it in buildTransitionTable.
var baseEdges = map[identity.Role]map[Status][]Status{
	identity.RoleSupplier: {
		StatusManufactured: {StatusInSupply},
		StatusQualityCheck: {StatusInSupply},
	},
	identity.RoleQualityInspector: {
		StatusManufactured:   {StatusQualityCheck},
		StatusInSupply:       {StatusQualityCheck},
		StatusInDistribution: {StatusQualityCheck},
	},
	identity.RoleDistributor: {
		StatusInSupply:       {StatusInDistribution},
		StatusInDistribution: {StatusDelivered},
	},
}

var transitionTable = buildTransitionTable()

func buildTransitionTable() map[identity.Role]map[Status]statusSet {
	table := map[identity.Role]map[Status]statusSet{}
	admin := map[Status]statusSet{}
	for role, byFrom := range baseEdges {
		table[role] = map[Status]statusSet{}
		for from, targets := range byFrom {
			for _, to := range targets {
				addEdge(table[role], from, to)
				addEdge(admin, from, to)
			}
		}
	}
	table[identity.RoleAdmin] = admin
	for _, byFrom := range table {
		for from := range byFrom {
			if from.InProgress() {
				addEdge(byFrom, from, StatusDelayed)
			}
		}
	}
	return table
}

func addEdge(byFrom map[Status]statusSet, from, to Status) {
	if byFrom[from] == nil {
		byFrom[from] = statusSet{}
	}
	byFrom[from][to] = struct{}{}
}

// HasTransitionRights reports whether role holds any edge in the table.
func HasTransitionRights(role identity.Role) bool {
	return len(transitionTable[role]) > 0
}

// AllowedTargets returns the states role may move a product to from the
// given state. resumeTo is the state a delayed product returns to.
func AllowedTargets(role identity.Role, from, resumeTo Status) []Status {
	byFrom := transitionTable[role]
	if len(byFrom) == 0 {
		return nil
	}
	if from == StatusDelayed {
		if len(byFrom[resumeTo]) == 0 {
			return nil
		}
		return []Status{resumeTo}
	}
	targets := make([]Status, 0, len(byFrom[from]))
	for to := range byFrom[from] {
		targets = append(targets, to)
	}
	sort.Slice(targets, func(i, j int) bool { return statusOrder(targets[i]) < statusOrder(targets[j]) })
	return targets
}

// CheckTransition validates a single move against the table. A delayed product
// may only return to resumeTo, and only for roles holding an edge out of it.
func CheckTransition(role identity.Role, from, to, resumeTo Status) error {
	if !to.Valid() {
		return ErrUnknownStatus
	}
	byFrom := transitionTable[role]
	if len(byFrom) == 0 {
		return &TransitionError{Role: role, From: from, To: to, Err: ErrTransitionForbidden}
	}
	if from == StatusDelayed {
		if to != resumeTo || len(byFrom[resumeTo]) == 0 {
			return &TransitionError{Role: role, From: from, To: to, Err: ErrTransitionNotAllowed}
		}
		return nil
	}
	if _, ok := byFrom[from][to]; !ok {
		return &TransitionError{Role: role, From: from, To: to, Err: ErrTransitionNotAllowed}
	}
	return nil
}

func statusOrder(s Status) int {
	for i, known := range Statuses {
		if s == known {
			return i
		}
	}
	return len(Statuses)
}
