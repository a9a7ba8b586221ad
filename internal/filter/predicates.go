package filter

import (
	"github.com/mny-engine/mny/internal/model"
)

// Predicate narrows the transaction universe along exactly one dimension.
// An inactive predicate contributes nothing; predicates never consult each
// other.
type Predicate interface {
	Name() string
	Active(s *Spec) bool
	Apply(s *Spec, universe []model.Transaction) []model.Transaction
}

// registry is the compile-time list of known predicates, one per filter
// dimension.
var registry = []Predicate{
	userPredicate{},
	accountPredicate{},
	transferToPredicate{},
	transferFromPredicate{},
	endpointPredicate{},
	categoryPredicate{},
	typePredicate{},
	statusPredicate{},
	datePredicate{},
	amountPredicate{},
}

// Predicates returns the registered predicates.
func Predicates() []Predicate {
	return registry
}

func keep(universe []model.Transaction, match func(*model.Transaction) bool) []model.Transaction {
	out := make([]model.Transaction, 0, len(universe))
	for i := range universe {
		if match(&universe[i]) {
			out = append(out, universe[i])
		}
	}
	return out
}

func member[T comparable](values []T, v T) bool {
	for _, w := range values {
		if w == v {
			return true
		}
	}
	return false
}

type userPredicate struct{}

func (userPredicate) Name() string        { return "user" }
func (userPredicate) Active(s *Spec) bool { return len(s.UserIDs) > 0 }
func (userPredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return member(s.UserIDs, t.UserID)
	})
}

type accountPredicate struct{}

func (accountPredicate) Name() string        { return "account" }
func (accountPredicate) Active(s *Spec) bool { return len(s.AccountIDs) > 0 }
func (accountPredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return member(s.AccountIDs, t.AccountID)
	})
}

type transferToPredicate struct{}

func (transferToPredicate) Name() string        { return "transfer_to" }
func (transferToPredicate) Active(s *Spec) bool { return len(s.TransferTo) > 0 }
func (transferToPredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return t.Type == model.TransferOut && member(s.TransferTo, t.TransferAccountID)
	})
}

type transferFromPredicate struct{}

func (transferFromPredicate) Name() string        { return "transfer_from" }
func (transferFromPredicate) Active(s *Spec) bool { return len(s.TransferFrom) > 0 }
func (transferFromPredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return t.Type == model.TransferIn && member(s.TransferFrom, t.TransferAccountID)
	})
}

type endpointPredicate struct{}

func (endpointPredicate) Name() string        { return "transaction_endpoint" }
func (endpointPredicate) Active(s *Spec) bool { return len(s.EndpointIDs) > 0 }
func (endpointPredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return member(s.EndpointIDs, t.EndpointID)
	})
}

type categoryPredicate struct{}

func (categoryPredicate) Name() string        { return "category" }
func (categoryPredicate) Active(s *Spec) bool { return len(s.CategoryIDs) > 0 }
func (categoryPredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return member(s.CategoryIDs, t.CategoryID)
	})
}

type typePredicate struct{}

func (typePredicate) Name() string        { return "transaction_type" }
func (typePredicate) Active(s *Spec) bool { return len(s.Types) > 0 }
func (typePredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return member(s.Types, t.Type)
	})
}

type statusPredicate struct{}

func (statusPredicate) Name() string        { return "status" }
func (statusPredicate) Active(s *Spec) bool { return len(s.Statuses) > 0 }
func (statusPredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return member(s.Statuses, t.Status)
	})
}

// datePredicate implements the transacted_after / transacted_before
// window. Bounds are inclusive at day granularity: after means from the
// start of that day, before means through the end of it.
type datePredicate struct{}

func (datePredicate) Name() string        { return "transacted" }
func (datePredicate) Active(s *Spec) bool { return s.After != nil || s.Before != nil }
func (datePredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		if s.After != nil && t.TransactedAt.Before(model.StartOfDay(*s.After)) {
			return false
		}
		if s.Before != nil && t.TransactedAt.After(model.EndOfDay(*s.Before)) {
			return false
		}
		return true
	})
}

type amountPredicate struct{}

func (amountPredicate) Name() string        { return "amount" }
func (amountPredicate) Active(s *Spec) bool { return s.Amount != nil }
func (amountPredicate) Apply(s *Spec, universe []model.Transaction) []model.Transaction {
	return keep(universe, func(t *model.Transaction) bool {
		return s.Amount.Matches(t.Amount)
	})
}
