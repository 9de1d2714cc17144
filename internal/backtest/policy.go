package backtest

import (
	"sort"

	"helios/internal/domain"
)

// Policy is one capital-allocation rule. TradeStock reads a ticker's current
// cash/stock split together with the day's row and returns the new split.
// Implementations must only reallocate between the two amounts — the runner
// asserts nothing, but the conservation property is what every policy test
// checks first.
type Policy interface {
	// Name returns the strategy identifier used in results and logs.
	Name() string

	// TradeStock applies the policy's trade rule for one ticker on one day.
	TradeStock(row *domain.FeatureRow, cash, stockValue float64) (newCash, newStockValue float64)
}

// DayTrader is implemented by policies that trade a whole day atomically
// across tickers instead of one ticker at a time — reading every present
// ticker's state before writing any of it. The runner prefers TradeDay over
// per-ticker TradeStock when a policy implements both.
type DayTrader interface {
	// TradeDay applies the day's trades for every row at once. rows holds
	// the tickers present today; tickers absent from rows must be left
	// untouched.
	TradeDay(p *Portfolio, rows []*domain.FeatureRow)
}

// Registry holds a named collection of policies for lookup and enumeration.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry creates an empty policy Registry.
func NewRegistry() *Registry {
	return &Registry{
		policies: make(map[string]Policy),
	}
}

// Register adds a policy to the registry, keyed by its Name().
func (r *Registry) Register(p Policy) {
	r.policies[p.Name()] = p
}

// Get retrieves a policy by name. The second return value indicates whether
// the policy was found.
func (r *Registry) Get(name string) (Policy, bool) {
	p, ok := r.policies[name]
	return p, ok
}

// List returns a sorted slice of all registered policy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
