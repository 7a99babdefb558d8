package shipping

import "context"

// FlatRateProvider serves a predefined set of flat-rate shipping methods.
// Used while real carrier integration is not needed.
type FlatRateProvider struct {
	methods []Method
}

// NewFlatRateProvider creates a flat-rate shipping provider.
func NewFlatRateProvider(methods []Method) Provider {
	return &FlatRateProvider{methods: methods}
}

// DefaultMethods returns the storefront's standard flat-rate options.
func DefaultMethods() []Method {
	return []Method{
		{Code: "standard", Label: "Standard Shipping", CostCents: 500, DaysMin: 3, DaysMax: 7},
		{Code: "express", Label: "Express Shipping", CostCents: 1500, DaysMin: 1, DaysMax: 2},
	}
}

// Methods returns all configured flat-rate options.
func (p *FlatRateProvider) Methods(ctx context.Context) ([]Method, error) {
	out := make([]Method, len(p.methods))
	copy(out, p.methods)
	return out, nil
}

// Lookup resolves a method by code.
func (p *FlatRateProvider) Lookup(ctx context.Context, code string) (*Method, error) {
	for _, m := range p.methods {
		if m.Code == code {
			method := m
			return &method, nil
		}
	}
	return nil, ErrMethodNotFound
}
