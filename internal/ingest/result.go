package ingest

import (
	"errors"
	"fmt"
)

// ResourceOutcome is the per-resource tally of one sync. Failed counts
// individual malformed or unpersistable records; Err is set only when
// the resource's page loop itself died (fetch failure), in which case
// Synced/Failed reflect the pages completed before the failure.
type ResourceOutcome struct {
	Synced int
	Failed int
	Err    error
}

// Result is the best-effort outcome of one tenant sync. A phase
// failure never erases the counts of phases that already ran.
type Result struct {
	Customers ResourceOutcome
	Products  ResourceOutcome
	Orders    ResourceOutcome
}

// Success reports whether every phase completed its page loop. Partial
// per-record failures do not fail the sync.
func (r *Result) Success() bool {
	return r.Customers.Err == nil && r.Products.Err == nil && r.Orders.Err == nil
}

// Err joins the phase errors, nil when all phases completed.
func (r *Result) Err() error {
	return errors.Join(r.Customers.Err, r.Products.Err, r.Orders.Err)
}

// TotalSynced sums successful upserts across resources.
func (r *Result) TotalSynced() int {
	return r.Customers.Synced + r.Products.Synced + r.Orders.Synced
}

// TotalFailed sums per-record failures across resources.
func (r *Result) TotalFailed() int {
	return r.Customers.Failed + r.Products.Failed + r.Orders.Failed
}

func (r *Result) String() string {
	return fmt.Sprintf("customers %d/%d products %d/%d orders %d/%d",
		r.Customers.Synced, r.Customers.Synced+r.Customers.Failed,
		r.Products.Synced, r.Products.Synced+r.Products.Failed,
		r.Orders.Synced, r.Orders.Synced+r.Orders.Failed)
}
