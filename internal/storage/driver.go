// Package storage persists the collection through a minimal key-value
// driver contract, with quota-aware remediation and save retries.
package storage

import "context"

// Quota is a storage capacity estimate. TotalBytes <= 0 means unbounded.
type Quota struct {
	UsedBytes  int64 `json:"used_bytes"`
	TotalBytes int64 `json:"total_bytes"`
}

// Percent returns used/total in [0,1], or 0 when unbounded.
func (q Quota) Percent() float64 {
	if q.TotalBytes <= 0 {
		return 0
	}
	return float64(q.UsedBytes) / float64(q.TotalBytes)
}

// Driver is the async key-value contract any durable backend can satisfy.
// Get reports absence as ok=false, never as an error.
type Driver interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Estimate(ctx context.Context) (Quota, error)
}
