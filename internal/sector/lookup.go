// internal/sector/lookup.go
//
// Municipality lookup cache.  Department changes in the dialog refetch the
// municipality list on every request, so lists are kept per department in an
// LRU with a TTL.  Concurrent misses for the same department collapse into
// one query via singleflight.

package sector

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/crm/internal/cache"
	"github.com/yanizio/crm/internal/metrics"
)

// MunicipalitySource is the slow path behind Lookup; *Repository satisfies it.
type MunicipalitySource interface {
	MunicipalitiesByDepartment(ctx context.Context, departmentID int64) ([]Municipality, error)
}

// Lookup serves municipality lists per department.
type Lookup struct {
	src MunicipalitySource
	lru *cache.LRU[int64, []Municipality]
	sfg singleflight.Group
}

// NewLookup builds a Lookup holding up to size departments for ttl each.
func NewLookup(src MunicipalitySource, size int, ttl time.Duration) *Lookup {
	return &Lookup{src: src, lru: cache.New[int64, []Municipality](size, ttl)}
}

// Municipalities returns the municipalities of departmentID.
func (l *Lookup) Municipalities(ctx context.Context, departmentID int64) ([]Municipality, error) {
	if ms, ok := l.lru.Get(departmentID); ok {
		metrics.MunicipalityLookupTotal.WithLabelValues("hit").Inc()
		return ms, nil
	}

	v, err, _ := l.sfg.Do(strconv.FormatInt(departmentID, 10), func() (any, error) {
		// Double-check after the singleflight barrier.
		if ms, ok := l.lru.Get(departmentID); ok {
			return ms, nil
		}
		// Detach so one caller's cancellation does not fail the others.
		ms, err := l.src.MunicipalitiesByDepartment(context.WithoutCancel(ctx), departmentID)
		if err != nil {
			return nil, err
		}
		l.lru.Add(departmentID, ms)
		return ms, nil
	})
	if err != nil {
		metrics.MunicipalityLookupTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.MunicipalityLookupTotal.WithLabelValues("miss").Inc()
	return v.([]Municipality), nil
}

// Invalidate drops the cached list for departmentID.
func (l *Lookup) Invalidate(departmentID int64) { l.lru.Remove(departmentID) }
