// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistersAgainstAPrivateRegistry(t *testing.T) {
	r1 := New()
	r2 := New()
	if r1.Registry() == r2.Registry() {
		t.Error("two Recorders should not share a registry")
	}
}

func TestObserveRuleRecordsAHistogramSample(t *testing.T) {
	r := New()
	r.ObserveRule("compute_expression", 10*time.Millisecond)
	count := testutil.CollectAndCount(r.ruleDuration)
	if count != 1 {
		t.Errorf("got %d histogram series, want 1", count)
	}
}

func TestIncBundledFilesAddsN(t *testing.T) {
	r := New()
	r.IncBundledFiles(3)
	r.IncBundledFiles(2)
	if got := testutil.ToFloat64(r.bundledFiles); got != 5 {
		t.Errorf("got %v, want 5", got)
	}
}

func TestIncSuspendPartitionsByRule(t *testing.T) {
	r := New()
	r.IncSuspend("resolve_require")
	r.IncSuspend("resolve_require")
	r.IncSuspend("resolve_instance_require")
	if got := testutil.ToFloat64(r.suspendCount.WithLabelValues("resolve_require")); got != 2 {
		t.Errorf("got %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.suspendCount.WithLabelValues("resolve_instance_require")); got != 1 {
		t.Errorf("got %v, want 1", got)
	}
}

func TestIncCacheHitPartitionsByResult(t *testing.T) {
	r := New()
	r.IncCacheHit(true)
	r.IncCacheHit(true)
	r.IncCacheHit(false)
	if got := testutil.ToFloat64(r.cacheHitTotal.WithLabelValues("hit")); got != 2 {
		t.Errorf("got %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.cacheHitTotal.WithLabelValues("miss")); got != 1 {
		t.Errorf("got %v, want 1", got)
	}
}
