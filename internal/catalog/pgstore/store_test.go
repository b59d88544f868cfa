package pgstore

import (
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"

	"github.com/eoneil1942/sprunner/internal/catalog"
	"github.com/eoneil1942/sprunner/internal/params"
)

func TestToParamTypes(t *testing.T) {
	got := toParamTypes([]int16{int16(params.TypeBigInt), int16(params.TypeString)})
	assert.Equal(t, []params.Type{params.TypeBigInt, params.TypeString}, got)
}

func TestToPlanHash(t *testing.T) {
	raw := make([]byte, 20)
	for i := range raw {
		raw[i] = byte(i)
	}

	var want catalog.PlanHash
	copy(want[:], raw)

	assert.Equal(t, want, toPlanHash(raw))
}

// TestCollectorFragmentIDRoundTrip exercises the optional-pointer shape a
// collector row's fragment id takes when scanned from a nullable column.
func TestCollectorFragmentIDRoundTrip(t *testing.T) {
	id := pointer.ToInt64(42)

	frag := &catalog.Fragment{ID: *id}
	assert.Equal(t, int64(42), frag.ID)
	assert.Equal(t, int64(0), pointer.GetInt64(nil))
}
