package godoo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomain_ToRPC(t *testing.T) {
	d := Domain{{"|"}, {"stage_id", "=", 1}, {"stage_id", "=", 2}}

	assert.Equal(t, []interface{}{
		"|",
		[]interface{}{"stage_id", "=", 1},
		[]interface{}{"stage_id", "=", 2},
	}, d.ToRPC())
	assert.Equal(t, []interface{}{}, Domain(nil).ToRPC())
}

func TestDomain_Normalize(t *testing.T) {
	tests := map[string]struct {
		domain Domain
		want   Domain
	}{
		"empty": {
			domain: Domain{},
			want:   Domain{},
		},
		"single leaf": {
			domain: Domain{{"a", "=", 1}},
			want:   Domain{{"a", "=", 1}},
		},
		"implicit and": {
			domain: Domain{{"a", "=", 1}, {"b", "=", 2}, {"c", "=", 3}},
			want:   Domain{{"&"}, {"&"}, {"a", "=", 1}, {"b", "=", 2}, {"c", "=", 3}},
		},
		"or then leaf": {
			domain: Domain{{"|"}, {"a", "=", 1}, {"b", "=", 2}, {"c", "=", 3}},
			want:   Domain{{"&"}, {"|"}, {"a", "=", 1}, {"b", "=", 2}, {"c", "=", 3}},
		},
		"not": {
			domain: Domain{{"!"}, {"a", "=", 1}},
			want:   Domain{{"!"}, {"a", "=", 1}},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, test.want, test.domain.Normalize())
		})
	}
}

func TestOrDomains(t *testing.T) {
	a := Domain{{"stage_id", "=", 1}, {"user_id", "=", 2}}
	b := Domain{{"stage_id", "=", 3}}

	assert.Equal(t,
		Domain{{"|"}, {"&"}, {"stage_id", "=", 1}, {"user_id", "=", 2}, {"stage_id", "=", 3}},
		OrDomains(a, b),
	)
	assert.Equal(t, FalseDomain, OrDomains())
	assert.Equal(t, Domain{}, OrDomains(a, Domain{}))
	assert.Equal(t, b, OrDomains(FalseDomain, b))
}

func TestAndDomains(t *testing.T) {
	base := Domain{{"active", "=", true}}
	filter := Domain{{"|"}, {"stage_id", "=", 1}, {"stage_id", "=", 2}}

	assert.Equal(t,
		Domain{{"&"}, {"active", "=", true}, {"|"}, {"stage_id", "=", 1}, {"stage_id", "=", 2}},
		AndDomains(base, filter),
	)
	assert.Equal(t, base, AndDomains(base, Domain{}, TrueDomain))
	assert.Equal(t, FalseDomain, AndDomains(base, FalseDomain))
	assert.Equal(t, Domain{}, AndDomains())
}

func TestDomainFromRPC(t *testing.T) {
	d, err := DomainFromRPC([]interface{}{"|", []interface{}{"a", "=", int64(1)}, []interface{}{"a", "=", int64(2)}})
	require.NoError(t, err)
	assert.Equal(t, Domain{{"|"}, {"a", "=", int64(1)}, {"a", "=", int64(2)}}, d)

	d, err = DomainFromRPC(nil)
	require.NoError(t, err)
	assert.Empty(t, d)

	_, err = DomainFromRPC("nope")
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestOptions_ToRPC(t *testing.T) {
	opts := &Options{
		Context: OdooContext{"lang": "fr_FR"},
		Limit:   80,
		Order:   "name asc",
		Extra:   map[string]interface{}{"lazy": false},
	}

	assert.Equal(t, map[string]interface{}{
		"context": map[string]interface{}{"lang": "fr_FR"},
		"limit":   80,
		"order":   "name asc",
		"lazy":    false,
	}, opts.ToRPC())
	assert.Equal(t, map[string]interface{}{}, (*Options)(nil).ToRPC())
	assert.Equal(t, "fr_FR", opts.Context.Lang())
	assert.Equal(t, "en_US", OdooContext(nil).Lang())
}
