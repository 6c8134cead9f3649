package godoo

// types.go

import "reflect"

// Model is an Odoo model name.
type Model string

// Models commonly inserted as pivots or lists.
const (
	ModelCrmLead         Model = "crm.lead"
	ModelCrmStage        Model = "crm.stage"
	ModelResPartner      Model = "res.partner"
	ModelResUsers        Model = "res.users"
	ModelResCurrency     Model = "res.currency"
	ModelSaleOrder       Model = "sale.order"
	ModelSaleOrderLine   Model = "sale.order.line"
	ModelAccountMove     Model = "account.move"
	ModelAccountMoveLine Model = "account.move.line"
	ModelProductProduct  Model = "product.product"
	ModelProjectTask     Model = "project.task"
	ModelHrEmployee      Model = "hr.employee"
)

// DomainCondition is one element of an Odoo domain: either a 3-element
// condition {field, operator, value} or a 1-element logical operator {"|"},
// {"&"} or {"!"}.
type DomainCondition []interface{}

// Operator returns the logical operator held by a 1-element condition.
func (c DomainCondition) Operator() (string, bool) {
	if len(c) != 1 {
		return "", false
	}
	op, ok := c[0].(string)
	if !ok {
		return "", false
	}
	switch op {
	case "&", "|", "!":
		return op, true
	}
	return "", false
}

// Domain is an Odoo domain in prefix (Polish) notation. Consecutive leaves
// are implicitly combined with AND.
//
//	godoo.Domain{{"|"}, {"stage_id", "=", 1}, {"stage_id", "=", 2}}
type Domain []DomainCondition

// TrueDomain matches every record, FalseDomain none.
var (
	TrueDomain  = Domain{{1, "=", 1}}
	FalseDomain = Domain{{0, "=", 1}}
)

// ToRPC converts the domain into the []interface{} shape sent over XML-RPC,
// turning 1-element operator conditions into bare strings.
func (d Domain) ToRPC() []interface{} {
	if d == nil {
		return []interface{}{}
	}

	rpcDomain := make([]interface{}, 0, len(d))
	for _, cond := range d {
		if len(cond) == 1 {
			if op, ok := cond[0].(string); ok {
				rpcDomain = append(rpcDomain, op)
				continue
			}
		}
		rpcDomain = append(rpcDomain, []interface{}(cond))
	}
	return rpcDomain
}

// Normalize makes the implicit AND operators explicit so the domain can be
// nested inside another one.
func (d Domain) Normalize() Domain {
	if len(d) == 0 {
		return Domain{}
	}
	result := make(Domain, 0, len(d))
	ands := 0
	expected := 1
	for _, cond := range d {
		if expected == 0 {
			ands++
			expected = 1
		}
		if op, ok := cond.Operator(); ok {
			if op != "!" {
				expected++
			}
		} else {
			expected--
		}
		result = append(result, cond)
	}
	if ands == 0 {
		return result
	}
	prefix := make(Domain, ands, ands+len(result))
	for i := range prefix {
		prefix[i] = DomainCondition{"&"}
	}
	return append(prefix, result...)
}

// IsTrue reports whether the domain matches everything.
func (d Domain) IsTrue() bool {
	return len(d) == 0 || d.equal(TrueDomain)
}

func (d Domain) equal(other Domain) bool {
	return reflect.DeepEqual(d, other)
}

// AndDomains combines domains with AND. Empty domains are neutral.
func AndDomains(domains ...Domain) Domain {
	return combine("&", TrueDomain, FalseDomain, domains)
}

// OrDomains combines domains with OR. An empty domain matches everything
// and absorbs the whole expression; no domain at all yields FalseDomain.
func OrDomains(domains ...Domain) Domain {
	for _, d := range domains {
		if d.IsTrue() {
			return Domain{}
		}
	}
	return combine("|", FalseDomain, TrueDomain, domains)
}

func combine(op string, unit, zero Domain, domains []Domain) Domain {
	var result Domain
	count := 0
	for _, d := range domains {
		if len(d) == 0 || d.equal(unit) {
			continue
		}
		if d.equal(zero) {
			return zero
		}
		result = append(result, d.Normalize()...)
		count++
	}
	if count == 0 {
		if op == "&" {
			return Domain{}
		}
		return unit
	}
	prefix := make(Domain, count-1, count-1+len(result))
	for i := range prefix {
		prefix[i] = DomainCondition{op}
	}
	return append(prefix, result...)
}

// DomainFromRPC converts an XML-RPC decoded domain (for instance the
// __domain of a read_group row) back into a Domain.
func DomainFromRPC(raw interface{}) (Domain, error) {
	items, ok := raw.([]interface{})
	if !ok {
		if raw == nil {
			return Domain{}, nil
		}
		return nil, ErrInvalidResponse
	}
	domain := make(Domain, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			domain = append(domain, DomainCondition{v})
		case []interface{}:
			domain = append(domain, DomainCondition(v))
		default:
			return nil, ErrInvalidResponse
		}
	}
	return domain, nil
}

// Fields is a list of field names to read.
type Fields []string

func (f Fields) ToRPC() []string {
	return []string(f)
}

// OdooContext is the 'context' dictionary of an RPC call (lang, tz, ...).
type OdooContext map[string]interface{}

// Lang returns the context language, "en_US" when unset.
func (c OdooContext) Lang() string {
	if lang, ok := c["lang"].(string); ok && lang != "" {
		return lang
	}
	return "en_US"
}

// Options are the common keyword arguments of Odoo RPC methods.
type Options struct {
	Context OdooContext            `json:"context,omitempty"`
	Limit   int                    `json:"limit,omitempty"`
	Offset  int                    `json:"offset,omitempty"`
	Order   string                 `json:"order,omitempty"`
	Extra   map[string]interface{} `json:"extra,omitempty"`
}

// ToRPC converts the options into the kwargs map of execute_kw.
func (o *Options) ToRPC() map[string]interface{} {
	if o == nil {
		return map[string]interface{}{}
	}

	rpcOptions := make(map[string]interface{})
	if len(o.Context) > 0 {
		rpcOptions["context"] = map[string]interface{}(o.Context)
	}
	if o.Limit > 0 {
		rpcOptions["limit"] = o.Limit
	}
	if o.Offset > 0 {
		rpcOptions["offset"] = o.Offset
	}
	if o.Order != "" {
		rpcOptions["order"] = o.Order
	}
	for k, v := range o.Extra {
		rpcOptions[k] = v
	}
	return rpcOptions
}

// firstOptions returns the first non nil Options, or an empty one.
func firstOptions(options []*Options) *Options {
	if len(options) == 0 || options[0] == nil {
		return &Options{}
	}
	return options[0]
}
