package inventory

import (
	"encoding/json"
	"sort"

	"github.com/gravitas-games/buildplanner/internal/item"
)

// Policy is a whitelist or blacklist of item types and subtypes. The zero
// value restricts nothing.
type Policy struct {
	names     map[string]struct{}
	blacklist bool
}

// NewPolicy builds a policy over the given type or subtype names.
func NewPolicy(blacklist bool, names ...string) Policy {
	p := Policy{blacklist: blacklist}
	if len(names) > 0 {
		p.names = make(map[string]struct{}, len(names))
		for _, n := range names {
			p.names[n] = struct{}{}
		}
	}
	return p
}

// Whitelist allows only the listed names.
func Whitelist(names ...string) Policy { return NewPolicy(false, names...) }

// Blacklist forbids the listed names.
func Blacklist(names ...string) Policy { return NewPolicy(true, names...) }

// IsBlacklist reports the policy polarity.
func (p Policy) IsBlacklist() bool { return p.blacklist }

// Names returns the restriction set in sorted order.
func (p Policy) Names() []string {
	out := make([]string, 0, len(p.names))
	for n := range p.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// IsRestricted reports whether an item of the given type and subtype is
// refused. Either may be empty; a missing type is derived from the subtype.
// A membership match returns the polarity flag as is, no match returns its
// negation, and an empty set never restricts.
func (p Policy) IsRestricted(t item.Type, subtype string) bool {
	if len(p.names) == 0 {
		return false
	}
	if t == "" && subtype != "" {
		t, _ = item.TypeOf(subtype)
	}
	if p.has(string(t)) || p.has(subtype) {
		return p.blacklist
	}
	return !p.blacklist
}

// Restricts reports whether it is refused by the policy.
func (p Policy) Restricts(it *item.Item) bool {
	if it == nil || it.Data == nil {
		return false
	}
	return p.IsRestricted(it.Data.Type, it.Data.Subtype)
}

func (p Policy) has(name string) bool {
	if name == "" {
		return false
	}
	_, ok := p.names[name]
	return ok
}

type policyRecord struct {
	Restrictions []string `json:"restrictions"`
	Blacklist    bool     `json:"blacklist"`
}

// MarshalJSON encodes the policy as a sorted name list plus polarity.
func (p Policy) MarshalJSON() ([]byte, error) {
	return json.Marshal(policyRecord{Restrictions: p.Names(), Blacklist: p.blacklist})
}

// UnmarshalJSON decodes a policy written by MarshalJSON.
func (p *Policy) UnmarshalJSON(b []byte) error {
	var rec policyRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return err
	}
	*p = NewPolicy(rec.Blacklist, rec.Restrictions...)
	return nil
}
