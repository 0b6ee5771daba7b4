package phase

import (
	"fmt"
	"math"
	"strings"

	"github.com/turtacn/phdg/pkg/errors"
)

// Slot is one entry of a manifest: a stoichiometric coefficient and the
// substance type that fills it.
type Slot struct {
	Coefficient float64 `json:"coefficient"`
	Type        string  `json:"type"`
}

// Manifest is a stoichiometric template, e.g. [(1, Al2O3), (1, H2O)].
type Manifest []Slot

func (m Manifest) String() string {
	parts := make([]string, len(m))
	for i, s := range m {
		parts[i] = fmt.Sprintf("%g %s", s.Coefficient, s.Type)
	}
	return strings.Join(parts, " + ")
}

// System owns the substances of a chemical system and the manifests that
// describe which combinations of them are candidate products.
type System struct {
	substances []*Substance
	manifests  []Manifest
}

// NewSystem validates substances and manifests.  Substance names must be
// unique within a type; manifests must be non-empty with finite coefficients
// and named types.  Manifest types that match no substance are allowed and
// simply produce no combinations.
func NewSystem(substances []*Substance, manifests []Manifest) (*System, error) {
	seen := make(map[[2]string]struct{}, len(substances))
	for i, s := range substances {
		if s == nil {
			return nil, errors.Newf(errors.ErrCodeSubstanceInvalid, "substance %d is nil", i)
		}
		key := [2]string{s.Type(), s.Name()}
		if _, dup := seen[key]; dup {
			return nil, errors.New(errors.ErrCodeSubstanceDuplicate, "duplicate substance name within type").
				WithDetail(s.Type() + "/" + s.Name())
		}
		seen[key] = struct{}{}
	}
	for i, m := range manifests {
		if len(m) == 0 {
			return nil, errors.Newf(errors.ErrCodeManifestInvalid, "manifest %d is empty", i)
		}
		for j, slot := range m {
			if slot.Type == "" {
				return nil, errors.Newf(errors.ErrCodeManifestInvalid, "manifest %d slot %d has no type", i, j)
			}
			if math.IsNaN(slot.Coefficient) || math.IsInf(slot.Coefficient, 0) {
				return nil, errors.Newf(errors.ErrCodeManifestInvalid,
					"manifest %d slot %d coefficient is not finite", i, j)
			}
		}
	}

	sys := &System{
		substances: append([]*Substance(nil), substances...),
		manifests:  make([]Manifest, len(manifests)),
	}
	for i, m := range manifests {
		sys.manifests[i] = append(Manifest(nil), m...)
	}
	return sys, nil
}

// Substances returns the owned substances in declaration order.
func (s *System) Substances() []*Substance { return append([]*Substance(nil), s.substances...) }

// Manifests returns the manifests in declaration order.
func (s *System) Manifests() []Manifest {
	out := make([]Manifest, len(s.manifests))
	for i, m := range s.manifests {
		out[i] = append(Manifest(nil), m...)
	}
	return out
}

// SubstancesOfType returns every substance whose type equals kind, in
// declaration order.
func (s *System) SubstancesOfType(kind string) []*Substance {
	var out []*Substance
	for _, sub := range s.substances {
		if sub.Type() == kind {
			out = append(out, sub)
		}
	}
	return out
}

// UnmatchedTypes lists manifest types that no substance provides, in
// first-seen order.
func (s *System) UnmatchedTypes() []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range s.manifests {
		for _, slot := range m {
			if seen[slot.Type] {
				continue
			}
			seen[slot.Type] = true
			if len(s.SubstancesOfType(slot.Type)) == 0 {
				out = append(out, slot.Type)
			}
		}
	}
	return out
}

// FindCombinations enumerates every valid combination.  For each manifest,
// in order, it walks the Cartesian product of the substances matching each
// slot (last slot varying fastest) and keeps the combinations whose domain is
// non-degenerate.  The order is stable across calls and is used as the
// combination index by the classifier.
func (s *System) FindCombinations() []*Combination {
	var out []*Combination
	for _, m := range s.manifests {
		out = append(out, s.CombinationsForManifest(m)...)
	}
	return out
}

// CombinationsForManifest enumerates the valid combinations of a single
// manifest.
func (s *System) CombinationsForManifest(m Manifest) []*Combination {
	if len(m) == 0 {
		return nil
	}
	choices := make([][]*Substance, len(m))
	for i, slot := range m {
		choices[i] = s.SubstancesOfType(slot.Type)
		if len(choices[i]) == 0 {
			return nil
		}
	}

	var out []*Combination
	idx := make([]int, len(m))
	for {
		terms := make([]Term, len(m))
		for i, slot := range m {
			terms[i] = Term{Coefficient: slot.Coefficient, Substance: choices[i][idx[i]]}
		}
		if c := NewCombination(terms); c.IsValid() {
			out = append(out, c)
		}

		// odometer increment, rightmost digit first
		k := len(idx) - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < len(choices[k]) {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			return out
		}
	}
}

//Personal.AI order the ending
