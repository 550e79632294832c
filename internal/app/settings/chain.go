// Package settings resolves configuration values that owners inherit from
// related records along a fixed fallback chain.
package settings

import (
	"fmt"
	"strings"

	"github.com/yigit/facilityhub/internal/pkg/apperrors"
)

// Kind names an owner table.
type Kind string

const (
	KindOrganization   Kind = "organization"
	KindFacility       Kind = "facility"
	KindDepartment     Kind = "department"
	KindQuartersType   Kind = "quarters_type"
	KindQuarters       Kind = "quarters"
	KindFacultyProfile Kind = "faculty_profile"
)

// Ref points at one owner record.
type Ref struct {
	Kind Kind
	ID   int64
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%d", r.Kind, r.ID)
}

// chains lists, per kind, the dotted relation paths consulted after the owner itself.
var chains = map[Kind][]string{
	KindOrganization:   nil,
	KindFacility:       {"organization"},
	KindDepartment:     {"facility", "facility.organization"},
	KindQuartersType:   {"organization"},
	KindQuarters:       {"type", "type.organization", "facility", "facility.organization"},
	KindFacultyProfile: {"facility", "facility.organization"},
}

// relations maps a single relation hop to the kind it lands on.
var relations = map[Kind]map[string]Kind{
	KindFacility:       {"organization": KindOrganization},
	KindDepartment:     {"facility": KindFacility},
	KindQuartersType:   {"organization": KindOrganization},
	KindQuarters:       {"type": KindQuartersType, "facility": KindFacility},
	KindFacultyProfile: {"facility": KindFacility},
}

// ParseKind validates a kind received from a client.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := chains[k]; !ok {
		return "", apperrors.ErrUnknownOwnerKind
	}
	return k, nil
}

// Kinds returns every known owner kind.
func Kinds() []Kind {
	return []Kind{KindOrganization, KindFacility, KindDepartment, KindQuartersType, KindQuarters, KindFacultyProfile}
}

// Chain returns the static fallback paths of kind, in lookup order.
func Chain(kind Kind) []string {
	paths := chains[kind]
	out := make([]string, len(paths))
	copy(out, paths)
	return out
}

// Target returns the kind reached by following relation from kind.
func Target(kind Kind, relation string) (Kind, bool) {
	k, ok := relations[kind][relation]
	return k, ok
}
