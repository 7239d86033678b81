package handler

import (
	"cmp"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Snapshot is one immutable generation of loaded handlers. It is never
// modified after it is published, so any number of dispatches may read it.
type Snapshot struct {
	id         string
	generation uint64
	loadedAt   time.Time
	dir        string
	namedDir   string

	general  map[string][]Descriptor
	named    map[string]Descriptor
	problems error
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		general: map[string][]Descriptor{},
		named:   map[string]Descriptor{},
	}
}

// ID is the unique id of this load pass.
func (s *Snapshot) ID() string { return s.id }

// Generation increases by one on every published reload. Zero means the
// registry has never completed a load.
func (s *Snapshot) Generation() uint64 { return s.generation }

// Loaded reports whether the snapshot came from a completed load.
func (s *Snapshot) Loaded() bool { return s.generation > 0 }

// LoadedAt is when discovery finished.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Dir is the general handler directory that was scanned.
func (s *Snapshot) Dir() string { return s.dir }

// NamedDir is the named handler directory that was scanned.
func (s *Snapshot) NamedDir() string { return s.namedDir }

// General returns the handlers bound to eventType, in discovery order.
func (s *Snapshot) General(eventType string) []Descriptor {
	return slices.Clone(s.general[eventType])
}

// Named returns the named handler with the given identifier.
func (s *Snapshot) Named(id string) (Descriptor, bool) {
	d, ok := s.named[id]
	return d, ok
}

// EventTypes returns the event types with at least one handler, sorted.
func (s *Snapshot) EventTypes() []string {
	return slices.Sorted(maps.Keys(s.general))
}

// NamedIDs returns the named handler identifiers, sorted.
func (s *Snapshot) NamedIDs() []string {
	return slices.Sorted(maps.Keys(s.named))
}

// Len returns the total number of loaded handlers.
func (s *Snapshot) Len() int {
	n := len(s.named)
	for _, list := range s.general {
		n += len(list)
	}
	return n
}

// Problems returns the files skipped during this load, joined as a
// *multierror.Error, or nil.
func (s *Snapshot) Problems() error { return s.problems }

// ProblemMessages returns one message per skipped file.
func (s *Snapshot) ProblemMessages() []string {
	var merr *multierror.Error
	if !errors.As(s.problems, &merr) {
		return nil
	}
	msgs := make([]string, len(merr.Errors))
	for i, err := range merr.Errors {
		msgs[i] = err.Error()
	}
	return msgs
}

// ListingRow is one line of the human-readable handler listing.
type ListingRow struct {
	Key      string  `json:"key"`
	Identity string  `json:"identity"`
	Name     string  `json:"name"`
	Origin   Origin  `json:"origin"`
	Binding  Binding `json:"binding"`
	Format   string  `json:"format,omitempty"`
}

// Listing returns every handler, general ones first, sorted by key then identity.
func (s *Snapshot) Listing() []ListingRow {
	rows := make([]ListingRow, 0, s.Len())
	add := func(d Descriptor) {
		rows = append(rows, ListingRow{
			Key:      d.Key(),
			Identity: d.Identity,
			Name:     d.Name,
			Origin:   d.Origin,
			Binding:  d.Binding,
			Format:   d.Format,
		})
	}
	for _, list := range s.general {
		for _, d := range list {
			add(d)
		}
	}
	for _, d := range s.named {
		add(d)
	}

	slices.SortFunc(rows, func(a, b ListingRow) int {
		return cmp.Or(
			cmp.Compare(bindingRank(a.Binding), bindingRank(b.Binding)),
			cmp.Compare(a.Key, b.Key),
			cmp.Compare(a.Identity, b.Identity),
		)
	})
	return rows
}

func bindingRank(b Binding) int {
	if b == General {
		return 0
	}
	return 1
}
