// Package model describes the manifest document kept at the top of every
// root of a backup set, and the path conventions shared by all roots.
package model

import (
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/parkeep/parkeep/pkg/status"
)

// Manifests are routinely diffed by operators across roots, so the
// serialized form must be deterministic.
var manifestJSON = jsoniter.Config{
	IndentionStep: 2,
	SortMapKeys:   true,
	EscapeHTML:    false,
}.Froze()

// TrackedFile is one file under management on a root. Entries are immutable
// once created: updates happen only by deleting and re-adding out of band.
type TrackedFile struct {
	Path          string    `json:"path"`
	Digest        string    `json:"digest"`
	Size          int64     `json:"size"`
	ParityPercent int       `json:"parityPercent"`
	ParityFiles   []string  `json:"parityFiles,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	_             struct{}
}

// Manifest is the versioned metadata document of one root.
//
// Members records the labels of every root in the backup set, fixed at init
// time. Labels are never re-derived from invocation order.
type Manifest struct {
	Version  Version                `json:"version"`
	BaseName string                 `json:"baseName"`
	Label    string                 `json:"label"`
	Members  []string               `json:"members"`
	Files    map[string]TrackedFile `json:"files"`
	_        struct{}
}

// NewManifest returns an empty manifest at the tool's current schema version
func NewManifest(baseName, label string, members []string) *Manifest {
	return &Manifest{
		Version:  CurrentVersion,
		BaseName: baseName,
		Label:    label,
		Members:  append([]string(nil), members...),
		Files:    map[string]TrackedFile{},
	}
}

// Track appends a file entry, enforcing path uniqueness within the manifest
func (m *Manifest) Track(f TrackedFile) error {
	if _, ok := m.Files[f.Path]; ok {
		return errors.Wrapf(status.ErrDuplicatePath, "%s on %s", f.Path, m.Label)
	}
	m.Files[f.Path] = f
	return nil
}

// Paths returns the tracked paths in lexical order
func (m *Manifest) Paths() []string {
	paths := make([]string, 0, len(m.Files))
	for p := range m.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// MissingMembers returns the labels recorded in the backup set that are not
// among the supplied labels, in lexical order
func (m *Manifest) MissingMembers(supplied []string) []string {
	present := make(map[string]struct{}, len(supplied))
	for _, l := range supplied {
		present[l] = struct{}{}
	}
	var missing []string
	for _, member := range m.Members {
		if _, ok := present[member]; !ok {
			missing = append(missing, member)
		}
	}
	sort.Strings(missing)
	return missing
}

// Validate checks the structural invariants of a manifest document
func Validate(m *Manifest) error {
	if m.BaseName == "" {
		return errors.New("manifest has an empty base name")
	}
	if _, ok := LabelIndex(m.BaseName, m.Label); !ok {
		return errors.Errorf("label %q does not belong to base name %q", m.Label, m.BaseName)
	}
	var labeled bool
	for _, member := range m.Members {
		if _, ok := LabelIndex(m.BaseName, member); !ok {
			return errors.Errorf("member %q does not belong to base name %q", member, m.BaseName)
		}
		if member == m.Label {
			labeled = true
		}
	}
	if !labeled {
		return errors.Errorf("label %q is not a member of its own backup set", m.Label)
	}
	for p, f := range m.Files {
		if p != f.Path {
			return errors.Errorf("tracked file %q is keyed under %q", f.Path, p)
		}
		if !InDataDir(p) {
			return errors.Wrap(status.ErrOutsideData, p)
		}
	}
	return nil
}

// MarshalManifest serializes a manifest to its canonical document form
func MarshalManifest(m *Manifest) ([]byte, error) {
	b, err := manifestJSON.Marshal(m)
	if err != nil {
		return nil, errors.Wrap(err, "marshal manifest")
	}
	return append(b, '\n'), nil
}

// UnmarshalManifest parses a manifest document. Parse failures surface as
// status.ErrCorrupt: an unparsable manifest always requires manual repair.
func UnmarshalManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := manifestJSON.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(status.ErrCorrupt, err.Error())
	}
	if m.Files == nil {
		m.Files = map[string]TrackedFile{}
	}
	if err := Validate(&m); err != nil {
		return nil, errors.Wrap(status.ErrCorrupt, err.Error())
	}
	return &m, nil
}
