// SPDX-License-Identifier: AGPL-3.0-only
package scraper

// DedupIndex tracks which identities and content hashes one feed
// session has already emitted. It belongs to a single pipeline and is
// never shared, so no locking is involved.
type DedupIndex struct {
	ids    map[string]struct{}
	hashes map[string]struct{}
}

func NewDedupIndex() *DedupIndex {
	return &DedupIndex{
		ids:    make(map[string]struct{}),
		hashes: make(map[string]struct{}),
	}
}

// Admit reports whether the item is new and records it in the same
// step. A second call with the same identity always returns false.
func (d *DedupIndex) Admit(identity, contentHash string) bool {
	if _, seen := d.ids[identity]; seen {
		return false
	}
	if contentHash != "" {
		if _, seen := d.hashes[contentHash]; seen {
			return false
		}
		d.hashes[contentHash] = struct{}{}
	}
	d.ids[identity] = struct{}{}
	return true
}

func (d *DedupIndex) Len() int {
	return len(d.ids)
}
