// Package reconcile merges freshly generated folders into an existing
// collection tree. The merge is a replace-by-name over direct children:
// same-named folders are replaced wholesale, everything else is preserved
// in its original relative order. It never recurses; regenerating a
// nested folder means regenerating its top-level parent as a unit.
package reconcile

import "github.com/recordkit/postsync/internal/postman"

// Merge computes the reconciled child list for a collection node.
//
// The result is every existing item whose name does not collide with a
// generated folder, in original order, followed by all generated folders
// in generation order. An empty generated set returns existing unchanged.
//
// After a merge no two direct-child folders share a name, provided the
// generated set itself has unique names; collisions with preserved items
// cannot occur because colliding names are dropped from the preserved set.
func Merge(existing, generated []postman.Item) []postman.Item {
	if len(generated) == 0 {
		return existing
	}

	replaced := make(map[string]struct{}, len(generated))
	for _, folder := range generated {
		replaced[folder.Name] = struct{}{}
	}

	merged := make([]postman.Item, 0, len(existing)+len(generated))
	for _, item := range existing {
		if _, drop := replaced[item.Name]; drop {
			continue
		}
		merged = append(merged, item)
	}
	merged = append(merged, generated...)

	return merged
}

// DuplicateNames returns the folder names that appear more than once in
// items. The syncer logs these: two unrelated generation targets emitting
// the same folder name silently resolve to last-writer-wins, which should
// at least be visible.
func DuplicateNames(items []postman.Item) []string {
	counts := make(map[string]int, len(items))
	var order []string
	for _, item := range items {
		if counts[item.Name] == 0 {
			order = append(order, item.Name)
		}
		counts[item.Name]++
	}

	var dups []string
	for _, name := range order {
		if counts[name] > 1 {
			dups = append(dups, name)
		}
	}
	return dups
}
