package reconcile

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/recordkit/postsync/internal/postman"
	"github.com/stretchr/testify/assert"
)

func folder(name string, children ...postman.Item) postman.Item {
	return postman.Item{Name: name, Items: children}
}

func request(name string) postman.Item {
	return postman.Item{Name: name, Request: &postman.Request{Method: "GET"}}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name      string
		existing  []postman.Item
		generated []postman.Item
		want      []postman.Item
	}{
		{
			name:      "empty generated returns existing unchanged",
			existing:  []postman.Item{folder("Manual Tests"), request("Ping")},
			generated: nil,
			want:      []postman.Item{folder("Manual Tests"), request("Ping")},
		},
		{
			name:      "generated folders append to empty collection",
			existing:  nil,
			generated: []postman.Item{folder("Invoice"), folder("Customer")},
			want:      []postman.Item{folder("Invoice"), folder("Customer")},
		},
		{
			name: "same-named folder is replaced wholesale",
			existing: []postman.Item{
				folder("Invoice", request("Stale Request")),
				folder("Manual Tests"),
			},
			generated: []postman.Item{
				folder("Invoice", request("List Invoice Records")),
			},
			want: []postman.Item{
				folder("Manual Tests"),
				folder("Invoice", request("List Invoice Records")),
			},
		},
		{
			name: "unrelated items keep their relative order",
			existing: []postman.Item{
				request("Ping"),
				folder("Manual Tests"),
				folder("Customer", request("Old")),
			},
			generated: []postman.Item{
				folder("Customer", request("New")),
				folder("Invoice"),
			},
			want: []postman.Item{
				request("Ping"),
				folder("Manual Tests"),
				folder("Customer", request("New")),
				folder("Invoice"),
			},
		},
		{
			name: "nested same-named folders are not touched",
			existing: []postman.Item{
				folder("Archive", folder("Invoice", request("Old"))),
			},
			generated: []postman.Item{
				folder("Invoice", request("New")),
			},
			want: []postman.Item{
				folder("Archive", folder("Invoice", request("Old"))),
				folder("Invoice", request("New")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.existing, tt.generated)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	existing := []postman.Item{
		request("Ping"),
		folder("Invoice", request("Old")),
	}
	generated := []postman.Item{
		folder("Invoice", request("List Invoice Records")),
		folder("Customer"),
	}

	once := Merge(existing, generated)
	twice := Merge(once, generated)

	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second merge changed the tree (-once +twice):\n%s", diff)
	}
}

func TestMerge_NoDuplicateNamesAfterMerge(t *testing.T) {
	existing := []postman.Item{
		folder("Invoice"),
		folder("Customer"),
		request("Ping"),
	}
	generated := []postman.Item{
		folder("Invoice"),
		folder("Supplier"),
	}

	merged := Merge(existing, generated)

	seen := make(map[string]int)
	for _, item := range merged {
		seen[item.Name]++
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, "item %q appears %d times", name, count)
	}
}

func TestDuplicateNames(t *testing.T) {
	tests := []struct {
		name  string
		items []postman.Item
		want  []string
	}{
		{
			name:  "no duplicates",
			items: []postman.Item{folder("Invoice"), folder("Customer")},
			want:  nil,
		},
		{
			name:  "one duplicate reported once",
			items: []postman.Item{folder("Invoice"), folder("Invoice"), folder("Invoice")},
			want:  []string{"Invoice"},
		},
		{
			name: "duplicates keep first-seen order",
			items: []postman.Item{
				folder("B"), folder("A"), folder("B"), folder("A"),
			},
			want: []string{"B", "A"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DuplicateNames(tt.items))
		})
	}
}
