package inventory

import (
	"testing"

	"github.com/jomei/notionapi"
)

func TestBuildRequest_BoxFilter(t *testing.T) {
	q := Query{Filters: map[string]string{"box": "box-123"}}

	filter, sorts := q.BuildRequest()
	if sorts != nil {
		t.Errorf("sorts = %v, want nil", sorts)
	}

	and, ok := filter.(notionapi.AndCompoundFilter)
	if !ok {
		t.Fatalf("filter type = %T, want AndCompoundFilter", filter)
	}
	if len(and) != 1 {
		t.Fatalf("got %d conditions, want 1", len(and))
	}

	prop, ok := and[0].(notionapi.PropertyFilter)
	if !ok {
		t.Fatalf("condition type = %T, want PropertyFilter", and[0])
	}
	if prop.Property != "Box" {
		t.Errorf("property = %q, want Box", prop.Property)
	}
	if prop.Relation == nil || prop.Relation.Contains != "box-123" {
		t.Errorf("relation condition = %+v, want contains box-123", prop.Relation)
	}
}

func TestBuildRequest_RoomFilterIsPlaceholder(t *testing.T) {
	// Room is a rollup, which Notion cannot filter on; the native query
	// carries a harmless non-empty condition on the name property and the
	// real constraint runs client-side.
	q := Query{Filters: map[string]string{"room": "Kitchen"}}

	filter, _ := q.BuildRequest()
	and, ok := filter.(notionapi.AndCompoundFilter)
	if !ok || len(and) != 1 {
		t.Fatalf("filter = %+v, want one condition", filter)
	}

	prop := and[0].(notionapi.PropertyFilter)
	if prop.Property != "Name" {
		t.Errorf("property = %q, want Name placeholder", prop.Property)
	}
	if prop.RichText == nil || !prop.RichText.IsNotEmpty {
		t.Errorf("placeholder condition = %+v, want is_not_empty", prop.RichText)
	}
	if prop.Relation != nil || prop.Checkbox != nil {
		t.Errorf("unexpected extra conditions on placeholder: %+v", prop)
	}

	if q.RoomFilter() != "Kitchen" {
		t.Errorf("RoomFilter() = %q, want Kitchen", q.RoomFilter())
	}
}

func TestBuildRequest_CheckboxAndText(t *testing.T) {
	q := Query{Filters: map[string]string{"Fragile": "true"}}
	filter, _ := q.BuildRequest()
	prop := filter.(notionapi.AndCompoundFilter)[0].(notionapi.PropertyFilter)
	if prop.Checkbox == nil || !prop.Checkbox.Equals {
		t.Errorf("checkbox condition = %+v, want equals true", prop.Checkbox)
	}

	q = Query{Filters: map[string]string{"Fragile": "false"}}
	filter, _ = q.BuildRequest()
	prop = filter.(notionapi.AndCompoundFilter)[0].(notionapi.PropertyFilter)
	if prop.Checkbox == nil || !prop.Checkbox.DoesNotEqual {
		t.Errorf("checkbox condition = %+v, want does_not_equal true", prop.Checkbox)
	}

	q = Query{Filters: map[string]string{"Condition": "Good"}}
	filter, _ = q.BuildRequest()
	prop = filter.(notionapi.AndCompoundFilter)[0].(notionapi.PropertyFilter)
	if prop.Property != "Condition" || prop.RichText == nil || prop.RichText.Equals != "Good" {
		t.Errorf("text condition = %+v, want rich_text equals Good", prop)
	}
}

func TestBuildRequest_EmptyValuesAndNoFilters(t *testing.T) {
	filter, sorts := Query{}.BuildRequest()
	if filter != nil || sorts != nil {
		t.Errorf("empty query: filter=%v sorts=%v, want nil/nil", filter, sorts)
	}

	filter, _ = Query{Filters: map[string]string{"Condition": ""}}.BuildRequest()
	if filter != nil {
		t.Errorf("empty value: filter=%v, want nil", filter)
	}
}

func TestBuildRequest_Sort(t *testing.T) {
	tests := []struct {
		name      string
		direction string
		want      notionapi.SortOrder
	}{
		{name: "ascending", direction: "ascending", want: notionapi.SortOrderASC},
		{name: "descending", direction: "descending", want: notionapi.SortOrderDESC},
		{name: "desc shorthand", direction: "desc", want: notionapi.SortOrderDESC},
		{name: "unknown defaults to ascending", direction: "sideways", want: notionapi.SortOrderASC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Query{Sort: &Sort{Property: "Name", Direction: tt.direction}}
			_, sorts := q.BuildRequest()
			if len(sorts) != 1 {
				t.Fatalf("got %d sorts, want 1", len(sorts))
			}
			if sorts[0].Property != "Name" || sorts[0].Direction != tt.want {
				t.Errorf("sort = %+v, want Name %s", sorts[0], tt.want)
			}
		})
	}
}

func TestFilterBySearch(t *testing.T) {
	items := []Item{
		{ID: "1", Title: "Coffee Grinder", Description: "Burr grinder"},
		{ID: "2", Title: "Winter Jacket", Description: "Down, size M"},
		{ID: "3", Title: "Mug", Description: "For coffee"},
		{ID: "4", Title: "COFFEE TABLE"},
	}

	got := FilterBySearch(items, "coffee")
	if len(got) != 3 {
		t.Fatalf("got %d items, want 3: %v", len(got), got)
	}
	// Stable subsequence: relative order preserved.
	if got[0].ID != "1" || got[1].ID != "3" || got[2].ID != "4" {
		t.Errorf("order = %s %s %s, want 1 3 4", got[0].ID, got[1].ID, got[2].ID)
	}

	if got := FilterBySearch(items, ""); len(got) != len(items) {
		t.Errorf("empty search: got %d items, want all %d", len(got), len(items))
	}

	if got := FilterBySearch(items, "zeppelin"); len(got) != 0 {
		t.Errorf("no match: got %d items, want 0", len(got))
	}
}

func TestFilterByRoom(t *testing.T) {
	// Fixture with five items across three rooms plus one unresolved.
	items := []Item{
		{ID: "1", Title: "Kettle", RoomName: "Kitchen"},
		{ID: "2", Title: "Desk Lamp", RoomName: "Office"},
		{ID: "3", Title: "Cutting Board", RoomName: "Kitchen"},
		{ID: "4", Title: "Quilt", RoomName: "Guest Suite"},
		{ID: "5", Title: "Kitchen Scale"},
	}

	t.Run("exact name match", func(t *testing.T) {
		got := FilterByRoom(items, "Kitchen", nil)
		if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
			t.Errorf("got %v, want items 1 and 3 in order", got)
		}
	})

	t.Run("slug match", func(t *testing.T) {
		got := FilterByRoom(items, "guest-suite", nil)
		if len(got) != 1 || got[0].ID != "4" {
			t.Errorf("got %v, want item 4", got)
		}
	})

	t.Run("unresolved rooms dropped without heuristic", func(t *testing.T) {
		for _, item := range FilterByRoom(items, "Kitchen", nil) {
			if item.ID == "5" {
				t.Error("item without room data must be dropped")
			}
		}
	})

	t.Run("heuristic consults unresolved items only", func(t *testing.T) {
		heuristic := func(item Item, room string) bool { return true }
		got := FilterByRoom(items, "Kitchen", heuristic)
		if len(got) != 3 || got[2].ID != "5" {
			t.Errorf("got %v, want items 1, 3, 5", got)
		}
		// Resolved non-matching rooms are never rescued by the heuristic.
		for _, item := range got {
			if item.ID == "2" || item.ID == "4" {
				t.Errorf("item %s has a different room and must stay excluded", item.ID)
			}
		}
	})

	t.Run("empty room keeps everything", func(t *testing.T) {
		if got := FilterByRoom(items, "", nil); len(got) != len(items) {
			t.Errorf("got %d, want %d", len(got), len(items))
		}
	})
}
