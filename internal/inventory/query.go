package inventory

import (
	"strings"

	"github.com/jomei/notionapi"
)

// Sort orders query results by one property.
type Sort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"` // "ascending" or "descending"
}

// Query carries caller-supplied search, filter, and sort parameters for an
// item listing. Filter keys name properties; a missing key means no
// constraint on that property.
type Query struct {
	Search  string            `json:"search,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
	Sort    *Sort             `json:"sort,omitempty"`
}

// Filter keys with non-generic translations.
const (
	filterKeyBox  = "box"
	filterKeyRoom = "room"
)

// RoomFilter returns the requested room constraint, empty if none.
// Room is a rollup property, which Notion cannot filter natively; the
// constraint is applied client-side after the query.
func (q Query) RoomFilter() string {
	return q.Filters[filterKeyRoom]
}

// BuildRequest translates the query into a native Notion filter and sort
// clause. Conditions Notion can express run server-side: box filters become
// relation "contains", boolean-looking values become checkbox equality, and
// everything else becomes rich_text equality. The room filter cannot be
// expressed (rollup), so it is replaced with a harmless non-empty condition
// on the name property to keep the query valid, and the real constraint is
// applied client-side afterward.
func (q Query) BuildRequest() (notionapi.Filter, []notionapi.SortObject) {
	var conditions notionapi.AndCompoundFilter

	for key, value := range q.Filters {
		if value == "" {
			continue
		}

		switch {
		case key == filterKeyBox:
			conditions = append(conditions, notionapi.PropertyFilter{
				Property: propBox,
				Relation: &notionapi.RelationFilterCondition{
					Contains: value,
				},
			})

		case key == filterKeyRoom:
			conditions = append(conditions, notionapi.PropertyFilter{
				Property: propName,
				RichText: &notionapi.TextFilterCondition{
					IsNotEmpty: true,
				},
			})

		case value == "true" || value == "false":
			conditions = append(conditions, notionapi.PropertyFilter{
				Property: key,
				Checkbox: &notionapi.CheckboxFilterCondition{
					Equals:       value == "true",
					DoesNotEqual: value == "false",
				},
			})

		default:
			conditions = append(conditions, notionapi.PropertyFilter{
				Property: key,
				RichText: &notionapi.TextFilterCondition{
					Equals: value,
				},
			})
		}
	}

	var filter notionapi.Filter
	if len(conditions) > 0 {
		filter = conditions
	}

	var sorts []notionapi.SortObject
	if q.Sort != nil && q.Sort.Property != "" {
		direction := notionapi.SortOrderASC
		if strings.EqualFold(q.Sort.Direction, "descending") || strings.EqualFold(q.Sort.Direction, "desc") {
			direction = notionapi.SortOrderDESC
		}
		sorts = []notionapi.SortObject{{
			Property:  q.Sort.Property,
			Direction: direction,
		}}
	}

	return filter, sorts
}

// FilterBySearch keeps items whose title or description contains the search
// term, case-insensitive. Filtering is a stable subsequence: relative order
// is preserved. An empty term keeps everything.
func FilterBySearch(items []Item, search string) []Item {
	if search == "" {
		return items
	}

	needle := strings.ToLower(search)
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), needle) ||
			strings.Contains(strings.ToLower(item.Description), needle) {
			out = append(out, item)
		}
	}
	return out
}

// FilterByRoom keeps items whose resolved room name matches the requested
// room, by exact name or by slug ("Living Room" matches "living-room").
// Items with no resolved room are consulted against the heuristic matcher
// when one is supplied; with heuristic == nil they are dropped. Relative
// order is preserved.
func FilterByRoom(items []Item, room string, heuristic func(Item, string) bool) []Item {
	if room == "" {
		return items
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if item.RoomName != "" {
			if item.RoomName == room || Slugify(item.RoomName) == room {
				out = append(out, item)
			}
			continue
		}
		if heuristic != nil && heuristic(item, room) {
			out = append(out, item)
		}
	}
	return out
}
