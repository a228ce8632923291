package inventory

import (
	"time"

	"github.com/jomei/notionapi"
)

// Item is the normalized application record for one Notion page.
// Slice fields are always non-nil; an empty list means "none found".
type Item struct {
	// ID prefers a custom "ID" property when the database defines one,
	// falling back to the underlying page identifier.
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	RoomName    string       `json:"roomName,omitempty"`
	BoxIDs      []string     `json:"boxIds"`
	BoxNames    []string     `json:"boxNames"`
	Images      []Attachment `json:"images"`
	Attachments []Attachment `json:"attachments"`
	Status      string       `json:"status,omitempty"`
	Priority    string       `json:"priority,omitempty"`
	Category    string       `json:"category,omitempty"`
	AssignedTo  string       `json:"assignedTo,omitempty"`
	Date        string       `json:"date,omitempty"`
	URL         string       `json:"url,omitempty"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

// Room is a simplified record for one page of the rooms database.
type Room struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	ItemCount   int       `json:"itemCount"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// RoomItem is the reduced shape used by the room-scoped item listing.
type RoomItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Well-known property names in the inventory databases.
const (
	propBox         = "Box"
	propRoom        = "Room"
	propImage       = "Image"
	propAttachments = "Attachments"
	propDescription = "Description"
	propStatus      = "Status"
	propPriority    = "Priority"
	propCategory    = "Category"
	propAssignedTo  = "Assigned To"
	propDate        = "Date"
	propName        = "Name"
)

// Normalize flattens one raw Notion page, plus optionally its child blocks,
// into an Item. It is a pure transform: all I/O (fetching blocks, resolving
// relation names) happens in collaborators before or after this call.
// A malformed property degrades that one field to its empty value rather
// than failing the whole item.
func Normalize(page *notionapi.Page, blocks []notionapi.Block) Item {
	item := Item{
		BoxIDs:      []string{},
		BoxNames:    []string{},
		Images:      []Attachment{},
		Attachments: []Attachment{},
	}
	if page == nil {
		item.Title = UntitledName
		return item
	}

	props := page.Properties

	item.ID = ExtractID(props)
	if item.ID == "" {
		item.ID = string(page.ID)
	}

	item.Title = ExtractTitle(props)
	item.Description = describeWithBlocks(ExtractRichText(props[propDescription]), blocks)
	item.BoxIDs = ExtractRelationIDs(props[propBox])
	item.RoomName = ExtractRollupRelation(props[propRoom])
	item.Images = ExtractAttachments(props[propImage])
	item.Attachments = ExtractAttachments(props[propAttachments])
	item.Status = firstNonEmpty(ExtractStatus(props[propStatus]), ExtractSelect(props[propStatus]))
	item.Priority = ExtractSelect(props[propPriority])
	item.Category = ExtractSelect(props[propCategory])
	item.AssignedTo = ExtractPerson(props[propAssignedTo])
	item.Date = ExtractDate(props[propDate])
	item.URL = page.URL
	item.LastUpdated = page.LastEditedTime

	return item
}

// describeWithBlocks appends each paragraph block's plain text to the
// property-derived description, in block order, blank-line separated.
func describeWithBlocks(description string, blocks []notionapi.Block) string {
	for _, block := range blocks {
		paragraph, ok := block.(*notionapi.ParagraphBlock)
		if !ok {
			continue
		}
		text := richTextPlain(paragraph.Paragraph.RichText)
		if text == "" {
			continue
		}
		if description == "" {
			description = text
		} else {
			description += "\n\n" + text
		}
	}
	return description
}

// DirectRoomRelation returns the first page ID of a direct Room relation.
// Box pages relate to rooms directly; leaf items only see the room through
// a rollup. Empty string when there is no direct relation.
func DirectRoomRelation(page *notionapi.Page) string {
	if page == nil {
		return ""
	}
	ids := ExtractRelationIDs(page.Properties[propRoom])
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
