// Package inventory implements the normalization and query layer that
// flattens Notion's typed property payloads into application item records.
//
// Notion returns properties as a tagged union with ~15 variants and several
// historical encodings for relation-like values. Extraction is centralized
// here so callers share one set of empty-value semantics: every extractor
// takes a property value, returns a best-effort scalar or list, and never
// panics. On a type mismatch or missing sub-field the extractor returns the
// type's empty value ("", nil, or an empty slice).
package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jomei/notionapi"
)

// UntitledName is the sentinel title for pages without a title property.
const UntitledName = "Untitled"

// Attachment is one file entry extracted from a files property.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ExtractTitle scans properties for the title-type property and concatenates
// its rich text runs. Returns UntitledName if no title property exists or it
// is empty.
func ExtractTitle(properties notionapi.Properties) string {
	for _, prop := range properties {
		if titleProp, ok := prop.(*notionapi.TitleProperty); ok {
			if title := richTextPlain(titleProp.Title); title != "" {
				return title
			}
		}
	}
	return UntitledName
}

// ExtractRichText concatenates all plain-text segments of a rich_text
// property. Empty string if the property is absent or a different type.
func ExtractRichText(prop notionapi.Property) string {
	rt, ok := prop.(*notionapi.RichTextProperty)
	if !ok || rt == nil {
		return ""
	}
	return richTextPlain(rt.RichText)
}

// ExtractSelect returns the selected option's name, or empty string.
func ExtractSelect(prop notionapi.Property) string {
	sel, ok := prop.(*notionapi.SelectProperty)
	if !ok || sel == nil {
		return ""
	}
	return sel.Select.Name
}

// ExtractStatus returns the status option's name, or empty string.
func ExtractStatus(prop notionapi.Property) string {
	st, ok := prop.(*notionapi.StatusProperty)
	if !ok || st == nil {
		return ""
	}
	return st.Status.Name
}

// ExtractDate returns the ISO start date string, or empty string when the
// property is absent, a different type, or has no start date.
func ExtractDate(prop notionapi.Property) string {
	date, ok := prop.(*notionapi.DateProperty)
	if !ok || date == nil || date.Date == nil || date.Date.Start == nil {
		return ""
	}
	return date.Date.Start.String()
}

// ExtractPerson returns the first assigned person's display name, falling
// back to their identifier when no name is set. Empty string if nobody is
// assigned.
func ExtractPerson(prop notionapi.Property) string {
	people, ok := prop.(*notionapi.PeopleProperty)
	if !ok || people == nil || len(people.People) == 0 {
		return ""
	}
	first := people.People[0]
	if first.Name != "" {
		return first.Name
	}
	return string(first.ID)
}

// ExtractNumber returns the numeric value of a number property, or zero.
func ExtractNumber(prop notionapi.Property) float64 {
	num, ok := prop.(*notionapi.NumberProperty)
	if !ok || num == nil {
		return 0
	}
	return num.Number
}

// ExtractAttachments maps each file entry of a files property to an
// Attachment, preferring the Notion-hosted URL over the external one.
// Entries resolving to no URL are dropped, so the result never contains an
// empty URL. The returned slice is never nil.
func ExtractAttachments(prop notionapi.Property) []Attachment {
	out := []Attachment{}
	files, ok := prop.(*notionapi.FilesProperty)
	if !ok || files == nil {
		return out
	}

	for _, f := range files.Files {
		url := ""
		if f.File != nil && f.File.URL != "" {
			url = f.File.URL
		} else if f.External != nil && f.External.URL != "" {
			url = f.External.URL
		}
		if url == "" {
			continue
		}

		name := f.Name
		if name == "" {
			name = "Attachment"
		}
		out = append(out, Attachment{Name: name, URL: url})
	}

	return out
}

// ExtractRelationIDs returns the related page identifiers of a relation
// property, in the order Notion returned them. Never nil.
func ExtractRelationIDs(prop notionapi.Property) []string {
	out := []string{}
	rel, ok := prop.(*notionapi.RelationProperty)
	if !ok || rel == nil {
		return out
	}
	for _, r := range rel.Relation {
		out = append(out, string(r.ID))
	}
	return out
}

// ExtractRollupRelation handles a rollup whose elements are themselves
// relations or titles. Rollups configured to show the related page's title
// carry embedded title text; those are joined with ", ". Rollups over bare
// relations only carry page identifiers, which are joined instead. Returns
// empty string for any other rollup shape.
func ExtractRollupRelation(prop notionapi.Property) string {
	rollup, ok := prop.(*notionapi.RollupProperty)
	if !ok || rollup == nil {
		return ""
	}
	if rollup.Rollup.Type != notionapi.RollupTypeArray {
		return ""
	}

	var titles []string
	var ids []string

	for _, element := range rollup.Rollup.Array {
		switch el := element.(type) {
		case *notionapi.TitleProperty:
			if text := richTextPlain(el.Title); text != "" {
				titles = append(titles, text)
			}
		case *notionapi.RelationProperty:
			for _, r := range el.Relation {
				if r.ID != "" {
					ids = append(ids, string(r.ID))
				}
			}
		}
	}

	if len(titles) > 0 {
		return strings.Join(titles, ", ")
	}
	return strings.Join(ids, ", ")
}

// ExtractID looks for a property literally named "ID" (case-insensitive
// fallback scan) and reads it as a rich text, number, or unique_id value.
// Returns empty string when no such property exists. Callers fall back to
// the page identifier.
func ExtractID(properties notionapi.Properties) string {
	if prop, ok := properties["ID"]; ok {
		if id := idPropertyValue(prop); id != "" {
			return id
		}
	}

	for name, prop := range properties {
		if strings.EqualFold(name, "id") {
			if id := idPropertyValue(prop); id != "" {
				return id
			}
		}
	}

	return ""
}

// idPropertyValue decodes the value of an ID-bearing property.
func idPropertyValue(prop notionapi.Property) string {
	switch p := prop.(type) {
	case *notionapi.RichTextProperty:
		return richTextPlain(p.RichText)
	case *notionapi.NumberProperty:
		if p.Number == 0 {
			return ""
		}
		return strconv.FormatFloat(p.Number, 'f', -1, 64)
	case *notionapi.UniqueIDProperty:
		if p.UniqueID.Prefix != nil && *p.UniqueID.Prefix != "" {
			return fmt.Sprintf("%s-%d", *p.UniqueID.Prefix, p.UniqueID.Number)
		}
		return strconv.Itoa(p.UniqueID.Number)
	}
	return ""
}

// richTextPlain concatenates the plain-text runs of a rich text array.
func richTextPlain(richText []notionapi.RichText) string {
	var sb strings.Builder
	for _, rt := range richText {
		sb.WriteString(rt.PlainText)
	}
	return sb.String()
}

// Slugify lowercases a display name and replaces whitespace runs with
// hyphens, matching the identifiers the UI uses for rooms
// ("Living Room" -> "living-room").
func Slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}
