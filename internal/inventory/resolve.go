package inventory

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jomei/notionapi"

	"github.com/okibler/homedex/internal/notion"
)

// PageFetcher is the read access the resolver needs to the Notion API.
// Satisfied by *notion.Client.
type PageFetcher interface {
	GetPage(ctx context.Context, id string) (*notionapi.Page, error)
}

// Resolver fills in human-readable room and box names for items, following
// relation and rollup references to other pages. Resolution failures
// degrade: a room that cannot be resolved becomes an empty string, a box
// that cannot be fetched keeps its raw identifier. Nothing here fails the
// item or the batch.
type Resolver struct {
	fetcher PageFetcher
	pool    *notion.WorkerPool
	logger  *slog.Logger

	// enableHeuristics turns on substring-based room matching for items
	// without any room relation or rollup. Schema-fragile; debug use only.
	enableHeuristics bool
}

// NewResolver creates a resolver running box lookups through the given
// worker pool.
func NewResolver(fetcher PageFetcher, pool *notion.WorkerPool, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if pool == nil {
		pool = notion.DefaultWorkerPool(fetcher)
	}
	return &Resolver{fetcher: fetcher, pool: pool, logger: logger}
}

// EnableHeuristics switches on last-resort substring room matching.
func (r *Resolver) EnableHeuristics() {
	r.enableHeuristics = true
}

// ResolveRoom determines the room name for a page. A direct Room relation
// (box pages) wins: the related page is fetched and its title extracted.
// Otherwise the Room rollup (leaf items, related via a box) is used.
func (r *Resolver) ResolveRoom(ctx context.Context, page *notionapi.Page) string {
	if roomID := DirectRoomRelation(page); roomID != "" {
		roomPage, err := r.fetcher.GetPage(ctx, roomID)
		if err != nil {
			r.logger.Warn("resolving room page failed", "room_id", roomID, "error", err)
		} else if name := ExtractTitle(roomPage.Properties); name != UntitledName {
			return name
		}
	}

	if page == nil {
		return ""
	}
	return ExtractRollupRelation(page.Properties[propRoom])
}

// ResolveBoxNames resolves each box ID to the related page's title,
// preserving input order. A failed lookup degrades that entry to the raw
// box identifier and never aborts the batch. Lookups run concurrently
// through the worker pool, de-duplicated across repeated IDs.
func (r *Resolver) ResolveBoxNames(ctx context.Context, boxIDs []string) []string {
	names := make([]string, 0, len(boxIDs))
	if len(boxIDs) == 0 {
		return names
	}

	pages, failures := r.pool.FetchPages(ctx, boxIDs)
	for id, err := range failures {
		r.logger.Warn("resolving box page failed", "box_id", id, "error", err)
	}

	for _, id := range boxIDs {
		page, ok := pages[id]
		if !ok {
			names = append(names, id)
			continue
		}
		names = append(names, ExtractTitle(page.Properties))
	}

	return names
}

// ResolveItems fills RoomName and BoxNames for a batch of items backed by
// their raw pages. Box pages across the whole batch are fetched in one
// de-duplicated parallel pass, so repeated boxes cost one lookup.
func (r *Resolver) ResolveItems(ctx context.Context, items []Item, pages []*notionapi.Page) {
	var allBoxIDs []string
	for _, item := range items {
		allBoxIDs = append(allBoxIDs, item.BoxIDs...)
	}

	boxPages, failures := map[string]*notionapi.Page{}, map[string]error{}
	if len(allBoxIDs) > 0 {
		boxPages, failures = r.pool.FetchPages(ctx, allBoxIDs)
	}
	for id, err := range failures {
		r.logger.Warn("resolving box page failed", "box_id", id, "error", err)
	}

	for i := range items {
		if i < len(pages) && items[i].RoomName == "" {
			items[i].RoomName = r.ResolveRoom(ctx, pages[i])
		}

		names := make([]string, 0, len(items[i].BoxIDs))
		for _, id := range items[i].BoxIDs {
			if page, ok := boxPages[id]; ok {
				names = append(names, ExtractTitle(page.Properties))
			} else {
				names = append(names, id)
			}
		}
		items[i].BoxNames = names
	}
}

// MatchRoomHeuristically reports whether an item's title suggests it
// belongs to the named room, by case-insensitive substring match on any
// word of the room name. This stands in for a true relation when the
// schema doesn't support one. Only consulted when heuristics are enabled;
// it is order-dependent and fragile, never a primary mechanism.
func (r *Resolver) MatchRoomHeuristically(item Item, roomName string) bool {
	if !r.enableHeuristics || roomName == "" {
		return false
	}

	title := strings.ToLower(item.Title)
	for _, word := range strings.Fields(strings.ToLower(roomName)) {
		if strings.Contains(title, word) {
			return true
		}
	}
	return false
}

// HeuristicsEnabled reports whether heuristic room matching is active.
func (r *Resolver) HeuristicsEnabled() bool {
	return r.enableHeuristics
}
