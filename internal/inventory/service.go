package inventory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jomei/notionapi"

	"github.com/okibler/homedex/internal/notion"
)

// Sentinel errors surfaced at the API boundary.
var (
	// ErrNoCachedData is returned in offline mode when no snapshot exists.
	ErrNoCachedData = errors.New("no cached data available while offline")

	// ErrNotConfigured is returned when an operation needs a database ID
	// that is missing from the configuration.
	ErrNotConfigured = errors.New("required Notion database is not configured")

	// ErrUnknownRoom is returned when a room identifier matches no room.
	ErrUnknownRoom = errors.New("unknown room")
)

// NotionAPI is the Notion access the service needs. Satisfied by
// *notion.Client; tests substitute fakes.
type NotionAPI interface {
	QueryDatabase(ctx context.Context, databaseID string, filter notionapi.Filter, sorts []notionapi.SortObject) ([]notionapi.Page, error)
	GetPage(ctx context.Context, id string) (*notionapi.Page, error)
	GetBlockChildren(ctx context.Context, blockID string) ([]notionapi.Block, error)
	GetDatabase(ctx context.Context, id string) (*notionapi.Database, error)
}

// SnapshotStore is the offline cache the service writes through to.
// Implemented by cache.Store.
type SnapshotStore interface {
	Set(key string, v any) error
	Get(key string, dest any) (bool, error)
}

// Databases holds the Notion database IDs the service operates on.
type Databases struct {
	// Items is the main inventory database backing item listings.
	Items string
	// Rooms backs the rooms listing. Optional.
	Rooms string
	// RoomItems backs room-scoped item listings. Optional.
	RoomItems string
}

// Info is the connectivity/metadata check result.
type Info struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	LastSynced time.Time `json:"lastSynced"`
}

// Service implements the inventory operations on top of the Notion client,
// the normalizer, the resolver, and the offline snapshot cache.
type Service struct {
	api       NotionAPI
	resolver  *Resolver
	snapshots SnapshotStore
	databases Databases
	logger    *slog.Logger
}

// NewService wires up an inventory service. snapshots may be nil to disable
// offline caching.
func NewService(api NotionAPI, resolver *Resolver, snapshots SnapshotStore, databases Databases, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		api:       api,
		resolver:  resolver,
		snapshots: snapshots,
		databases: databases,
		logger:    logger,
	}
}

// heuristic returns the room-matching fallback predicate, or nil when
// heuristics are disabled.
func (s *Service) heuristic() func(Item, string) bool {
	if s.resolver == nil || !s.resolver.HeuristicsEnabled() {
		return nil
	}
	return s.resolver.MatchRoomHeuristically
}

// ListItems queries the items database with the given search, filters, and
// sort, normalizes every page, resolves room and box names, and applies the
// client-side constraints Notion cannot express natively. On success the
// result snapshot overwrites the offline cache wholesale. With offline set,
// no network call is made: the last snapshot is returned, and a missing
// snapshot is an explicit ErrNoCachedData.
func (s *Service) ListItems(ctx context.Context, q Query, offline bool) ([]Item, error) {
	if s.databases.Items == "" {
		return nil, fmt.Errorf("%w: items database ID", ErrNotConfigured)
	}

	cacheKey := fmt.Sprintf("database-%s", s.databases.Items)

	if offline {
		var cached []Item
		if s.snapshots != nil {
			found, err := s.snapshots.Get(cacheKey, &cached)
			if err != nil {
				return nil, fmt.Errorf("reading cache: %w", err)
			}
			if found {
				return cached, nil
			}
		}
		return nil, ErrNoCachedData
	}

	filter, sorts := q.BuildRequest()
	pages, err := s.api.QueryDatabase(ctx, s.databases.Items, filter, sorts)
	if err != nil {
		return nil, fmt.Errorf("querying items database: %w", err)
	}

	items := make([]Item, 0, len(pages))
	pagePtrs := make([]*notionapi.Page, 0, len(pages))
	for i := range pages {
		items = append(items, Normalize(&pages[i], nil))
		pagePtrs = append(pagePtrs, &pages[i])
	}

	if s.resolver != nil {
		s.resolver.ResolveItems(ctx, items, pagePtrs)
	}

	items = FilterBySearch(items, q.Search)
	items = FilterByRoom(items, q.RoomFilter(), s.heuristic())

	if s.snapshots != nil {
		if err := s.snapshots.Set(cacheKey, items); err != nil {
			s.logger.Warn("writing items snapshot failed", "error", err)
		}
	}

	return items, nil
}

// GetItem retrieves one page with its child blocks and fully resolves the
// room name and box names. A block fetch failure degrades to a
// property-only description; box and room resolution failures degrade per
// entry, never failing the item.
func (s *Service) GetItem(ctx context.Context, id string, offline bool) (*Item, error) {
	cacheKey := fmt.Sprintf("database-item-%s", id)

	if offline {
		var cached Item
		if s.snapshots != nil {
			found, err := s.snapshots.Get(cacheKey, &cached)
			if err != nil {
				return nil, fmt.Errorf("reading cache: %w", err)
			}
			if found {
				return &cached, nil
			}
		}
		return nil, ErrNoCachedData
	}

	page, err := s.api.GetPage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetching page %s: %w", id, err)
	}

	blocks, err := s.api.GetBlockChildren(ctx, id)
	if err != nil {
		s.logger.Warn("fetching page blocks failed", "page_id", id, "error", err)
		blocks = nil
	}

	item := Normalize(page, blocks)
	if s.resolver != nil {
		item.RoomName = s.resolver.ResolveRoom(ctx, page)
		item.BoxNames = s.resolver.ResolveBoxNames(ctx, item.BoxIDs)
	}

	if s.snapshots != nil {
		if err := s.snapshots.Set(cacheKey, item); err != nil {
			s.logger.Warn("writing item snapshot failed", "item_id", id, "error", err)
		}
	}

	return &item, nil
}

// ListRooms queries the rooms database and returns simplified room records.
func (s *Service) ListRooms(ctx context.Context) ([]Room, error) {
	if s.databases.Rooms == "" {
		return nil, fmt.Errorf("%w: rooms database ID", ErrNotConfigured)
	}

	pages, err := s.api.QueryDatabase(ctx, s.databases.Rooms, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying rooms database: %w", err)
	}

	rooms := make([]Room, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		name := ExtractTitle(page.Properties)
		rooms = append(rooms, Room{
			ID:          string(page.ID),
			Name:        name,
			Slug:        Slugify(name),
			Description: firstRichText(page.Properties),
			ItemCount:   int(firstNumber(page.Properties)),
			LastUpdated: page.LastEditedTime,
		})
	}

	return rooms, nil
}

// RoomItems lists the simplified items belonging to one room. The room may
// be identified by its Notion page ID or by its slug; slugs are resolved
// against the rooms database first, then the items database is queried with
// a relation filter. When heuristics are enabled and the relation query
// finds nothing, items are matched by title substring as a last resort.
func (s *Service) RoomItems(ctx context.Context, roomID string) ([]RoomItem, error) {
	if s.databases.RoomItems == "" {
		return nil, fmt.Errorf("%w: items database ID", ErrNotConfigured)
	}

	roomName := ""
	pageID := roomID
	if !notion.IsNotionID(roomID) {
		room, err := s.roomBySlug(ctx, roomID)
		if err != nil {
			return nil, err
		}
		pageID = room.ID
		roomName = room.Name
	}

	filter := notionapi.PropertyFilter{
		Property: propRoom,
		Relation: &notionapi.RelationFilterCondition{
			Contains: pageID,
		},
	}

	pages, err := s.api.QueryDatabase(ctx, s.databases.RoomItems, filter, nil)
	if err != nil {
		return nil, fmt.Errorf("querying room items: %w", err)
	}

	if len(pages) == 0 && s.heuristic() != nil && roomName != "" {
		pages, err = s.heuristicRoomPages(ctx, roomName)
		if err != nil {
			return nil, err
		}
	}

	items := make([]RoomItem, 0, len(pages))
	for i := range pages {
		page := &pages[i]
		item := RoomItem{
			ID:          string(page.ID),
			Name:        ExtractTitle(page.Properties),
			Description: firstRichText(page.Properties),
		}
		if images := ExtractAttachments(page.Properties[propImage]); len(images) > 0 {
			item.Image = images[0].URL
		}
		items = append(items, item)
	}

	return items, nil
}

// heuristicRoomPages scans the full items database and keeps pages whose
// title matches the room name by substring. Debug fallback only.
func (s *Service) heuristicRoomPages(ctx context.Context, roomName string) ([]notionapi.Page, error) {
	s.logger.Warn("falling back to heuristic room matching", "room", roomName)

	pages, err := s.api.QueryDatabase(ctx, s.databases.RoomItems, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying items for heuristic match: %w", err)
	}

	matched := pages[:0:0]
	for i := range pages {
		item := Item{Title: ExtractTitle(pages[i].Properties)}
		if s.resolver.MatchRoomHeuristically(item, roomName) {
			matched = append(matched, pages[i])
		}
	}
	return matched, nil
}

// roomBySlug resolves a human-readable room slug against the rooms database.
func (s *Service) roomBySlug(ctx context.Context, slug string) (*Room, error) {
	rooms, err := s.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].Slug == slug {
			return &rooms[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownRoom, slug)
}

// DatabaseInfo retrieves metadata for the items database, used by the
// connectivity check endpoints.
func (s *Service) DatabaseInfo(ctx context.Context) (*Info, error) {
	if s.databases.Items == "" {
		return nil, fmt.Errorf("%w: items database ID", ErrNotConfigured)
	}

	db, err := s.api.GetDatabase(ctx, s.databases.Items)
	if err != nil {
		return nil, fmt.Errorf("retrieving database: %w", err)
	}

	title := richTextPlain(db.Title)
	if title == "" {
		title = "Notion Database"
	}

	return &Info{
		ID:         string(db.ID),
		Title:      title,
		LastSynced: time.Now().UTC(),
	}, nil
}

// firstRichText returns the first non-empty rich_text property value,
// preferring one named Description. Rooms databases in the wild name their
// description column inconsistently.
func firstRichText(properties notionapi.Properties) string {
	if text := ExtractRichText(properties[propDescription]); text != "" {
		return text
	}
	for _, prop := range properties {
		if text := ExtractRichText(prop); text != "" {
			return text
		}
	}
	return ""
}

// firstNumber returns the first number property value found, or zero.
func firstNumber(properties notionapi.Properties) float64 {
	for _, prop := range properties {
		if num, ok := prop.(*notionapi.NumberProperty); ok && num != nil {
			return num.Number
		}
	}
	return 0
}
