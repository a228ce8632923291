package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jomei/notionapi"
)

// AllOption is the sentinel first entry of every filter's value list,
// meaning "no constraint".
const AllOption = "All"

// FilterOption describes one UI-facing filter: which property it targets,
// its currently selected value, and the legal values. Available always
// starts with the AllOption sentinel.
type FilterOption struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Name      string   `json:"name"`
	Value     string   `json:"value"`
	Available []string `json:"available"`
}

// FilterOptions builds the filter descriptors for the items database:
// one per select property in the schema, plus a room filter populated from
// the rooms database when one is configured. Selected values default to
// the AllOption sentinel.
func (s *Service) FilterOptions(ctx context.Context) ([]FilterOption, error) {
	if s.databases.Items == "" {
		return nil, fmt.Errorf("%w: items database ID", ErrNotConfigured)
	}

	db, err := s.api.GetDatabase(ctx, s.databases.Items)
	if err != nil {
		return nil, fmt.Errorf("retrieving database schema: %w", err)
	}

	var options []FilterOption
	for name, config := range db.Properties {
		selectConfig, ok := config.(*notionapi.SelectPropertyConfig)
		if !ok {
			continue
		}

		available := []string{AllOption}
		for _, opt := range selectConfig.Select.Options {
			if opt.Name != "" {
				available = append(available, opt.Name)
			}
		}

		options = append(options, FilterOption{
			ID:        Slugify(name),
			Type:      "select",
			Name:      name,
			Value:     AllOption,
			Available: available,
		})
	}

	// Schema maps iterate in random order; keep output stable.
	sort.Slice(options, func(i, j int) bool { return options[i].Name < options[j].Name })

	if s.databases.Rooms != "" {
		rooms, err := s.ListRooms(ctx)
		if err != nil {
			return nil, err
		}

		available := []string{AllOption}
		for _, room := range rooms {
			available = append(available, room.Name)
		}

		options = append(options, FilterOption{
			ID:        "room",
			Type:      "room",
			Name:      "Room",
			Value:     AllOption,
			Available: available,
		})
	}

	return options, nil
}
