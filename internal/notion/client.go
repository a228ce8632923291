package notion

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jomei/notionapi"
)

// DatabaseInfo describes a Notion database the integration can reach.
type DatabaseInfo struct {
	ID             string
	Title          string
	Icon           string // Emoji icon if set
	LastEditedTime time.Time
}

// Client wraps the Notion API client with rate limiting and convenience methods.
type Client struct {
	api     *notionapi.Client
	limiter *RateLimiter
	logger  *slog.Logger
}

// NewClient creates a new Notion client with rate limiting.
func NewClient(token string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		api:     notionapi.NewClient(notionapi.Token(token)),
		limiter: DefaultRateLimiter(),
		logger:  logger,
	}
}

// GetPage retrieves a page by ID with rate limiting.
func (c *Client) GetPage(ctx context.Context, id string) (*notionapi.Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("fetching page", "id", id)
	page, err := c.api.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		return nil, c.handleError(err)
	}
	c.markSuccess()
	return page, nil
}

// GetDatabase retrieves database metadata by ID with rate limiting.
func (c *Client) GetDatabase(ctx context.Context, id string) (*notionapi.Database, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("fetching database", "id", id)
	db, err := c.api.Database.Get(ctx, notionapi.DatabaseID(id))
	if err != nil {
		return nil, c.handleError(err)
	}
	c.markSuccess()
	return db, nil
}

// GetDatabaseInfo retrieves database metadata in a flattened form,
// suitable for connectivity checks.
func (c *Client) GetDatabaseInfo(ctx context.Context, id string) (*DatabaseInfo, error) {
	db, err := c.GetDatabase(ctx, id)
	if err != nil {
		return nil, err
	}

	return &DatabaseInfo{
		ID:             string(db.ID),
		Title:          extractRichTextPlain(db.Title),
		Icon:           extractDatabaseIcon(db),
		LastEditedTime: db.LastEditedTime,
	}, nil
}

// GetBlockChildren retrieves all child blocks of a block with pagination.
func (c *Client) GetBlockChildren(ctx context.Context, blockID string) ([]notionapi.Block, error) {
	var allBlocks []notionapi.Block
	var cursor notionapi.Cursor

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		c.logger.Debug("fetching block children", "block_id", blockID, "cursor", cursor)
		pagination := &notionapi.Pagination{
			StartCursor: cursor,
			PageSize:    100,
		}

		resp, err := c.api.Block.GetChildren(ctx, notionapi.BlockID(blockID), pagination)
		if err != nil {
			return nil, c.handleError(err)
		}
		c.markSuccess()

		allBlocks = append(allBlocks, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	return allBlocks, nil
}

// QueryDatabase retrieves pages from a database with pagination.
// filter and sorts may be nil for an unconstrained query.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, filter notionapi.Filter, sorts []notionapi.SortObject) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		c.logger.Debug("querying database", "database_id", databaseID, "cursor", cursor)
		req := &notionapi.DatabaseQueryRequest{
			Filter:      filter,
			Sorts:       sorts,
			StartCursor: cursor,
			PageSize:    100,
		}

		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, c.handleError(err)
		}
		c.markSuccess()

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = notionapi.Cursor(resp.NextCursor)
	}

	return allPages, nil
}

// GetCurrentUser retrieves the current user (bot) information.
// Useful for validating the token.
func (c *Client) GetCurrentUser(ctx context.Context) (*notionapi.User, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.logger.Debug("fetching current user")
	user, err := c.api.User.Me(ctx)
	if err != nil {
		return nil, c.handleError(err)
	}
	c.markSuccess()
	return user, nil
}

// handleError processes API errors and handles rate limiting.
func (c *Client) handleError(err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusTooManyRequests {
			// The notionapi library doesn't expose the Retry-After header,
			// so we use the default which will be adaptively increased.
			retryDuration := ParseRetryAfter("")
			c.limiter.SetRetryAfter(retryDuration)
			c.logger.Warn("rate limited by Notion API", "retry_after", retryDuration)
		}
	}
	return err
}

// markSuccess runs after every successful request so the limiter can wind
// down its 429 backoff once throttling stops.
func (c *Client) markSuccess() {
	c.limiter.ResetThrottleState()
}

// StatusCode returns the upstream HTTP status carried by a Notion API error,
// or fallback when err carries no status. Used at the HTTP boundary to
// propagate upstream status codes.
func StatusCode(err error, fallback int) int {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return apiErr.Status
	}
	return fallback
}

// IsNotFound reports whether the error indicates a resource that does not
// exist or is not shared with the integration.
func IsNotFound(err error) bool {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound || apiErr.Code == "object_not_found"
	}
	return false
}

// extractRichTextPlain extracts plain text from a rich text array.
func extractRichTextPlain(richText []notionapi.RichText) string {
	var result string
	for _, rt := range richText {
		result += rt.PlainText
	}
	return result
}

// extractDatabaseIcon extracts the emoji icon from a database's icon property.
// Returns empty string if no emoji icon is set.
func extractDatabaseIcon(db *notionapi.Database) string {
	if db == nil || db.Icon == nil {
		return ""
	}
	if db.Icon.Emoji != nil {
		return string(*db.Icon.Emoji)
	}
	return ""
}
