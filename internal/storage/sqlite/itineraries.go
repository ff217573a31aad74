package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/triplan/internal/models"
	"github.com/mmynk/triplan/internal/storage"
)

const itineraryColumns = `id, project_id, title, date, location, type_of_activity, notes, media_urls,
	added_by_id, added_by_email, status, version, created_at`

// CreateItinerary persists a new itinerary item with its initial votes.
func (s *SQLiteStore) CreateItinerary(ctx context.Context, item *models.ItineraryItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertItinerary(ctx, tx, item); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertItinerary(ctx context.Context, tx *sql.Tx, item *models.ItineraryItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = time.Now().Unix()
	}
	if item.Status == "" {
		item.Status = models.StatusVoting
	}

	media, err := encodeMedia(item.MediaURLs)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO itineraries ("+itineraryColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, item.ProjectID, item.Title, formatTime(item.Date), item.Location, item.TypeOfActivity,
		item.Notes, media, item.AddedBy.ID, item.AddedBy.Email, string(item.Status), item.Version, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert itinerary: %w", err)
	}
	return insertVotes(ctx, tx, item.ID, item.Votes)
}

// GetItinerary retrieves an itinerary item by ID, including its votes.
func (s *SQLiteStore) GetItinerary(ctx context.Context, itemID string) (*models.ItineraryItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itineraryColumns+" FROM itineraries WHERE id = ?",
		itemID,
	)
	item, err := scanItinerary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("itinerary", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}

	votes, err := s.votes(ctx, []string{item.ID})
	if err != nil {
		return nil, err
	}
	item.Votes = votes[item.ID]
	return &item, nil
}

// ListItineraries returns items matching filter in insertion order.
func (s *SQLiteStore) ListItineraries(ctx context.Context, filter storage.ItineraryFilter) ([]models.ItineraryItem, error) {
	query := "SELECT " + itineraryColumns + " FROM itineraries WHERE 1 = 1"
	var args []interface{}
	if filter.ProjectID != "" {
		query += " AND project_id = ?"
		args = append(args, filter.ProjectID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at, rowid"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	items := []models.ItineraryItem{}
	var ids []string
	for rows.Next() {
		item, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		items = append(items, item)
		ids = append(ids, item.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate itineraries: %w", err)
	}

	votes, err := s.votes(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Votes = votes[items[i].ID]
	}
	return items, nil
}

// UpdateItineraryVotes replaces the vote list if the item is still at expectedVersion.
func (s *SQLiteStore) UpdateItineraryVotes(ctx context.Context, itemID string, votes []models.UserRef, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE itineraries SET version = version + 1 WHERE id = ? AND version = ?",
		itemID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update itinerary version: %w", err)
	}
	if err := casResult(ctx, tx, res, "itineraries", "itinerary", itemID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM itinerary_votes WHERE item_id = ?", itemID); err != nil {
		return fmt.Errorf("failed to clear votes: %w", err)
	}
	if err := insertVotes(ctx, tx, itemID, votes); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateItineraryStatus sets the status if the item is still at expectedVersion.
func (s *SQLiteStore) UpdateItineraryStatus(ctx context.Context, itemID string, status models.ItineraryStatus, expectedVersion int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE itineraries SET status = ?, version = version + 1 WHERE id = ? AND version = ?",
		string(status), itemID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update itinerary status: %w", err)
	}
	if err := casResult(ctx, tx, res, "itineraries", "itinerary", itemID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteItinerary removes an item and its votes.
func (s *SQLiteStore) DeleteItinerary(ctx context.Context, itemID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM itineraries WHERE id = ?", itemID)
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound("itinerary", itemID)
	}
	return nil
}

func insertVotes(ctx context.Context, tx *sql.Tx, itemID string, votes []models.UserRef) error {
	for i, v := range votes {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO itinerary_votes (item_id, user_id, email, position) VALUES (?, ?, ?, ?)",
			itemID, v.ID, v.Email, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert vote: %w", err)
		}
	}
	return nil
}

// votes loads the vote lists of the given items keyed by item ID.
func (s *SQLiteStore) votes(ctx context.Context, itemIDs []string) (map[string][]models.UserRef, error) {
	out := make(map[string][]models.UserRef, len(itemIDs))
	if len(itemIDs) == 0 {
		return out, nil
	}

	args := make([]interface{}, len(itemIDs))
	for i, id := range itemIDs {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT item_id, user_id, email FROM itinerary_votes
		 WHERE item_id IN (`+placeholders(len(itemIDs))+`)
		 ORDER BY item_id, position`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID string
		var ref models.UserRef
		if err := rows.Scan(&itemID, &ref.ID, &ref.Email); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		out[itemID] = append(out[itemID], ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return out, nil
}

func scanItinerary(row rowScanner) (models.ItineraryItem, error) {
	var item models.ItineraryItem
	var date, media, status string
	if err := row.Scan(&item.ID, &item.ProjectID, &item.Title, &date, &item.Location,
		&item.TypeOfActivity, &item.Notes, &media, &item.AddedBy.ID, &item.AddedBy.Email,
		&status, &item.Version, &item.CreatedAt); err != nil {
		return item, err
	}
	var err error
	if item.Date, err = parseTime(date); err != nil {
		return item, err
	}
	if err := json.Unmarshal([]byte(media), &item.MediaURLs); err != nil {
		return item, fmt.Errorf("invalid stored media urls: %w", err)
	}
	item.Status = models.ItineraryStatus(status)
	return item, nil
}

func encodeMedia(urls []string) (string, error) {
	if urls == nil {
		urls = []string{}
	}
	b, err := json.Marshal(urls)
	if err != nil {
		return "", fmt.Errorf("failed to encode media urls: %w", err)
	}
	return string(b), nil
}
