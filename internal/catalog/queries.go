package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultPageSize = 60
	maxPageSize     = 500
)

// QueryVideos returns one page of catalogued videos for the given filter,
// sort and page. Ties are always broken by id so pagination stays stable
// across requests, even while a scan is inserting new rows.
func (s *Store) QueryVideos(ctx context.Context, q VideoQuery) (*VideoPage, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("query_videos", start, err) }()

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	where, joins, args := buildVideoFilter(q)

	countQuery := `SELECT COUNT(*) FROM videos v` + joins
	if where != "" {
		countQuery += ` WHERE ` + where
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var totalItems int
	if err = s.db.QueryRowContext(ctx, countQuery, args...).Scan(&totalItems); err != nil {
		logger.Error("video count query failed: %v", err)
		return nil, fmt.Errorf("count query failed: %w", err)
	}

	totalPages := (totalItems + q.PageSize - 1) / q.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	offset := (q.Page - 1) * q.PageSize

	selectQuery := `SELECT ` + prefixColumns(videoColumns, "v.") + ` FROM videos v` + joins
	if where != "" {
		selectQuery += ` WHERE ` + where
	}
	selectQuery += ` ORDER BY ` + orderClause(q) + ` LIMIT ? OFFSET ?`
	args = append(args, q.PageSize, offset)

	rows, queryErr := s.db.QueryContext(ctx, selectQuery, args...)
	if queryErr != nil {
		err = queryErr
		logger.Error("video select query failed: %v", err)
		return nil, fmt.Errorf("select query failed: %w", err)
	}
	defer rows.Close()

	items := []VideoRecord{}
	for rows.Next() {
		v, scanErr := scanVideo(rows)
		if scanErr != nil {
			err = scanErr
			return nil, fmt.Errorf("scan failed: %w", scanErr)
		}
		items = append(items, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	logger.Debug("QueryVideos: %d/%d items in %v", len(items), totalItems, time.Since(start))

	return &VideoPage{
		Items:      items,
		TotalItems: totalItems,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// buildVideoFilter translates a VideoQuery into WHERE conditions, JOIN
// clauses and bound arguments.
func buildVideoFilter(q VideoQuery) (where string, joins string, args []interface{}) {
	var conds []string

	if q.HistoryOnly {
		joins += ` INNER JOIN history h ON h.video_id = v.id`
	}
	if q.PlaylistID != "" {
		joins += ` INNER JOIN playlist_videos pv ON pv.video_id = v.id`
		conds = append(conds, `pv.playlist_id = ?`)
		args = append(args, q.PlaylistID)
	}
	if q.Folder != "" {
		conds = append(conds, folderScopeClause("v.folder_path"))
		args = append(args, q.Folder, q.Folder)
	}
	if q.Search != "" {
		pattern := "%" + strings.ToLower(q.Search) + "%"
		conds = append(conds, `(LOWER(v.display_name) LIKE ? OR LOWER(v.filename) LIKE ? OR LOWER(v.tags) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}
	if q.FavoritesOnly {
		conds = append(conds, `v.is_favorite = 1`)
	}

	return strings.Join(conds, " AND "), joins, args
}

// orderClause builds the ORDER BY clause. The history filter forces
// most-recently-watched-first regardless of the requested sort; a playlist
// filter without an explicit sort preserves playlist order.
func orderClause(q VideoQuery) string {
	if q.HistoryOnly {
		return `h.watched_at DESC, v.id ASC`
	}
	if q.PlaylistID != "" && q.Sort == "" {
		return `pv.position ASC, v.id ASC`
	}

	column := "v.created_at"
	switch q.Sort {
	case SortByName:
		column = "v.display_name COLLATE NOCASE"
	case SortByViews:
		column = "v.view_count"
	case SortByDuration:
		column = "v.duration_seconds"
	case SortByCreated:
		column = "v.created_at"
	}

	dir := "ASC"
	if q.Order == SortDesc {
		dir = "DESC"
	}

	return fmt.Sprintf("%s %s, v.id ASC", column, dir)
}

// folderScopeClause builds the SQL condition matching rows in a folder
// or any of its descendants, the SQL rendition of folders.InScope. It
// binds the folder value twice: exact-or-prefixed-with-separator, so
// "Action" does not match "ActionFigures".
func folderScopeClause(column string) string {
	return fmt.Sprintf(`(%s = ? OR %s LIKE ? || '/%%')`, column, column)
}

// prefixColumns qualifies each column in a comma-separated list with the
// given table alias.
func prefixColumns(columns, prefix string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// DistinctFolders returns every distinct folder path in the catalog,
// sorted. The folder hierarchy resolver derives the navigation tree from
// this set.
func (s *Store) DistinctFolders(ctx context.Context) ([]string, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("distinct_folders", start, err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, queryErr := s.db.QueryContext(ctx,
		`SELECT DISTINCT folder_path FROM videos ORDER BY folder_path`)
	if queryErr != nil {
		err = queryErr
		return nil, queryErr
	}
	defer rows.Close()

	var folders []string
	for rows.Next() {
		var f string
		if err = rows.Scan(&f); err != nil {
			return nil, err
		}
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

// FolderThumbnail returns a representative thumbnail URL for a folder
// scope: any contained video that has one. A folder without one is not an
// error; the empty string is returned.
func (s *Store) FolderThumbnail(ctx context.Context, folder string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM videos
		WHERE `+folderScopeClause("folder_path")+`
		  AND (custom_thumb IS NOT NULL OR auto_thumb IS NOT NULL)
		ORDER BY id LIMIT 1
	`, folder, folder).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return "/api/thumbnail/" + id, nil
}
