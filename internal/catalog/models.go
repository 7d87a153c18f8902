package catalog

import "time"

// Provenance classifies who owns a record's descriptive metadata. It
// governs whether the reconciler may overwrite fields on rescan and
// whether edits are written back to the sidecar file.
type Provenance string

const (
	// ProvenanceNone means no sidecar was ever found and no edits were made.
	ProvenanceNone Provenance = "none"
	// ProvenanceExternal means a sidecar existed before this app touched the
	// record. The external file is never rewritten.
	ProvenanceExternal Provenance = "external"
	// ProvenanceApp means the sidecar (if any) was written by this app and
	// may be rewritten on edit.
	ProvenanceApp Provenance = "app"
)

// RootFolder is the sentinel folder name for videos that sit directly
// under the media root.
const RootFolder = "Home"

// WatchLaterName is the reserved playlist name that is lazily created and
// reused by the watch-later toggle path.
const WatchLaterName = "Watch Later"

// SubtitleRef points at a subtitle sidecar file discovered next to a video.
type SubtitleRef struct {
	Path     string `json:"path"`
	Language string `json:"language,omitempty"`
	Label    string `json:"label"`
}

// VideoRecord is one catalogued media file. The ID is derived from the
// relative path and is stable across rescans.
type VideoRecord struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"displayName"`
	Filename     string    `json:"filename"`
	FolderPath   string    `json:"folderPath"`
	RelativePath string    `json:"relativePath"`
	CreatedAt    time.Time `json:"createdAt"`
	LastSeenAt   time.Time `json:"-"`

	ViewCount       int64   `json:"viewCount"`
	IsFavorite      bool    `json:"isFavorite"`
	PositionSeconds float64 `json:"positionSeconds,omitempty"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`

	CustomThumb  string `json:"-"`
	AutoThumb    string `json:"-"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	Title       string `json:"title,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Description string `json:"description,omitempty"`
	Channel     string `json:"channel,omitempty"`
	ExternalID  string `json:"externalId,omitempty"`

	Provenance Provenance `json:"provenance"`
	UserEdited bool       `json:"userEdited"`

	Subtitles []SubtitleRef `json:"subtitles,omitempty"`
}

// ThumbRef returns the best available thumbnail reference: the custom
// capture if set, otherwise the auto-generated one, otherwise empty.
func (v *VideoRecord) ThumbRef() string {
	if v.CustomThumb != "" {
		return v.CustomThumb
	}
	return v.AutoThumb
}

// EditableFields carries a metadata edit request. Nil fields are left
// untouched so a partial edit never clobbers unrelated fields.
type EditableFields struct {
	Title       *string `json:"title,omitempty"`
	ReleaseDate *string `json:"releaseDate,omitempty"`
	Tags        *string `json:"tags,omitempty"`
	Description *string `json:"description,omitempty"`
	Channel     *string `json:"channel,omitempty"`
	ExternalID  *string `json:"externalId,omitempty"`
}

// Empty reports whether the edit request carries no fields at all.
func (e EditableFields) Empty() bool {
	return e.Title == nil && e.ReleaseDate == nil && e.Tags == nil &&
		e.Description == nil && e.Channel == nil && e.ExternalID == nil
}

// Playlist is a user-defined ordered collection of video ids.
type Playlist struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	VideoIDs  []string  `json:"videoIds"`
}

// HistoryEntry records when a video was last watched. Re-watching moves
// the entry to the most recent position rather than duplicating it.
type HistoryEntry struct {
	VideoID   string    `json:"videoId"`
	WatchedAt time.Time `json:"watchedAt"`
}

// SortField specifies which field to sort query results by.
type SortField string

// SortOrder specifies the direction of sorting.
type SortOrder string

const (
	// SortByCreated sorts by catalog creation time.
	SortByCreated SortField = "created"
	// SortByName sorts by display name.
	SortByName SortField = "name"
	// SortByViews sorts by view count.
	SortByViews SortField = "views"
	// SortByDuration sorts by probed duration.
	SortByDuration SortField = "duration"

	// SortAsc sorts in ascending order.
	SortAsc SortOrder = "asc"
	// SortDesc sorts in descending order.
	SortDesc SortOrder = "desc"
)

// VideoQuery describes one page request against the catalog.
type VideoQuery struct {
	Folder        string
	Search        string
	FavoritesOnly bool
	HistoryOnly   bool
	PlaylistID    string
	Sort          SortField
	Order         SortOrder
	Page          int
	PageSize      int
}

// VideoPage is a stable page of query results plus pagination metadata.
type VideoPage struct {
	Items      []VideoRecord `json:"items"`
	TotalItems int           `json:"totalItems"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	TotalPages int           `json:"totalPages"`
}

// FolderEntry is the normalized folder shape returned to navigation:
// always a name, optionally a representative thumbnail URL.
type FolderEntry struct {
	Name         string `json:"name"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}
