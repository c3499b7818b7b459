package session

// Thumbnail is a single preview frame captured during a block, tagged with its
// offset from the block start.
type Thumbnail struct {
	// OffsetSeconds is the capture time relative to the block start
	OffsetSeconds float64 `json:"offset_seconds"`

	// Image is the encoded frame (JPEG)
	Image []byte `json:"-"`
}

// Session is a finalized recording block with its metadata.
// The media payload lives in a separate record keyed by BlobKey; the two are
// created and deleted together.
type Session struct {
	// ID is a ULID assigned exactly once, at persist time
	ID string `json:"id"`

	// CreatedAt is the Unix timestamp of the block start
	CreatedAt int64 `json:"created_at"`

	// DurationSeconds is the measured block duration reported by the capture layer
	DurationSeconds float64 `json:"duration_seconds"`

	// BlobKey references the persisted media payload; always equal to ID
	BlobKey string `json:"blob_key"`

	// Saved marks a session as retained indefinitely (excluded from pruning)
	Saved bool `json:"saved"`

	// Name is set only when the session is saved (nullable)
	Name *string `json:"name,omitempty"`

	// TrimIn / TrimOut are optional trim points in seconds, saved clips only
	TrimIn  *float64 `json:"trim_in,omitempty"`
	TrimOut *float64 `json:"trim_out,omitempty"`

	// Thumbnails are the preview frames in capture order
	Thumbnails []Thumbnail `json:"thumbnails,omitempty"`
}

// Summary is the listing view of a session: everything except thumbnail
// images and the payload.
type Summary struct {
	ID              string   `json:"id"`
	CreatedAt       int64    `json:"created_at"`
	DurationSeconds float64  `json:"duration_seconds"`
	Saved           bool     `json:"saved"`
	Name            *string  `json:"name,omitempty"`
	TrimIn          *float64 `json:"trim_in,omitempty"`
	TrimOut         *float64 `json:"trim_out,omitempty"`
	ThumbnailCount  int      `json:"thumbnail_count"`
}
