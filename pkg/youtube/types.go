package youtube

// Thumbnail is one rendition of a video or playlist thumbnail.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Thumbnails groups the renditions the API commonly returns.
type Thumbnails struct {
	Default *Thumbnail `json:"default,omitempty"`
	Medium  *Thumbnail `json:"medium,omitempty"`
	High    *Thumbnail `json:"high,omitempty"`
}

// ResourceID identifies the resource a playlist item points at.
type ResourceID struct {
	VideoID string `json:"videoId"`
}

// Snippet carries the display metadata of a playlist item or video.
type Snippet struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ChannelID   string      `json:"channelId"`
	PublishedAt string      `json:"publishedAt"`
	ResourceID  *ResourceID `json:"resourceId,omitempty"`
	Thumbnails  *Thumbnails `json:"thumbnails,omitempty"`
}

// PlaylistItem is one raw entry of a playlist-members listing.
//
// Fields are pointers because upstream responses are not guaranteed to be
// well formed; absence at any level is tolerated and handled by VideoIDs.
type PlaylistItem struct {
	ID      string   `json:"id"`
	Snippet *Snippet `json:"snippet,omitempty"`
}

// Playlist is one entry of the caller's playlist listing.
type Playlist struct {
	ID             string   `json:"id"`
	Snippet        *Snippet `json:"snippet,omitempty"`
	ContentDetails *struct {
		ItemCount int `json:"itemCount"`
	} `json:"contentDetails,omitempty"`
}

// Video is one entry of a videos listing.
type Video struct {
	ID      string   `json:"id"`
	Snippet *Snippet `json:"snippet,omitempty"`
}

// VideoIDs extracts the valid video ids from a raw playlist-members
// listing, in order. An item contributes the nested
// snippet.resourceId.videoId when present, else its top-level id. Null
// items and items with no id at any level are silently excluded.
func VideoIDs(items []*PlaylistItem) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		id := it.ID
		if it.Snippet != nil && it.Snippet.ResourceID != nil && it.Snippet.ResourceID.VideoID != "" {
			id = it.Snippet.ResourceID.VideoID
		}
		if id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
