package httpsource

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/IvanBrykalov/mediawindow/media"
)

// envelope is a page response. Items may be under "items" or "results";
// the end of the list is taken from has_more, then pagination.has_next,
// then page/total_pages, and finally from a short page.
type envelope struct {
	Items      []wireItem `json:"items"`
	Results    []wireItem `json:"results"`
	HasMore    *bool      `json:"has_more"`
	Page       int        `json:"page"`
	TotalPages int        `json:"total_pages"`
	Pagination *struct {
		HasNext *bool `json:"has_next"`
	} `json:"pagination"`
}

type wireItem struct {
	MediaType  string `json:"media_type"`
	ID         flexID `json:"id"`
	Title      string `json:"title"`
	Name       string `json:"name"`
	AssetURL   string `json:"asset_url"`
	PosterPath string `json:"poster_path"`
}

// flexID accepts both numeric and string ids.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

func (e *envelope) items() []wireItem {
	if len(e.Items) > 0 {
		return e.Items
	}
	return e.Results
}

func (e *envelope) hasMore(pageSize int) bool {
	switch {
	case e.HasMore != nil:
		return *e.HasMore
	case e.Pagination != nil && e.Pagination.HasNext != nil:
		return *e.Pagination.HasNext
	case e.TotalPages > 0:
		return e.Page < e.TotalPages
	default:
		return len(e.items()) >= pageSize
	}
}

func (w wireItem) toItem(defaultType, assetBase string) media.Item {
	it := media.Item{
		MediaType: w.MediaType,
		ID:        string(w.ID),
		Title:     w.Title,
		AssetURL:  w.AssetURL,
	}
	if it.MediaType == "" {
		it.MediaType = defaultType
	}
	if it.Title == "" {
		it.Title = w.Name
	}
	if it.AssetURL == "" && w.PosterPath != "" && assetBase != "" {
		it.AssetURL = assetBase + w.PosterPath
	}
	return it
}
