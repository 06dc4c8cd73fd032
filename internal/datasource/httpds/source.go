package httpds

import (
	"context"
	"io"

	"hretl/internal/datasource"
)

// Source is a datasource.Source backed by a GET of one URL.
type Source struct {
	c   *Client
	url string
}

// NewSource returns a Source fetching url through c.
func NewSource(c *Client, url string) *Source { return &Source{c: c, url: url} }

// Open fetches the document and returns its body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := s.c.Get(ctx, s.url)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *Source) String() string { return "http " + s.url }

// JSON returns a record source decoding a JSON array of objects from url.
func JSON(c *Client, url string) datasource.RecordSource {
	s := NewSource(c, url)
	return datasource.JSON(s, s.String())
}
