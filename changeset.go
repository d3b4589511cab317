package osmapi

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	osm "github.com/omniscale/go-osm"
)

// Changeset lifecycle. A changeset is opened explicitly, accepts tag updates
// and diff uploads while open, and ends when closed explicitly or by server
// timeout. The client tracks none of this; each call is a single request and
// operations against a closed changeset fail with a conflict APIError.

// CreateChangeset opens a new changeset and returns its ID. The tags must
// contain non-empty "comment" and "created_by" entries; missing tags fail
// before any request is made.
func (c *Client) CreateChangeset(ctx context.Context, tags osm.Tags) (int64, error) {
	for _, required := range []string{"comment", "created_by"} {
		if tags[required] == "" {
			return 0, preconditionf("changeset tags require a non-empty %q", required)
		}
	}
	body, err := marshalChangeset(tags)
	if err != nil {
		return 0, err
	}
	buf, err := c.request(ctx, "PUT", "/changeset/create", nil, bytes.NewReader(body), true)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(buf)), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing changeset id %q", strings.TrimSpace(string(buf)))
	}
	return id, nil
}

// UpdateChangeset replaces the tags of an open changeset and returns the
// refreshed changeset.
func (c *Client) UpdateChangeset(ctx context.Context, id int64, tags osm.Tags) (*osm.Changeset, error) {
	body, err := marshalChangeset(tags)
	if err != nil {
		return nil, err
	}
	path := "/changeset/" + strconv.FormatInt(id, 10)
	buf, err := c.request(ctx, "PUT", path, nil, bytes.NewReader(body), true)
	if err != nil {
		return nil, err
	}
	return decodeChangeset(buf, c.baseURL+path)
}

// CloseChangeset closes an open changeset. Closing an already closed
// changeset is a server side error and returns a conflict APIError.
func (c *Client) CloseChangeset(ctx context.Context, id int64) error {
	path := "/changeset/" + strconv.FormatInt(id, 10) + "/close"
	_, err := c.request(ctx, "PUT", path, nil, nil, true)
	return err
}

// Changeset returns a single changeset, open or closed. With discussion the
// response includes all comments.
func (c *Client) Changeset(ctx context.Context, id int64, discussion bool) (*osm.Changeset, error) {
	path := "/changeset/" + strconv.FormatInt(id, 10)
	var query url.Values
	if discussion {
		query = url.Values{"include_discussion": {"true"}}
	}
	f, err := c.getOSM(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if len(f.Changesets) == 0 {
		return nil, errors.Errorf("no changeset in response from %s%s", c.baseURL, path)
	}
	cs := f.Changesets[0].osm()
	return &cs, nil
}

// ChangesetQuery filters a changeset search. All filters are optional, but
// UserID and UserName are mutually exclusive, as are Open and Closed.
type ChangesetQuery struct {
	// BBox limits the result to changesets overlapping the box.
	BBox *BBox
	// UserID limits the result to changesets of one user.
	UserID int32
	// UserName is the display name alternative to UserID.
	UserName string
	// Open limits the result to open changesets.
	Open bool
	// Closed includes closed changesets only.
	Closed bool
	// ClosedAfter limits the result to changesets closed after this time
	// (or still open).
	ClosedAfter time.Time
	// CreatedBefore further limits to changesets created before this time.
	// Only valid together with ClosedAfter.
	CreatedBefore time.Time
	// IDs queries specific changesets.
	IDs []int64
}

func (q *ChangesetQuery) values() (url.Values, error) {
	if q.UserID != 0 && q.UserName != "" {
		return nil, preconditionf("user id and user name filters are mutually exclusive")
	}
	if q.Open && q.Closed {
		return nil, preconditionf("open and closed filters are mutually exclusive")
	}
	if !q.CreatedBefore.IsZero() && q.ClosedAfter.IsZero() {
		return nil, preconditionf("created-before filter requires closed-after")
	}
	v := url.Values{}
	if q.BBox != nil {
		v.Set("bbox", q.BBox.String())
	}
	if q.UserID != 0 {
		v.Set("user", strconv.FormatInt(int64(q.UserID), 10))
	}
	if q.UserName != "" {
		v.Set("display_name", q.UserName)
	}
	if q.Open {
		v.Set("open", "true")
	}
	if q.Closed {
		v.Set("closed", "true")
	}
	if !q.ClosedAfter.IsZero() {
		t := q.ClosedAfter.UTC().Format(time.RFC3339)
		if !q.CreatedBefore.IsZero() {
			t += "," + q.CreatedBefore.UTC().Format(time.RFC3339)
		}
		v.Set("time", t)
	}
	if len(q.IDs) > 0 {
		ids := make([]string, 0, len(q.IDs))
		for _, id := range q.IDs {
			ids = append(ids, strconv.FormatInt(id, 10))
		}
		v.Set("changesets", strings.Join(ids, ","))
	}
	return v, nil
}

// Changesets searches changesets by the given filters. The filters are
// validated as a unit before any request is made.
func (c *Client) Changesets(ctx context.Context, query ChangesetQuery) ([]osm.Changeset, error) {
	v, err := query.values()
	if err != nil {
		return nil, err
	}
	f, err := c.getOSM(ctx, "/changesets", v)
	if err != nil {
		return nil, err
	}
	changesets := make([]osm.Changeset, 0, len(f.Changesets))
	for i := range f.Changesets {
		changesets = append(changesets, f.Changesets[i].osm())
	}
	return changesets, nil
}

func marshalChangeset(tags osm.Tags) ([]byte, error) {
	f := osmFile{
		Generator:  "go-osmapi/" + Version,
		Changesets: []changesetElem{{Tags: tagElems(tags)}},
	}
	buf, err := xml.Marshal(&f)
	if err != nil {
		return nil, errors.Wrap(err, "encoding changeset")
	}
	return buf, nil
}

func decodeChangeset(buf []byte, url string) (*osm.Changeset, error) {
	f := &osmFile{}
	if err := xml.Unmarshal(buf, f); err != nil {
		return nil, errors.Wrapf(err, "decoding changeset response from %s", url)
	}
	if len(f.Changesets) == 0 {
		return nil, errors.Errorf("no changeset in response from %s", url)
	}
	cs := f.Changesets[0].osm()
	return &cs, nil
}
