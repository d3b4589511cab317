package osmapi

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// User preferences, a flat key/value store per account. All calls require
// an authorized client.

type preferencesFile struct {
	XMLName     xml.Name  `xml:"osm"`
	Preferences []tagElem `xml:"preferences>preference"`
}

// Preferences returns all preferences of the authorized user.
func (c *Client) Preferences(ctx context.Context) (map[string]string, error) {
	buf, err := c.request(ctx, "GET", "/user/preferences", nil, nil, true)
	if err != nil {
		return nil, err
	}
	f := &preferencesFile{}
	if err := xml.Unmarshal(buf, f); err != nil {
		return nil, errors.Wrapf(err, "decoding preferences from %s/user/preferences", c.baseURL)
	}
	prefs := make(map[string]string, len(f.Preferences))
	for _, p := range f.Preferences {
		prefs[p.Key] = p.Value
	}
	return prefs, nil
}

// SetPreferences replaces all preferences of the authorized user.
func (c *Client) SetPreferences(ctx context.Context, prefs map[string]string) error {
	f := preferencesFile{}
	for k, v := range prefs {
		f.Preferences = append(f.Preferences, tagElem{Key: k, Value: v})
	}
	sortTagElems(f.Preferences)
	body, err := xml.Marshal(&f)
	if err != nil {
		return errors.Wrap(err, "encoding preferences")
	}
	_, err = c.request(ctx, "PUT", "/user/preferences", nil, bytes.NewReader(body), true)
	return err
}

// SetPreference sets a single preference.
func (c *Client) SetPreference(ctx context.Context, key, value string) error {
	_, err := c.request(ctx, "PUT", "/user/preferences/"+url.PathEscape(key), nil,
		strings.NewReader(value), true)
	return err
}

// DeletePreference removes a single preference.
func (c *Client) DeletePreference(ctx context.Context, key string) error {
	_, err := c.request(ctx, "DELETE", "/user/preferences/"+url.PathEscape(key), nil, nil, true)
	return err
}
