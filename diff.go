package osmapi

import (
	"bytes"
	"context"
	"encoding/xml"
	"strconv"

	"github.com/pkg/errors"

	osm "github.com/omniscale/go-osm"
)

// A DiffResult maps every uploaded element to its server assigned ID and
// version, keyed by the ID the element was submitted with. For creates the
// submitted ID is the caller's placeholder, commonly a negative number.
type DiffResult struct {
	Nodes     map[int64]ElementVersion
	Ways      map[int64]ElementVersion
	Relations map[int64]ElementVersion
}

// An ElementVersion is the server's ID and version assignment for one
// uploaded element.
type ElementVersion struct {
	ID      int64
	Version int32
}

// Deleted reports whether the element was removed. Deleted elements get no
// new ID or version.
func (v ElementVersion) Deleted() bool {
	return v.ID == 0 && v.Version == 0
}

// Upload submits changes as one atomic diff upload against an open
// changeset. The server applies the whole payload or rejects it entirely;
// rejections (stale version, unknown element, closed changeset) surface as
// APIError, conflicts via IsConflict.
//
// The changeset stamp of every element is overwritten with changesetID
// before serialization, regardless of its value on input. Elements of
// modify and delete changes must carry their last known version; stale
// versions are rejected by the server and must be re-fetched, not blindly
// resubmitted.
//
// The payload lists all create changes first, then modify, then delete,
// each group in the order given.
func (c *Client) Upload(ctx context.Context, changesetID int64, changes []osm.Diff) (*DiffResult, error) {
	file := osmChangeFile{
		Version:   "0.6",
		Generator: "go-osmapi/" + Version,
	}
	// Validate everything up front; a rejected upload must not leave any
	// of the caller's elements stamped with the new changeset.
	for i := range changes {
		if err := validateChange(i, &changes[i]); err != nil {
			return nil, err
		}
	}
	for i := range changes {
		change := &changes[i]
		stampChange(change, changesetID)
		block := changeBlock{Element: wireElement(change)}
		switch {
		case change.Create:
			file.Create = append(file.Create, block)
		case change.Modify:
			file.Modify = append(file.Modify, block)
		case change.Delete:
			file.Delete = append(file.Delete, block)
		}
	}
	body, err := xml.Marshal(&file)
	if err != nil {
		return nil, errors.Wrap(err, "encoding diff upload")
	}
	path := "/changeset/" + strconv.FormatInt(changesetID, 10) + "/upload"
	buf, err := c.request(ctx, "POST", path, nil, bytes.NewReader(body), true)
	if err != nil {
		return nil, err
	}
	result := &diffResultFile{}
	if err := xml.Unmarshal(buf, result); err != nil {
		return nil, errors.Wrapf(err, "decoding diff result from %s%s", c.baseURL, path)
	}
	return &DiffResult{
		Nodes:     resultMap(result.Nodes),
		Ways:      resultMap(result.Ways),
		Relations: resultMap(result.Relations),
	}, nil
}

func validateChange(i int, change *osm.Diff) error {
	actions := 0
	for _, set := range []bool{change.Create, change.Modify, change.Delete} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		return preconditionf("change %d must set exactly one of create, modify, delete", i)
	}
	elements := 0
	for _, set := range []bool{change.Node != nil, change.Way != nil, change.Rel != nil} {
		if set {
			elements++
		}
	}
	if elements != 1 {
		return preconditionf("change %d must reference exactly one element", i)
	}
	if change.Modify || change.Delete {
		if meta := changeMetadata(change); meta == nil || meta.Version < 1 {
			return preconditionf("change %d modifies or deletes an element without version", i)
		}
	}
	return nil
}

func changeMetadata(change *osm.Diff) *osm.Metadata {
	switch {
	case change.Node != nil:
		return change.Node.Metadata
	case change.Way != nil:
		return change.Way.Metadata
	default:
		return change.Rel.Metadata
	}
}

// stampChange forces the changeset stamp of the element. The server rejects
// uploads whose elements name a changeset other than the one posted to.
func stampChange(change *osm.Diff, changesetID int64) {
	var elem *osm.Element
	switch {
	case change.Node != nil:
		elem = &change.Node.Element
	case change.Way != nil:
		elem = &change.Way.Element
	default:
		elem = &change.Rel.Element
	}
	if elem.Metadata == nil {
		elem.Metadata = &osm.Metadata{}
	}
	elem.Metadata.Changeset = changesetID
}

func wireElement(change *osm.Diff) interface{} {
	switch {
	case change.Node != nil:
		return newNodeElem(change.Node)
	case change.Way != nil:
		return newWayElem(change.Way)
	default:
		return newRelationElem(change.Rel)
	}
}

func resultMap(elems []diffResultElem) map[int64]ElementVersion {
	if len(elems) == 0 {
		return nil
	}
	m := make(map[int64]ElementVersion, len(elems))
	for _, e := range elems {
		m[e.OldID] = ElementVersion{ID: e.NewID, Version: e.NewVersion}
	}
	return m
}
