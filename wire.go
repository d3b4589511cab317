package osmapi

import (
	"encoding/xml"
	"sort"
	"time"

	osm "github.com/omniscale/go-osm"
)

// Wire representation of the XML documents the editing API speaks.
// Conversion to and from go-osm values happens here; nothing outside this
// file touches XML element shapes.

// osmFile is the <osm> document of all read responses and of changeset
// and preference uploads.
type osmFile struct {
	XMLName    xml.Name        `xml:"osm"`
	Generator  string          `xml:"generator,attr,omitempty"`
	Nodes      []nodeElem      `xml:"node"`
	Ways       []wayElem       `xml:"way"`
	Relations  []relationElem  `xml:"relation"`
	Changesets []changesetElem `xml:"changeset"`
}

type tagElem struct {
	Key   string `xml:"k,attr"`
	Value string `xml:"v,attr"`
}

type nodeElem struct {
	XMLName   xml.Name   `xml:"node"`
	ID        int64      `xml:"id,attr"`
	Version   int32      `xml:"version,attr,omitempty"`
	Changeset int64      `xml:"changeset,attr,omitempty"`
	User      string     `xml:"user,attr,omitempty"`
	UserID    int32      `xml:"uid,attr,omitempty"`
	Timestamp *time.Time `xml:"timestamp,attr,omitempty"`
	Lat       float64    `xml:"lat,attr"`
	Lon       float64    `xml:"lon,attr"`
	Tags      []tagElem  `xml:"tag"`
}

type wayElem struct {
	XMLName   xml.Name   `xml:"way"`
	ID        int64      `xml:"id,attr"`
	Version   int32      `xml:"version,attr,omitempty"`
	Changeset int64      `xml:"changeset,attr,omitempty"`
	User      string     `xml:"user,attr,omitempty"`
	UserID    int32      `xml:"uid,attr,omitempty"`
	Timestamp *time.Time `xml:"timestamp,attr,omitempty"`
	Refs      []refElem  `xml:"nd"`
	Tags      []tagElem  `xml:"tag"`
}

type refElem struct {
	Ref int64 `xml:"ref,attr"`
}

type relationElem struct {
	XMLName   xml.Name     `xml:"relation"`
	ID        int64        `xml:"id,attr"`
	Version   int32        `xml:"version,attr,omitempty"`
	Changeset int64        `xml:"changeset,attr,omitempty"`
	User      string       `xml:"user,attr,omitempty"`
	UserID    int32        `xml:"uid,attr,omitempty"`
	Timestamp *time.Time   `xml:"timestamp,attr,omitempty"`
	Members   []memberElem `xml:"member"`
	Tags      []tagElem    `xml:"tag"`
}

type memberElem struct {
	Type string `xml:"type,attr"`
	Ref  int64  `xml:"ref,attr"`
	Role string `xml:"role,attr"`
}

type changesetElem struct {
	XMLName    xml.Name      `xml:"changeset"`
	ID         int64         `xml:"id,attr,omitempty"`
	CreatedAt  *time.Time    `xml:"created_at,attr,omitempty"`
	ClosedAt   *time.Time    `xml:"closed_at,attr,omitempty"`
	Open       bool          `xml:"open,attr,omitempty"`
	User       string        `xml:"user,attr,omitempty"`
	UserID     int32         `xml:"uid,attr,omitempty"`
	NumChanges int32         `xml:"num_changes,attr,omitempty"`
	MinLon     float64       `xml:"min_lon,attr,omitempty"`
	MinLat     float64       `xml:"min_lat,attr,omitempty"`
	MaxLon     float64       `xml:"max_lon,attr,omitempty"`
	MaxLat     float64       `xml:"max_lat,attr,omitempty"`
	Comments   []commentElem `xml:"discussion>comment"`
	Tags       []tagElem     `xml:"tag"`
}

type commentElem struct {
	UserID int32      `xml:"uid,attr"`
	User   string     `xml:"user,attr"`
	Date   *time.Time `xml:"date,attr"`
	Text   string     `xml:"text"`
}

// osmChangeFile is the <osmChange> document of a diff upload. Each entry in
// the section slices renders as its own create/modify/delete block, which
// keeps the caller's submission order intact across element kinds.
type osmChangeFile struct {
	XMLName   xml.Name      `xml:"osmChange"`
	Version   string        `xml:"version,attr"`
	Generator string        `xml:"generator,attr"`
	Create    []changeBlock `xml:"create"`
	Modify    []changeBlock `xml:"modify"`
	Delete    []changeBlock `xml:"delete"`
}

type changeBlock struct {
	Element interface{}
}

// diffResultFile is the <diffResult> response of a diff upload.
type diffResultFile struct {
	XMLName   xml.Name         `xml:"diffResult"`
	Nodes     []diffResultElem `xml:"node"`
	Ways      []diffResultElem `xml:"way"`
	Relations []diffResultElem `xml:"relation"`
}

type diffResultElem struct {
	OldID      int64 `xml:"old_id,attr"`
	NewID      int64 `xml:"new_id,attr"`
	NewVersion int32 `xml:"new_version,attr"`
}

func tagsFromElems(elems []tagElem) osm.Tags {
	if len(elems) == 0 {
		return nil
	}
	tags := make(osm.Tags, len(elems))
	for _, t := range elems {
		tags[t.Key] = t.Value
	}
	return tags
}

// tagElems renders tags in sorted key order for stable serialization.
func tagElems(tags osm.Tags) []tagElem {
	if len(tags) == 0 {
		return nil
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	elems := make([]tagElem, 0, len(keys))
	for _, k := range keys {
		elems = append(elems, tagElem{Key: k, Value: tags[k]})
	}
	return elems
}

func sortTagElems(elems []tagElem) {
	sort.Slice(elems, func(i, j int) bool { return elems[i].Key < elems[j].Key })
}

func metadataFromAttrs(version int32, changeset int64, userID int32, user string, timestamp *time.Time) *osm.Metadata {
	m := &osm.Metadata{
		Version:   version,
		Changeset: changeset,
		UserID:    userID,
		UserName:  user,
	}
	if timestamp != nil {
		m.Timestamp = *timestamp
	}
	return m
}

func (e *nodeElem) osm() osm.Node {
	return osm.Node{
		Element: osm.Element{
			ID:       e.ID,
			Tags:     tagsFromElems(e.Tags),
			Metadata: metadataFromAttrs(e.Version, e.Changeset, e.UserID, e.User, e.Timestamp),
		},
		Lat:  e.Lat,
		Long: e.Lon,
	}
}

func (e *wayElem) osm() osm.Way {
	refs := make([]int64, 0, len(e.Refs))
	for _, r := range e.Refs {
		refs = append(refs, r.Ref)
	}
	return osm.Way{
		Element: osm.Element{
			ID:       e.ID,
			Tags:     tagsFromElems(e.Tags),
			Metadata: metadataFromAttrs(e.Version, e.Changeset, e.UserID, e.User, e.Timestamp),
		},
		Refs: refs,
	}
}

var memberTypeNames = map[osm.MemberType]string{
	osm.NodeMember:     "node",
	osm.WayMember:      "way",
	osm.RelationMember: "relation",
}

var memberTypeValues = map[string]osm.MemberType{
	"node":     osm.NodeMember,
	"way":      osm.WayMember,
	"relation": osm.RelationMember,
}

func (e *relationElem) osm() osm.Relation {
	members := make([]osm.Member, 0, len(e.Members))
	for _, m := range e.Members {
		members = append(members, osm.Member{
			ID:   m.Ref,
			Type: memberTypeValues[m.Type],
			Role: m.Role,
		})
	}
	return osm.Relation{
		Element: osm.Element{
			ID:       e.ID,
			Tags:     tagsFromElems(e.Tags),
			Metadata: metadataFromAttrs(e.Version, e.Changeset, e.UserID, e.User, e.Timestamp),
		},
		Members: members,
	}
}

func (e *changesetElem) osm() osm.Changeset {
	cs := osm.Changeset{
		ID:         e.ID,
		Open:       e.Open,
		UserID:     e.UserID,
		UserName:   e.User,
		NumChanges: e.NumChanges,
		MaxExtent:  [4]float64{e.MinLon, e.MinLat, e.MaxLon, e.MaxLat},
		Tags:       tagsFromElems(e.Tags),
	}
	if e.CreatedAt != nil {
		cs.CreatedAt = *e.CreatedAt
	}
	if e.ClosedAt != nil {
		cs.ClosedAt = *e.ClosedAt
	}
	for _, c := range e.Comments {
		comment := osm.Comment{
			UserID:   c.UserID,
			UserName: c.User,
			Text:     c.Text,
		}
		if c.Date != nil {
			comment.CreatedAt = *c.Date
		}
		cs.Comments = append(cs.Comments, comment)
	}
	return cs
}

// newNodeElem builds the wire form of a node for uploads. Only attributes
// the server evaluates are set; user and timestamp stamps are assigned
// server side.
func newNodeElem(n *osm.Node) nodeElem {
	e := nodeElem{
		ID:   n.ID,
		Lat:  n.Lat,
		Lon:  n.Long,
		Tags: tagElems(n.Tags),
	}
	if n.Metadata != nil {
		e.Version = n.Metadata.Version
		e.Changeset = n.Metadata.Changeset
	}
	return e
}

func newWayElem(w *osm.Way) wayElem {
	refs := make([]refElem, 0, len(w.Refs))
	for _, r := range w.Refs {
		refs = append(refs, refElem{Ref: r})
	}
	e := wayElem{
		ID:   w.ID,
		Refs: refs,
		Tags: tagElems(w.Tags),
	}
	if w.Metadata != nil {
		e.Version = w.Metadata.Version
		e.Changeset = w.Metadata.Changeset
	}
	return e
}

func newRelationElem(r *osm.Relation) relationElem {
	members := make([]memberElem, 0, len(r.Members))
	for _, m := range r.Members {
		members = append(members, memberElem{
			Type: memberTypeNames[m.Type],
			Ref:  m.ID,
			Role: m.Role,
		})
	}
	e := relationElem{
		ID:      r.ID,
		Members: members,
		Tags:    tagElems(r.Tags),
	}
	if r.Metadata != nil {
		e.Version = r.Metadata.Version
		e.Changeset = r.Metadata.Changeset
	}
	return e
}
