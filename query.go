package osmapi

import (
	"strconv"
	"strings"
)

// elemKind selects the per-kind path fragments of the editing API.
type elemKind int

const (
	nodeKind elemKind = iota
	wayKind
	relationKind
)

var kindPaths = [...]struct {
	single string
	plural string
}{
	nodeKind:     {"node", "nodes"},
	wayKind:      {"way", "ways"},
	relationKind: {"relation", "relations"},
}

func (k elemKind) path(id int64) string {
	return "/" + kindPaths[k].single + "/" + strconv.FormatInt(id, 10)
}

func (k elemKind) versionPath(id int64, version int32) string {
	return k.path(id) + "/" + strconv.FormatInt(int64(version), 10)
}

func (k elemKind) historyPath(id int64) string {
	return k.path(id) + "/history"
}

func (k elemKind) fullPath(id int64) string {
	return k.path(id) + "/full"
}

func (k elemKind) relationsPath(id int64) string {
	return k.path(id) + "/relations"
}

// batchPath is the plural resource, queried with a parameter of the same
// name ("/nodes?nodes=...").
func (k elemKind) batchPath() string {
	return "/" + kindPaths[k].plural
}

func (k elemKind) batchParam() string {
	return kindPaths[k].plural
}

// An ElementRef selects one element for a batch fetch. Version 0 selects
// the current version.
type ElementRef struct {
	ID      int64
	Version int32
}

// encodeRefs renders refs as comma separated tokens, "123" for the current
// version or "123v2" for version 2, preserving input order.
func encodeRefs(refs []ElementRef) string {
	var b strings.Builder
	for i, ref := range refs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(ref.ID, 10))
		if ref.Version > 0 {
			b.WriteByte('v')
			b.WriteString(strconv.FormatInt(int64(ref.Version), 10))
		}
	}
	return b.String()
}

// A BBox is a geographic bounding box in WGS84 coordinates.
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// String renders the box as "minLon,minLat,maxLon,maxLat" query value.
func (b BBox) String() string {
	return formatCoord(b.MinLon) + "," + formatCoord(b.MinLat) + "," +
		formatCoord(b.MaxLon) + "," + formatCoord(b.MaxLat)
}

// Extent returns the box as a go-osm extent array, as used by
// osm.Changeset.MaxExtent.
func (b BBox) Extent() [4]float64 {
	return [4]float64{b.MinLon, b.MinLat, b.MaxLon, b.MaxLat}
}

// BBoxFromExtent is the inverse of Extent, for boxes reported by the
// server such as osm.Changeset.MaxExtent.
func BBoxFromExtent(extent [4]float64) BBox {
	return BBox{MinLon: extent[0], MinLat: extent[1], MaxLon: extent[2], MaxLat: extent[3]}
}

// formatCoord renders a coordinate with up to 7 decimal places (about 1cm).
// The API rejects exponential notation, so plain decimal format is forced
// even for values like 0.0000001.
func formatCoord(v float64) string {
	s := strconv.FormatFloat(v, 'f', 7, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
