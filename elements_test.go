package osmapi

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	osm "github.com/omniscale/go-osm"
)

const nodeXML = `<osm version="0.6" generator="OpenStreetMap server">
 <node id="123" visible="true" version="4" changeset="9721478" timestamp="2011-11-04T19:34:57Z" user="test" uid="8744" lat="53.0749606" lon="8.8107699">
  <tag k="highway" v="traffic_signals"/>
 </node>
</osm>`

func TestNode(t *testing.T) {
	var gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, nodeXML)
	}))

	node, err := client.Node(context.Background(), 123)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/node/123" {
		t.Error("unexpected path", gotPath)
	}
	if node.ID != 123 || node.Lat != 53.0749606 || node.Long != 8.8107699 {
		t.Error("unexpected node", node)
	}
	if node.Tags["highway"] != "traffic_signals" {
		t.Error("unexpected tags", node.Tags)
	}
	meta := node.Metadata
	if meta == nil {
		t.Fatal("missing metadata")
	}
	if meta.Version != 4 || meta.Changeset != 9721478 || meta.UserID != 8744 || meta.UserName != "test" {
		t.Error("unexpected metadata", meta)
	}
	if !meta.Timestamp.Equal(time.Date(2011, 11, 4, 19, 34, 57, 0, time.UTC)) {
		t.Error("unexpected timestamp", meta.Timestamp)
	}
}

func TestNodeVersion(t *testing.T) {
	var gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, nodeXML)
	}))

	if _, err := client.NodeVersion(context.Background(), 123, 4); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/node/123/4" {
		t.Error("unexpected path", gotPath)
	}
}

func TestNodeHistory(t *testing.T) {
	var gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `<osm>
 <node id="123" version="1" changeset="1" lat="1.0" lon="1.0"/>
 <node id="123" version="2" changeset="7" lat="1.5" lon="1.0"/>
</osm>`)
	}))

	nodes, err := client.NodeHistory(context.Background(), 123)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/node/123/history" {
		t.Error("unexpected path", gotPath)
	}
	if len(nodes) != 2 {
		t.Fatal("expected 2 versions, got", len(nodes))
	}
	if nodes[0].Metadata.Version != 1 || nodes[1].Metadata.Version != 2 {
		t.Error("versions out of order", nodes)
	}
}

func TestNodesBatch(t *testing.T) {
	var gotQuery string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nodes" {
			t.Error("unexpected path", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("nodes")
		// id 99 is unknown and omitted by the server
		fmt.Fprint(w, `<osm>
 <node id="1" version="1" changeset="1" lat="1.0" lon="1.0"/>
 <node id="2" version="3" changeset="2" lat="2.0" lon="2.0"/>
</osm>`)
	}))

	nodes, err := client.Nodes(context.Background(),
		ElementRef{ID: 1}, ElementRef{ID: 2, Version: 3}, ElementRef{ID: 99})
	if err != nil {
		t.Fatal(err)
	}
	if gotQuery != "1,2v3,99" {
		t.Error("unexpected query", gotQuery)
	}
	if len(nodes) != 2 {
		t.Error("expected 2 nodes, got", len(nodes))
	}
}

func TestNodeWays(t *testing.T) {
	var gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `<osm>
 <way id="7" version="2" changeset="3">
  <nd ref="123"/>
  <nd ref="124"/>
 </way>
</osm>`)
	}))

	ways, err := client.NodeWays(context.Background(), 123)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/node/123/ways" {
		t.Error("unexpected path", gotPath)
	}
	if len(ways) != 1 || ways[0].ID != 7 {
		t.Fatal("unexpected ways", ways)
	}
	if len(ways[0].Refs) != 2 || ways[0].Refs[0] != 123 || ways[0].Refs[1] != 124 {
		t.Error("unexpected refs", ways[0].Refs)
	}
}

func TestNodeRelations(t *testing.T) {
	var gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		fmt.Fprint(w, `<osm>
 <relation id="31" version="5" changeset="9">
  <member type="node" ref="123" role="stop"/>
  <tag k="type" v="route"/>
 </relation>
</osm>`)
	}))

	rels, err := client.NodeRelations(context.Background(), 123)
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/node/123/relations" {
		t.Error("unexpected path", gotPath)
	}
	if len(rels) != 1 || rels[0].ID != 31 {
		t.Fatal("unexpected relations", rels)
	}
	member := rels[0].Members[0]
	if member.Type != osm.NodeMember || member.ID != 123 || member.Role != "stop" {
		t.Error("unexpected member", member)
	}
}

func TestWayFull(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/way/7/full" {
			t.Error("unexpected path", r.URL.Path)
		}
		fmt.Fprint(w, `<osm>
 <node id="123" version="1" changeset="1" lat="1.0" lon="2.0"/>
 <node id="124" version="1" changeset="1" lat="1.1" lon="2.0"/>
 <way id="7" version="2" changeset="3">
  <nd ref="124"/>
  <nd ref="123"/>
 </way>
</osm>`)
	}))

	way, err := client.WayFull(context.Background(), 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(way.Nodes) != 2 {
		t.Fatal("expected 2 nodes, got", len(way.Nodes))
	}
	// nodes follow ref order, not document order
	if way.Nodes[0].ID != 124 || way.Nodes[1].ID != 123 {
		t.Error("nodes not in ref order", way.Nodes)
	}
	if way.Nodes[0].Lat != 1.1 {
		t.Error("unexpected node", way.Nodes[0])
	}
}

func TestRelationFull(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/relation/31/full" {
			t.Error("unexpected path", r.URL.Path)
		}
		fmt.Fprint(w, `<osm>
 <node id="123" version="1" changeset="1" lat="1.0" lon="2.0"/>
 <way id="7" version="2" changeset="3">
  <nd ref="123"/>
 </way>
 <relation id="31" version="5" changeset="9">
  <member type="way" ref="7" role="outer"/>
  <member type="node" ref="123" role=""/>
  <member type="relation" ref="99" role="subarea"/>
 </relation>
</osm>`)
	}))

	rel, err := client.RelationFull(context.Background(), 31)
	if err != nil {
		t.Fatal(err)
	}
	if len(rel.Members) != 3 {
		t.Fatal("unexpected members", rel.Members)
	}
	if rel.Members[0].Way == nil || rel.Members[0].Way.ID != 7 {
		t.Error("way member not resolved", rel.Members[0])
	}
	if rel.Members[1].Node == nil || rel.Members[1].Node.Lat != 1.0 {
		t.Error("node member not resolved", rel.Members[1])
	}
	// relation 99 is not part of the response
	if rel.Members[2].Element != nil {
		t.Error("unresolvable member resolved", rel.Members[2])
	}
}

func TestMap(t *testing.T) {
	var gotBBox string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/map" {
			t.Error("unexpected path", r.URL.Path)
		}
		gotBBox = r.URL.Query().Get("bbox")
		fmt.Fprint(w, `<osm>
 <node id="1" version="1" changeset="1" lat="1.0" lon="1.0"/>
 <way id="2" version="1" changeset="1"><nd ref="1"/></way>
</osm>`)
	}))

	data, err := client.Map(context.Background(), BBox{MinLon: 8.9, MinLat: 47.2, MaxLon: 8.95, MaxLat: 47.25})
	if err != nil {
		t.Fatal(err)
	}
	if gotBBox != "8.9,47.2,8.95,47.25" {
		t.Error("unexpected bbox", gotBBox)
	}
	if len(data.Nodes) != 1 || len(data.Ways) != 1 || len(data.Relations) != 0 {
		t.Error("unexpected map data", data)
	}
}
