package osmapi

import (
	"context"
	"net/url"

	"github.com/pkg/errors"

	osm "github.com/omniscale/go-osm"
)

// Typed read operations. All fetches run through one request path; the
// element kind only selects the path fragments and which part of the
// response document is unpacked.

// Node returns the current version of a single node.
func (c *Client) Node(ctx context.Context, id int64) (*osm.Node, error) {
	return c.node(ctx, nodeKind.path(id))
}

// NodeVersion returns one specific version of a node.
func (c *Client) NodeVersion(ctx context.Context, id int64, version int32) (*osm.Node, error) {
	return c.node(ctx, nodeKind.versionPath(id, version))
}

func (c *Client) node(ctx context.Context, path string) (*osm.Node, error) {
	f, err := c.getOSM(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if len(f.Nodes) == 0 {
		return nil, errors.Errorf("no node in response from %s%s", c.baseURL, path)
	}
	n := f.Nodes[0].osm()
	return &n, nil
}

// NodeHistory returns all versions of a node, oldest first.
func (c *Client) NodeHistory(ctx context.Context, id int64) ([]osm.Node, error) {
	f, err := c.getOSM(ctx, nodeKind.historyPath(id), nil)
	if err != nil {
		return nil, err
	}
	return nodesFromWire(f.Nodes), nil
}

// Nodes fetches multiple nodes, each either at a pinned version or current.
// IDs unknown to the server are omitted from the result without error, so
// the result can be shorter than refs.
func (c *Client) Nodes(ctx context.Context, refs ...ElementRef) ([]osm.Node, error) {
	f, err := c.getOSM(ctx, nodeKind.batchPath(), batchQuery(nodeKind, refs))
	if err != nil {
		return nil, err
	}
	return nodesFromWire(f.Nodes), nil
}

// NodeWays returns all ways that reference the node.
func (c *Client) NodeWays(ctx context.Context, id int64) ([]osm.Way, error) {
	f, err := c.getOSM(ctx, nodeKind.path(id)+"/ways", nil)
	if err != nil {
		return nil, err
	}
	return waysFromWire(f.Ways), nil
}

// NodeRelations returns all relations with the node as member.
func (c *Client) NodeRelations(ctx context.Context, id int64) ([]osm.Relation, error) {
	return c.relations(ctx, nodeKind.relationsPath(id))
}

// Way returns the current version of a single way.
func (c *Client) Way(ctx context.Context, id int64) (*osm.Way, error) {
	return c.way(ctx, wayKind.path(id))
}

// WayVersion returns one specific version of a way.
func (c *Client) WayVersion(ctx context.Context, id int64, version int32) (*osm.Way, error) {
	return c.way(ctx, wayKind.versionPath(id, version))
}

func (c *Client) way(ctx context.Context, path string) (*osm.Way, error) {
	f, err := c.getOSM(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if len(f.Ways) == 0 {
		return nil, errors.Errorf("no way in response from %s%s", c.baseURL, path)
	}
	w := f.Ways[0].osm()
	return &w, nil
}

// WayHistory returns all versions of a way, oldest first.
func (c *Client) WayHistory(ctx context.Context, id int64) ([]osm.Way, error) {
	f, err := c.getOSM(ctx, wayKind.historyPath(id), nil)
	if err != nil {
		return nil, err
	}
	return waysFromWire(f.Ways), nil
}

// Ways fetches multiple ways, see Nodes.
func (c *Client) Ways(ctx context.Context, refs ...ElementRef) ([]osm.Way, error) {
	f, err := c.getOSM(ctx, wayKind.batchPath(), batchQuery(wayKind, refs))
	if err != nil {
		return nil, err
	}
	return waysFromWire(f.Ways), nil
}

// WayFull returns a way with Way.Nodes populated from the same response, in
// Refs order. The way is complete geometry; no further fetches are needed.
func (c *Client) WayFull(ctx context.Context, id int64) (*osm.Way, error) {
	f, err := c.getOSM(ctx, wayKind.fullPath(id), nil)
	if err != nil {
		return nil, err
	}
	if len(f.Ways) == 0 {
		return nil, errors.Errorf("no way in response from %s%s", c.baseURL, wayKind.fullPath(id))
	}
	w := f.Ways[0].osm()
	fillWayNodes(&w, nodesFromWire(f.Nodes))
	return &w, nil
}

// WayRelations returns all relations with the way as member.
func (c *Client) WayRelations(ctx context.Context, id int64) ([]osm.Relation, error) {
	return c.relations(ctx, wayKind.relationsPath(id))
}

// Relation returns the current version of a single relation.
func (c *Client) Relation(ctx context.Context, id int64) (*osm.Relation, error) {
	return c.relation(ctx, relationKind.path(id))
}

// RelationVersion returns one specific version of a relation.
func (c *Client) RelationVersion(ctx context.Context, id int64, version int32) (*osm.Relation, error) {
	return c.relation(ctx, relationKind.versionPath(id, version))
}

func (c *Client) relation(ctx context.Context, path string) (*osm.Relation, error) {
	f, err := c.getOSM(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	if len(f.Relations) == 0 {
		return nil, errors.Errorf("no relation in response from %s%s", c.baseURL, path)
	}
	r := f.Relations[0].osm()
	return &r, nil
}

// RelationHistory returns all versions of a relation, oldest first.
func (c *Client) RelationHistory(ctx context.Context, id int64) ([]osm.Relation, error) {
	f, err := c.getOSM(ctx, relationKind.historyPath(id), nil)
	if err != nil {
		return nil, err
	}
	return relationsFromWire(f.Relations), nil
}

// Relations fetches multiple relations, see Nodes.
func (c *Client) Relations(ctx context.Context, refs ...ElementRef) ([]osm.Relation, error) {
	f, err := c.getOSM(ctx, relationKind.batchPath(), batchQuery(relationKind, refs))
	if err != nil {
		return nil, err
	}
	return relationsFromWire(f.Relations), nil
}

// RelationFull returns a relation with the Node, Way and Element pointers of
// its members populated from the same response. Ways of member ways are not
// resolved recursively; the server only includes direct members.
func (c *Client) RelationFull(ctx context.Context, id int64) (*osm.Relation, error) {
	f, err := c.getOSM(ctx, relationKind.fullPath(id), nil)
	if err != nil {
		return nil, err
	}
	rels := relationsFromWire(f.Relations)
	var rel *osm.Relation
	for i := range rels {
		if rels[i].ID == id {
			rel = &rels[i]
			break
		}
	}
	if rel == nil {
		return nil, errors.Errorf("no relation %d in response from %s%s", id, c.baseURL, relationKind.fullPath(id))
	}
	fillMembers(rel, nodesFromWire(f.Nodes), waysFromWire(f.Ways), rels)
	return rel, nil
}

// RelationRelations returns all relations with the relation as member.
func (c *Client) RelationRelations(ctx context.Context, id int64) ([]osm.Relation, error) {
	return c.relations(ctx, relationKind.relationsPath(id))
}

func (c *Client) relations(ctx context.Context, path string) ([]osm.Relation, error) {
	f, err := c.getOSM(ctx, path, nil)
	if err != nil {
		return nil, err
	}
	return relationsFromWire(f.Relations), nil
}

// MapData contains all elements of a bounding box fetch.
type MapData struct {
	Nodes     []osm.Node
	Ways      []osm.Way
	Relations []osm.Relation
}

// Map returns all elements within the bounding box: all nodes inside, all
// ways referencing those nodes with their missing nodes, and all relations
// referencing any of them.
func (c *Client) Map(ctx context.Context, bbox BBox) (*MapData, error) {
	f, err := c.getOSM(ctx, "/map", url.Values{"bbox": {bbox.String()}})
	if err != nil {
		return nil, err
	}
	return &MapData{
		Nodes:     nodesFromWire(f.Nodes),
		Ways:      waysFromWire(f.Ways),
		Relations: relationsFromWire(f.Relations),
	}, nil
}

func batchQuery(kind elemKind, refs []ElementRef) url.Values {
	return url.Values{kind.batchParam(): {encodeRefs(refs)}}
}

func nodesFromWire(elems []nodeElem) []osm.Node {
	nodes := make([]osm.Node, 0, len(elems))
	for i := range elems {
		nodes = append(nodes, elems[i].osm())
	}
	return nodes
}

func waysFromWire(elems []wayElem) []osm.Way {
	ways := make([]osm.Way, 0, len(elems))
	for i := range elems {
		ways = append(ways, elems[i].osm())
	}
	return ways
}

func relationsFromWire(elems []relationElem) []osm.Relation {
	rels := make([]osm.Relation, 0, len(elems))
	for i := range elems {
		rels = append(rels, elems[i].osm())
	}
	return rels
}

func fillWayNodes(w *osm.Way, nodes []osm.Node) {
	byID := make(map[int64]osm.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}
	w.Nodes = make([]osm.Node, 0, len(w.Refs))
	for _, ref := range w.Refs {
		if n, ok := byID[ref]; ok {
			w.Nodes = append(w.Nodes, n)
		}
	}
}

func fillMembers(rel *osm.Relation, nodes []osm.Node, ways []osm.Way, rels []osm.Relation) {
	nodesByID := make(map[int64]*osm.Node, len(nodes))
	for i := range nodes {
		nodesByID[nodes[i].ID] = &nodes[i]
	}
	waysByID := make(map[int64]*osm.Way, len(ways))
	for i := range ways {
		waysByID[ways[i].ID] = &ways[i]
	}
	relsByID := make(map[int64]*osm.Relation, len(rels))
	for i := range rels {
		relsByID[rels[i].ID] = &rels[i]
	}
	for i := range rel.Members {
		m := &rel.Members[i]
		switch m.Type {
		case osm.NodeMember:
			if n, ok := nodesByID[m.ID]; ok {
				m.Node = n
				m.Element = &n.Element
			}
		case osm.WayMember:
			if w, ok := waysByID[m.ID]; ok {
				m.Way = w
				m.Element = &w.Element
			}
		case osm.RelationMember:
			if r, ok := relsByID[m.ID]; ok {
				m.Element = &r.Element
			}
		}
	}
}
