// Package osmapi is a client for the OpenStreetMap editing API (v0.6).
//
// It reads nodes, ways and relations as github.com/omniscale/go-osm values,
// opens and closes changesets, and uploads create/modify/delete batches as
// atomic diff uploads. The client keeps no state between calls; all edit
// sequencing (open changeset, upload, close) is tracked by the server.
package osmapi

const Version = "0.1.0"
