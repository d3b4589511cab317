// Command osmapi is a small inspection tool for the OSM editing API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	osm "github.com/omniscale/go-osm"

	osmapi "github.com/omniscale/go-osmapi"
	"github.com/omniscale/go-osmapi/config"
	"github.com/omniscale/go-osmapi/log"
)

func printCmds() {
	fmt.Fprintf(os.Stderr, "Usage: %s COMMAND [args]\n\n", os.Args[0])
	fmt.Println("Available commands:")
	fmt.Println("\tnode")
	fmt.Println("\tway")
	fmt.Println("\trelation")
	fmt.Println("\tchangeset")
	fmt.Println("\tchangesets")
	fmt.Println("\tversion")
}

func main() {
	if len(os.Args) <= 1 {
		printCmds()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "node":
		element(os.Args[2:], "node")
	case "way":
		element(os.Args[2:], "way")
	case "relation":
		element(os.Args[2:], "relation")
	case "changeset":
		changeset(os.Args[2:])
	case "changesets":
		changesets(os.Args[2:])
	case "version":
		fmt.Println(osmapi.Version)
		os.Exit(0)
	default:
		printCmds()
		log.Fatalf("[fatal] invalid command: '%s'", os.Args[1])
	}
}

func newClient(base *config.Base) *osmapi.Client {
	if err := base.Resolve(); err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	if base.Debug {
		log.SetMinLevel(log.LDebug)
	}
	conf := osmapi.Config{
		BaseURL:   base.BaseURL,
		UserAgent: base.UserAgent,
	}
	if base.User != "" {
		conf.Auth = &osmapi.BasicAuth{User: base.User, Password: base.Password}
	}
	return osmapi.New(conf)
}

func parseID(fs *flag.FlagSet) int64 {
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}
	id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		log.Fatalf("[fatal] invalid id '%s'", fs.Arg(0))
	}
	return id
}

func elementFlags(kind string) (*flag.FlagSet, *config.Base, *int, *bool) {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	base := &config.Base{}
	base.Bind(fs)
	version := fs.Int("version", 0, "fetch a specific version")
	history := fs.Bool("history", false, "fetch all versions")
	return fs, base, version, history
}

func element(args []string, kind string) {
	fs, base, version, history := elementFlags(kind)
	fs.Parse(args)
	client := newClient(base)
	id := parseID(fs)

	ctx := context.Background()
	var err error
	switch {
	case *history:
		err = printHistory(ctx, client, kind, id)
	case *version > 0:
		err = printVersion(ctx, client, kind, id, int32(*version))
	default:
		err = printCurrent(ctx, client, kind, id)
	}
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
}

func printCurrent(ctx context.Context, client *osmapi.Client, kind string, id int64) error {
	switch kind {
	case "node":
		n, err := client.Node(ctx, id)
		if err != nil {
			return err
		}
		printNode(n)
	case "way":
		w, err := client.Way(ctx, id)
		if err != nil {
			return err
		}
		printWay(w)
	case "relation":
		r, err := client.Relation(ctx, id)
		if err != nil {
			return err
		}
		printRelation(r)
	}
	return nil
}

func printVersion(ctx context.Context, client *osmapi.Client, kind string, id int64, version int32) error {
	switch kind {
	case "node":
		n, err := client.NodeVersion(ctx, id, version)
		if err != nil {
			return err
		}
		printNode(n)
	case "way":
		w, err := client.WayVersion(ctx, id, version)
		if err != nil {
			return err
		}
		printWay(w)
	case "relation":
		r, err := client.RelationVersion(ctx, id, version)
		if err != nil {
			return err
		}
		printRelation(r)
	}
	return nil
}

func printHistory(ctx context.Context, client *osmapi.Client, kind string, id int64) error {
	switch kind {
	case "node":
		nodes, err := client.NodeHistory(ctx, id)
		if err != nil {
			return err
		}
		for i := range nodes {
			printNode(&nodes[i])
		}
	case "way":
		ways, err := client.WayHistory(ctx, id)
		if err != nil {
			return err
		}
		for i := range ways {
			printWay(&ways[i])
		}
	case "relation":
		rels, err := client.RelationHistory(ctx, id)
		if err != nil {
			return err
		}
		for i := range rels {
			printRelation(&rels[i])
		}
	}
	return nil
}

func printMeta(meta *osm.Metadata) {
	if meta == nil {
		return
	}
	fmt.Printf("\tversion %d, changeset %d, %s by %s\n",
		meta.Version, meta.Changeset, meta.Timestamp.Format("2006-01-02 15:04:05"), meta.UserName)
}

func printTags(tags osm.Tags) {
	for k, v := range tags {
		fmt.Printf("\t%s=%s\n", k, v)
	}
}

func printNode(n *osm.Node) {
	fmt.Printf("node %d (%f, %f)\n", n.ID, n.Long, n.Lat)
	printMeta(n.Metadata)
	printTags(n.Tags)
}

func printWay(w *osm.Way) {
	fmt.Printf("way %d with %d nodes\n", w.ID, len(w.Refs))
	printMeta(w.Metadata)
	printTags(w.Tags)
}

func printRelation(r *osm.Relation) {
	fmt.Printf("relation %d with %d members\n", r.ID, len(r.Members))
	printMeta(r.Metadata)
	printTags(r.Tags)
}

func changesetFlags() (*flag.FlagSet, *config.Base, *bool) {
	fs := flag.NewFlagSet("changeset", flag.ExitOnError)
	base := &config.Base{}
	base.Bind(fs)
	discussion := fs.Bool("discussion", false, "include discussion comments")
	return fs, base, discussion
}

func changeset(args []string) {
	fs, base, discussion := changesetFlags()
	fs.Parse(args)
	client := newClient(base)
	id := parseID(fs)

	cs, err := client.Changeset(context.Background(), id, *discussion)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	printChangeset(cs)
	for _, comment := range cs.Comments {
		fmt.Printf("\t%s %s: %s\n", comment.CreatedAt.Format("2006-01-02"), comment.UserName, comment.Text)
	}
}

type changesetsOpts struct {
	uid    *int
	name   *string
	open   *bool
	closed *bool
}

func changesetsFlags() (*flag.FlagSet, *config.Base, *changesetsOpts) {
	fs := flag.NewFlagSet("changesets", flag.ExitOnError)
	base := &config.Base{}
	base.Bind(fs)
	// -user is taken by the shared auth flags
	opts := &changesetsOpts{
		uid:    fs.Int("uid", 0, "filter by user id"),
		name:   fs.String("name", "", "filter by user name"),
		open:   fs.Bool("open", false, "only open changesets"),
		closed: fs.Bool("closed", false, "only closed changesets"),
	}
	return fs, base, opts
}

func changesets(args []string) {
	fs, base, opts := changesetsFlags()
	fs.Parse(args)
	client := newClient(base)

	query := osmapi.ChangesetQuery{
		UserID:   int32(*opts.uid),
		UserName: *opts.name,
		Open:     *opts.open,
		Closed:   *opts.closed,
	}
	result, err := client.Changesets(context.Background(), query)
	if err != nil {
		log.Fatalf("[fatal] %v", err)
	}
	for i := range result {
		printChangeset(&result[i])
	}
}

func printChangeset(cs *osm.Changeset) {
	state := "closed"
	if cs.Open {
		state = "open"
	}
	fmt.Printf("changeset %d (%s) by %s, %d changes\n", cs.ID, state, cs.UserName, cs.NumChanges)
	printTags(cs.Tags)
}
