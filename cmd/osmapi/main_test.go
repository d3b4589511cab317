package main

import "testing"

// Building a FlagSet panics on duplicate flag names, so constructing every
// subcommand's flags is the test.
func TestSubcommandFlags(t *testing.T) {
	for _, kind := range []string{"node", "way", "relation"} {
		fs, _, _, _ := elementFlags(kind)
		for _, name := range []string{"user", "config", "version", "history"} {
			if fs.Lookup(name) == nil {
				t.Errorf("%s: missing flag -%s", kind, name)
			}
		}
	}

	fs, _, _ := changesetFlags()
	if fs.Lookup("discussion") == nil || fs.Lookup("user") == nil {
		t.Error("changeset: missing flags")
	}
}

func TestChangesetsFlags(t *testing.T) {
	fs, _, opts := changesetsFlags()
	// the user id filter must not collide with the shared -user auth flag
	if fs.Lookup("user") == nil {
		t.Error("missing shared -user flag")
	}
	if fs.Lookup("uid") == nil {
		t.Fatal("missing -uid filter flag")
	}
	if err := fs.Parse([]string{"-uid", "8744", "-name", "test", "-open"}); err != nil {
		t.Fatal(err)
	}
	if *opts.uid != 8744 || *opts.name != "test" || !*opts.open || *opts.closed {
		t.Error("unexpected options", *opts.uid, *opts.name, *opts.open, *opts.closed)
	}
}
