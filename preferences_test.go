package osmapi

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"testing"
)

func TestPreferences(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/preferences" {
			t.Error("unexpected path", r.URL.Path)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("missing credentials")
		}
		fmt.Fprint(w, `<osm>
 <preferences>
  <preference k="gps.trace.visibility" v="public"/>
  <preference k="color" v="red"/>
 </preferences>
</osm>`)
	}))

	prefs, err := client.Preferences(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(prefs) != 2 || prefs["color"] != "red" {
		t.Error("unexpected preferences", prefs)
	}
}

func TestSetPreferences(t *testing.T) {
	var gotBody string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/user/preferences" {
			t.Error("unexpected request", r.Method, r.URL.Path)
		}
		buf, _ := ioutil.ReadAll(r.Body)
		gotBody = string(buf)
	}))

	err := client.SetPreferences(context.Background(), map[string]string{"color": "red"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gotBody, `k="color" v="red"`) {
		t.Error("unexpected body", gotBody)
	}
}

func TestSetPreference(t *testing.T) {
	var gotPath, gotBody string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		buf, _ := ioutil.ReadAll(r.Body)
		gotBody = string(buf)
	}))

	if err := client.SetPreference(context.Background(), "gps.trace/visibility", "public"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/user/preferences/gps.trace%2Fvisibility" {
		t.Error("unexpected path", gotPath)
	}
	if gotBody != "public" {
		t.Error("unexpected body", gotBody)
	}
}

func TestDeletePreference(t *testing.T) {
	var gotMethod, gotPath string
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
	}))

	if err := client.DeletePreference(context.Background(), "color"); err != nil {
		t.Fatal(err)
	}
	if gotMethod != "DELETE" || gotPath != "/user/preferences/color" {
		t.Error("unexpected request", gotMethod, gotPath)
	}
}
