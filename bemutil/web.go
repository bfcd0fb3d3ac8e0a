/*
Copyright © 2025 the BEM authors.
This file is part of BEM.

BEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

BEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with BEM.  If not, see <http://www.gnu.org/licenses/>.
*/


package bemutil

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ctessum/gobra"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

const guiAddress = "localhost:7272"

// configHandler loads the configuration file named by the "config" query
// parameter and responds with the resulting option values as JSON.
func configHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	path := r.Form.Get("config")
	if path == "" {
		http.Error(w, "bem: missing config parameter", http.StatusBadRequest)
		return
	}
	Cfg.Set("config", path)
	if err := setConfig(); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	values := make(map[string]interface{}, len(options))
	for _, o := range options {
		values[o.name] = Cfg.Get(o.name)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(values); err != nil {
		logrus.WithError(err).Warn("bem: writing configuration response")
	}
}

var guiPage = template.Must(template.New("gui").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>BEM rotor performance</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; }
div[id^="gobra-"] blockquote { color: #444; font-size: 80%; margin: .2em 1em; }
div[id^="gobra-"] input { font-family: monospace; width: 50%; }
input.loaded { background: #efe; }
input.edited { background: #eef; }
input.failed { background: #fee; }
</style>
</head>
<body>
<h1>BEM rotor performance</h1>
<p>Enter a configuration file to load its values, then edit any option and run a command.</p>
{{.}}
<script>
const fields = Array.from(document.querySelectorAll("[data-name]"));
const input = name => { const f = fields.find(f => f.dataset.name == name); return f && f.children[0]; };
fields.forEach(f => f.children[0].addEventListener("input", e => e.target.className = "edited"));
const config = input("config");
config.addEventListener("change", async () => {
	const res = await fetch("/setConfig?config=" + encodeURIComponent(config.value));
	config.className = res.ok ? "loaded" : "failed";
	if (!res.ok) return;
	const values = await res.json();
	for (const [name, v] of Object.entries(values)) {
		const el = input(name);
		if (!el || name == "config") continue;
		const s = typeof v == "string" ? v : JSON.stringify(v);
		if (el.value != s) { el.value = s; el.className = "loaded"; }
	}
});
</script>
</body>
</html>`))

// StartWebServer runs the commands behind a browser form.
func StartWebServer() {
	if err := setConfig(); err != nil {
		logrus.Warn(err)
	}
	http.HandleFunc("/setConfig", configHandler)

	for _, cmd := range []*cobra.Command{Root, versionCmd, solveCmd, stationCmd, sweepCmd, plotCmd} {
		cmd.SilenceUsage = true
	}
	server := gobra.Server{Root: Root, ServerAddress: guiAddress, HTML: guiPage}
	url := "http://" + guiAddress
	logrus.Infof("bem: serving the interface at %s", url)
	if err := open.Run(url); err != nil {
		fmt.Println("Open", url, "in a browser to continue.")
	}
	server.Start()
}
