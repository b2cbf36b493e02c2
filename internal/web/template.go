package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/radio-buttons/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Radio Buttons</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.RELEASED { color: #888; }
.PRESSED { color: green; font-weight: bold; }
.LONG { color: orange; font-weight: bold; }
.EXTRA_LONG { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; background: orange; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
</style>
</head>
<body>
<h1>Radio Buttons ({{.Config.Platform}})<span id="live-dot" class="live-dot" title="connecting"></span></h1>

<h2>Keys</h2>
<table id="keys">
{{range .Modifiers}}<tr><th>{{.Modifier}}</th><td id="phase-{{.Modifier}}" class="{{.Phase}}">{{.Phase}}</td></tr>
{{end}}<tr><th>Mask</th><td id="mask">{{.Mask}}</td></tr>
<tr><th>Combination hold</th><td id="combo">{{if .WaitingNewState}}yes{{else}}no{{end}}</td></tr>
<tr><th>PTT locked</th><td>{{if .PTTLocked}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Changes</th><td id="changes">{{.Counts.Changes}}</td></tr>
{{range .Modifiers}}{{$c := $.Counts.For .Modifier}}<tr><th>{{.Modifier}} short / long / extra</th><td>{{$c.Short}} / {{$c.Long}} / {{$c.ExtraLong}}</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Backend</th><td>{{.Config.Backend}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Long press</th><td>{{.Config.LongThreshold}} ticks</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");
  var proto = location.protocol === "https:" ? "wss://" : "ws://";

  function connect() {
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { dot.className = "live-dot ok"; dot.title = "live"; };
    ws.onclose = function() {
      dot.className = "live-dot err"; dot.title = "offline";
      setTimeout(connect, 5000);
    };
    ws.onmessage = function(ev) {
      try {
        var s = JSON.parse(ev.data).status;
        document.getElementById("mask").textContent = s.buttons.length ? s.buttons.join("|") : "NONE";
        document.getElementById("combo").textContent = s.waiting_new_state ? "yes" : "no";
        document.getElementById("changes").textContent = s.event_counts.changes;
        s.modifiers.forEach(function(m) {
          var el = document.getElementById("phase-" + m.name);
          if (el) { el.textContent = m.phase; el.className = m.phase; }
        });
      } catch (e) {}
    };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	return indexTmpl.Execute(w, data)
}
