package view

// mountTemplates render the content of each mount point.
const mountTemplates = `
{{define "major-gods"}}{{range .MajorGods}}{{if .AddNew}}
<article class="card add-new-god" data-offset="{{.Offset}}" data-event="add_god"><span class="plus-icon">+</span></article>
{{else}}
<article class="card major-god{{if .Active}} active{{end}}" data-offset="{{.Offset}}" style="background-image: url('{{.Image}}')"{{if not .Active}} data-event="select_major_god" data-key="{{.Key}}"{{end}}>
  <h4>{{.Name}}</h4>
  <p>{{.Tagline}}</p>
  {{if .Active}}<div class="card-actions">
    <button data-event="edit_god" data-key="{{.Key}}" title="Edit">✎</button>
    <button data-event="remove_god" data-key="{{.Key}}" title="Remove">🗑</button>
  </div>{{end}}
</article>
{{end}}{{end}}{{end}}

{{define "tile"}}{{if .Placeholder}}<div class="tile placeholder"><span class="plus-icon">+</span></div>
{{else if .Empty}}<div class="tile empty"></div>
{{else}}<div class="tile {{.Kind}}{{if .Active}} active{{end}}" tabindex="0" data-event="{{if eq (print .Kind) "building"}}select_building{{else}}preview{{end}}" data-name="{{.Name}}">
  <img src="{{.Image}}" class="sprite" alt="{{.Name}}"/>
  <h5>{{.Name}}</h5>{{if .Tagline}}
  <p>{{.Tagline}}</p>{{end}}
</div>
{{end}}{{end}}

{{define "minor-gods"}}{{range .MinorGods}}{{template "tile" .}}{{end}}{{end}}

{{define "buildings"}}{{range .Buildings}}{{range .}}{{template "tile" .}}{{end}}{{end}}{{end}}

{{define "units-techs"}}{{range .UnitsTechs}}{{range .}}{{template "tile" .}}{{end}}{{end}}{{end}}

{{define "preview"}}{{if not .Name}}
<div class="preview-card empty">{{.Message}}</div>
{{else}}
<div class="preview-card {{.Kind}}">
  <div class="bg-god-logo">{{.GodIcon}}</div>
  <header class="preview-card-header">
    <div class="title-group">
      <h2>{{.Name}}</h2>{{if .Tagline}}
      <span class="tagline">{{.Tagline}}</span>{{end}}
    </div>
  </header>
  {{if .Stats}}<div class="preview-card-stats">{{range .Stats}}
    <span title="{{.Key}}">{{.Icon}} {{if .Label}}{{.Label}} {{end}}{{.Value}}</span>{{end}}
  </div>{{end}}
  <div class="preview-card-body">
    <div class="portrait"><img src="{{.Image}}" alt="{{.Name}}"/></div>
    {{with .Attack}}<div class="attack-details">
      <h3>{{.Title}}</h3>
      <div class="stats-grid">{{range .Stats}}
        <div class="label">{{.Icon}} {{.Label}}</div><div class="value">{{.Value}}</div>{{end}}
        {{range .Multipliers}}<div class="multipliers">{{.}}</div>{{end}}
      </div>
    </div>{{end}}
  </div>
  {{if .Description}}<div class="description">{{.Description}}</div>{{end}}
  {{if .PrerequisiteGod}}<p class="relation">Requires {{.PrerequisiteGod}}</p>{{end}}
  {{if .TrainedAt}}<p class="relation">Trained at: {{join .TrainedAt}}</p>{{end}}
  {{if .ResearchedAt}}<p class="relation">Researched at: {{join .ResearchedAt}}</p>{{end}}
  {{if .Trains}}<p class="relation">Trains: {{join .Trains}}</p>{{end}}
  {{if .Researches}}<p class="relation">Researches: {{join .Researches}}</p>{{end}}
  {{if .GodPowers}}<p class="relation">God powers: {{join .GodPowers}}</p>{{end}}
</div>
{{end}}{{end}}
`

// pageTemplate is the full viewer page. Mount points are filled on the
// server; the script keeps them current over the websocket.
const pageTemplate = `{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{.Page.Civ}} · civcards</title>
  <style>{{.Style}}</style>
</head>
<body>
  <section class="major-gods"><div class="carousel" id="major-gods">{{template "major-gods" .Page}}</div></section>
  <section class="minor-gods"><div class="grid" id="minor-gods">{{template "minor-gods" .Page}}</div></section>
  <section class="buildings">
    <div class="buildings-grid" id="buildings">{{template "buildings" .Page}}</div>
    <div class="preview-pane" id="buildings-pane">{{if eq .Page.PreviewMount "buildings-pane"}}{{template "preview" .Page.Preview}}{{end}}</div>
  </section>
  <section class="units-techs">
    <div class="units-techs-grid" id="units-techs">{{template "units-techs" .Page}}</div>
    <div class="preview-pane" id="units-techs-pane">{{if eq .Page.PreviewMount "units-techs-pane"}}{{template "preview" .Page.Preview}}{{end}}</div>
  </section>
  <div id="preview-modal" class="modal"{{if ne .Page.PreviewMount "modal"}} style="display:none"{{end}}>
    <div class="modal-content">
      <button class="modal-close-btn" title="Close">×</button>
      <div class="preview-pane" id="modal">{{if eq .Page.PreviewMount "modal"}}{{template "preview" .Page.Preview}}{{end}}</div>
    </div>
  </div>
  <script>{{.Script}}</script>
</body>
</html>
{{end}}`

// cssContent styles the viewer.
const cssContent = `
:root { --bg: #14161a; --panel: #1f232a; --accent: #d9a441; --text: #eee; --muted: #999; }
* { box-sizing: border-box; }
body { margin: 0; padding: 1rem; font-family: system-ui, sans-serif; background: var(--bg); color: var(--text); display: grid; gap: 1rem; }
section { background: var(--panel); border-radius: 8px; padding: 1rem; }
.carousel { position: relative; height: 220px; overflow: hidden; }
.card { position: absolute; left: 50%; top: 0; width: 160px; height: 200px; margin-left: -80px; border-radius: 8px; background-size: cover; background-color: #333; padding: .5rem; cursor: pointer; transition: transform .3s, opacity .3s; }
.card[data-offset="0"] { transform: translateX(0) scale(1); z-index: 3; border: 2px solid var(--accent); }
.card[data-offset="1"] { transform: translateX(170px) scale(.85); opacity: .7; z-index: 2; }
.card[data-offset="-1"] { transform: translateX(-170px) scale(.85); opacity: .7; z-index: 2; }
.card[data-offset="2"] { transform: translateX(320px) scale(.7); opacity: .4; z-index: 1; }
.card[data-offset="-2"] { transform: translateX(-320px) scale(.7); opacity: .4; z-index: 1; }
.card.add-new-god { display: flex; align-items: center; justify-content: center; font-size: 2rem; }
.card-actions { position: absolute; bottom: .5rem; right: .5rem; }
.grid, .buildings-grid, .units-techs-grid { display: grid; grid-template-columns: repeat(6, minmax(0, 1fr)); gap: .5rem; }
.buildings, .units-techs { display: grid; grid-template-columns: 2fr 1fr; gap: 1rem; }
.tile { background: #2a2f38; border-radius: 6px; padding: .4rem; text-align: center; cursor: pointer; min-height: 90px; }
.tile.active { outline: 2px solid var(--accent); }
.tile.placeholder, .tile.empty { cursor: default; opacity: .35; display: flex; align-items: center; justify-content: center; }
.tile.empty { background: transparent; }
.sprite { width: 48px; height: 48px; object-fit: contain; }
.tile h5 { margin: .3rem 0 0; font-size: .75rem; }
.preview-card { position: relative; overflow: hidden; min-height: 200px; }
.preview-card.empty { display: flex; align-items: center; justify-content: center; color: var(--muted); }
.bg-god-logo { position: absolute; right: -1rem; top: -1rem; font-size: 8rem; opacity: .08; }
.preview-card-stats span { margin-right: .6rem; }
.stats-grid { display: grid; grid-template-columns: auto auto; gap: .2rem .8rem; }
.portrait img { width: 90px; height: 120px; object-fit: cover; }
.relation { color: var(--muted); font-size: .85rem; margin: .3rem 0; }
.modal { position: fixed; inset: 0; background: rgba(0,0,0,.7); display: flex; align-items: center; justify-content: center; }
.modal-content { background: var(--panel); border-radius: 8px; padding: 1rem; width: 92vw; max-height: 90vh; overflow: auto; }
.modal-close-btn { float: right; background: none; border: 0; color: var(--text); font-size: 1.5rem; cursor: pointer; }
@media (max-width: 768px) {
  .buildings, .units-techs { grid-template-columns: 1fr; }
  .buildings .preview-pane, .units-techs .preview-pane { display: none; }
}
`

// jsContent forwards clicks to the server and paints the frames it sends
// back.
const jsContent = `
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  var modal = document.getElementById("preview-modal");

  function send(msg) {
    msg.viewport = window.innerWidth;
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }

  ws.onmessage = function (ev) {
    var msg = JSON.parse(ev.data);
    if (msg.type === "error") { console.warn("civcards:", msg.error); return; }
    if (msg.type !== "frame") return;
    Object.keys(msg.mounts).forEach(function (id) {
      var el = document.getElementById(id);
      if (el) el.innerHTML = msg.mounts[id];
    });
    if (msg.preview === "modal") modal.style.display = "flex";
  };

  document.addEventListener("click", function (ev) {
    if (ev.target === modal || ev.target.classList.contains("modal-close-btn")) {
      modal.style.display = "none";
      return;
    }
    var el = ev.target.closest("[data-event]");
    if (!el) return;
    ev.stopPropagation();
    send({ type: el.dataset.event, key: el.dataset.key || "", name: el.dataset.name || "" });
  });
})();
`
