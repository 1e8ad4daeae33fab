package server

import (
	"html/template"

	"github.com/desertthunder/moodify/internal/models"
)

type callbackPage struct {
	RedirectTo string
	Delay      int
	Error      string
}

type indexPage struct {
	Status    string
	Connected bool
	History   []*models.PlaylistHistoryItem
}

const pageStyle = `
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; min-height: 100vh;
               margin: 0; background: #f5f5f5; }
        .container { text-align: center; background: white; padding: 2rem;
                     border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        h1.error { color: #E22134; }
        p { color: #666; margin: 0.5rem 0; }
        li { text-align: left; }`

var callbackTemplate = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{if .Error}}Authorization Failed{{else}}Authorization Successful{{end}}</title>
    <meta http-equiv="refresh" content="{{.Delay}};url={{.RedirectTo}}">
    <style>` + pageStyle + `
    </style>
</head>
<body>
    <div class="container">
    {{- if .Error}}
        <h1 class="error">✗ Authorization Failed</h1>
        <p>{{.Error}}</p>
    {{- else}}
        <h1>✓ Authorization Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    {{- end}}
        <p>Redirecting in {{.Delay}} seconds...</p>
    </div>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>moodify</title>
    <style>` + pageStyle + `
    </style>
</head>
<body>
    <div class="container">
        <h1>moodify</h1>
        <p>Spotify: {{.Status}}</p>
    {{- if .Connected}}
        <form method="post" action="/logout"><button type="submit">Disconnect</button></form>
    {{- else}}
        <p><a href="/login">Connect to Spotify</a></p>
    {{- end}}
    {{- if .History}}
        <ul>
        {{- range .History}}
            <li>{{if .SpotifyURL}}<a href="{{.SpotifyURL}}">{{.Name}}</a>{{else}}{{.Name}}{{end}} ({{.AddedCount}} songs)</li>
        {{- end}}
        </ul>
    {{- end}}
    </div>
</body>
</html>
`))
