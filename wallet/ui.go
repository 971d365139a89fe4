package wallet

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed ui
var ui embed.FS

// uiHandler serves the client page.
func uiHandler() http.Handler {
	sub, err := fs.Sub(ui, "ui")
	if err != nil {
		panic(err)
	}

	return http.FileServer(http.FS(sub))
}
