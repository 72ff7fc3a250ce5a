package adapters

import "net/http"

// Handler adapts a per-request Renderer factory to net/http, setting
// mimeType on the response before writing (or a 500 with the error's
// text on failure). Grounded on
// panyam-templar/cmd/templar-serve/main.go's handler, which resolves
// and renders a template directly into the ResponseWriter; build here
// plays the part templates.Loader.Load played there, minus the
// runtime parse since the template is already compiled.
func Handler(mimeType string, build func(*http.Request) (Renderer, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tmpl, err := build(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if mimeType != "" {
			w.Header().Set("Content-Type", mimeType)
		}
		if err := tmpl.RenderInto(w); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
}
