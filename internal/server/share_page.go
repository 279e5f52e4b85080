package server

import (
	"errors"
	"html/template"
	"log"
	"net/http"

	"shopping-lists/internal/shopping"
)

var sharePage = template.Must(template.New("share").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{if .Error}}<p class="error">{{.Error}}</p>{{else}}<h1 class="list-name">{{.List.Name}}</h1>
<p class="pending">{{.List.Pending}} pendientes de {{len .List.Items}}</p>
<ul class="items">
{{range .List.Items}}<li class="item{{if .Completed}} completed{{end}}">{{.Name}}</li>
{{end}}</ul>{{end}}
</body>
</html>
`))

type sharePageData struct {
	Title string
	Error string
	List  shopping.ShoppingList
}

func renderShare(w http.ResponseWriter, status int, data sharePageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := sharePage.Execute(w, data); err != nil {
		log.Printf("Error rendering share page: %v", err)
	}
}

// handleSharePage renders a read-only view of a list carried in the link itself.
func (s *Server) handleSharePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := shopping.DecodeShared(q.Get("data"), q.Get("token"), s.opts.Signer)
	if err != nil {
		status := http.StatusBadRequest
		msg := "El enlace no contiene una lista válida."
		if errors.Is(err, shopping.ErrInvalidShareToken) {
			status = http.StatusForbidden
			msg = "El enlace no es válido o ha caducado."
		}
		renderShare(w, status, sharePageData{Title: "Lista compartida", Error: msg})
		return
	}
	renderShare(w, http.StatusOK, sharePageData{Title: list.Name, List: list})
}
