package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/acadshare/acadshare/internal/domain"
	"github.com/acadshare/acadshare/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"fileIcon":   fileIcon,
	"formatDate": formatDate,
	"isImage":    isImage,
}

// viewData is the payload every page template receives. Page-specific
// fields stay zero on pages that do not use them.
type viewData struct {
	Title    string
	User     SessionUser
	LoggedIn bool
	Flashes  []Flash

	Posts []domain.Post
	Post  *domain.Post
	Token string
}

// Renderer executes embedded page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() *Renderer {
	names := []string{
		"feed", "login", "register",
		"post_new", "post_view", "posts",
		"reset_request", "reset_form",
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		pages[name] = template.Must(
			template.New("layout.html").
				Funcs(templateFuncs).
				ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return &Renderer{pages: pages}
}

// Render executes the named page. The template runs into a buffer first so
// an execution error becomes a clean 500 instead of a half-written page.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, data viewData) {
	tmpl, ok := rd.pages[page]
	if !ok {
		slogx.FromContext(r.Context()).Error("unknown page template", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slogx.FromContext(r.Context()).Error("template execution failed", "page", page, "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fileIcon maps an attachment filename to a Font Awesome icon name.
func fileIcon(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "pdf":
		return "file-pdf"
	case "doc", "docx":
		return "file-word"
	case "txt":
		return "file-alt"
	case "zip", "rar":
		return "file-archive"
	case "png", "jpg", "jpeg", "gif":
		return "file-image"
	default:
		return "file"
	}
}

// isImage reports whether an attachment can be previewed inline on the
// feed. Only extensions from the upload allow-list can appear here, so an
// extension check is sufficient.
func isImage(filename string) bool {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "png", "jpg", "jpeg", "gif":
		return true
	default:
		return false
	}
}

func formatDate(t time.Time) string {
	return t.Format("Jan 02, 2006 at 15:04")
}
