// Package views holds the default page templates of the blog. Pages are
// html/template files adapted to templ components so they plug into
// spacetraveling.ViewFuncs next to hand-written templ code.
package views

import (
	"embed"
	"html/template"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling"
)

//go:embed templates/*.html
var files embed.FS

var messages = map[string]map[string]string{
	"pt-BR": {
		"load-more":    "Carregar mais posts",
		"loading":      "Carregando...",
		"not-found":    "Página não encontrada",
		"server-error": "Algo deu errado",
		"back-home":    "Voltar para o início",
		"preview":      "Modo de pré-visualização.",
		"exit-preview": "Sair",
	},
	"en": {
		"load-more":    "Load more posts",
		"loading":      "Loading...",
		"not-found":    "Page not found",
		"server-error": "Something went wrong",
		"back-home":    "Back home",
		"preview":      "Preview mode.",
		"exit-preview": "Exit",
	},
}

// translate returns the message for key in lang, falling back to English
// and then to the key itself.
func translate(lang, key string) string {
	if m, ok := messages[lang][key]; ok {
		return m
	}
	if m, ok := messages["en"][key]; ok {
		return m
	}
	return key
}

func iso(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

var templates = template.Must(template.New("views").Funcs(template.FuncMap{
	"t":   translate,
	"iso": iso,
}).ParseFS(files, "templates/*.html"))

func render(name string, data any) templ.Component {
	return templ.FromGoHTML(templates.Lookup(name), data)
}

// Home renders the full post list page.
func Home(page spacetraveling.HomePage) templ.Component {
	return render("home", page)
}

// PostList renders only the cards and the load-more link, for appending to
// a list already on screen.
func PostList(page spacetraveling.HomePage) templ.Component {
	return render("post-list", page)
}

// Post renders the post page, or its loading state.
func Post(page spacetraveling.PostPage) templ.Component {
	return render("post", page)
}

func NotFound(site spacetraveling.Site) templ.Component {
	return render("not-found", site)
}

func ServerError(site spacetraveling.Site) templ.Component {
	return render("server-error", site)
}

// Funcs returns the default views wired for spacetraveling.New.
func Funcs() spacetraveling.ViewFuncs {
	return spacetraveling.ViewFuncs{
		Home:        Home,
		PostList:    PostList,
		Post:        Post,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}
