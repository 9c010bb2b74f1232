package themes

// Markup is intentionally minimal; the interesting contract is the resolved
// view, not the styling.

const kardiHTML = `<!doctype html>
<html lang="{{.Language}}">
<head><meta charset="utf-8"><title>{{.Business}}</title></head>
<body class="kardi" style="--primary:{{.Primary}};--secondary:{{.Secondary}}">
<header>
  <a href="{{.HomePath}}">{{.Business}}</a>
  <span class="cart">{{.CartLabel}} ({{.CartCount}})</span>
</header>
{{if .ItemsLoading}}<main class="loading"></main>{{else}}
<main>
{{range .Sections}}<section>
  <h2>{{.Name}}</h2>
  <ul>{{range .Items}}
    <li{{if .Favorited}} class="fav"{{end}}>
      <img src="{{.Image}}" alt="">
      <span>{{.Title}}</span>
      {{if .HasPrice}}<b>{{printf "%.2f" .Price}} {{.Currency}}</b>{{end}}
    </li>{{end}}
  </ul>
</section>{{else}}<p>{{.EmptyLabel}}</p>{{end}}
</main>
{{end}}
<footer>
  {{range .Socials}}<a href="{{.URL}}" rel="noopener">{{.Platform}}</a> {{end}}
  {{if .Hours}}<dl class="hours">{{range .Hours}}<dt>{{.Day}}</dt><dd>{{.Open}}&ndash;{{.Close}}</dd>{{end}}</dl>{{end}}
</footer>
</body>
</html>`

const bistroHTML = `<!doctype html>
<html lang="{{.Language}}">
<head><meta charset="utf-8"><title>{{.Business}} &mdash; menu</title></head>
<body class="bistro" style="background:{{.Secondary}};color:{{.Primary}}">
<nav><a href="{{.HomePath}}">&larr;</a> {{.Business}} <em>{{.CartLabel}}: {{.CartCount}}</em></nav>
{{if .ItemsLoading}}<p class="spinner"></p>{{else if not .Sections}}<p>{{.EmptyLabel}}</p>{{else}}
{{range .Sections}}<article>
  <h3>{{.Name}}</h3>
  <table>{{range .Items}}
    <tr><td><img src="{{.Image}}" alt=""></td><td>{{.Title}}</td>
      <td>{{if .HasPrice}}{{printf "%.2f" .Price}} {{.Currency}}{{end}}</td></tr>{{end}}
  </table>
</article>{{end}}
{{end}}
{{if or .Socials .Hours}}<footer>
  {{range .Socials}}<a href="{{.URL}}">{{.Platform}}</a>{{end}}
  {{range .Hours}}<small>{{.Day}} {{.Open}}&ndash;{{.Close}}</small>{{end}}
</footer>{{end}}
</body>
</html>`

const classicHTML = `<!doctype html>
<html lang="{{.Language}}">
<head><meta charset="utf-8"><title>{{.Business}}</title></head>
<body class="classic">
<h1 style="color:{{.Primary}}">{{.Business}}</h1>
<p><a href="{{.HomePath}}">home</a> | {{.CartLabel}}: {{.CartCount}}</p>
{{if .ItemsLoading}}<p>&hellip;</p>{{else}}
{{range .Sections}}
<h2>{{.Name}}</h2>
<ol>{{range .Items}}<li>{{.Title}}{{if .HasPrice}} &mdash; {{printf "%.2f" .Price}} {{.Currency}}{{end}}</li>{{end}}</ol>
{{else}}<p>{{.EmptyLabel}}</p>{{end}}
{{end}}
<hr>
<p>{{range .Socials}}<a href="{{.URL}}">{{.Platform}}</a> {{end}}</p>
{{if .Hours}}<ul>{{range .Hours}}<li>{{.Day}}: {{.Open}}&ndash;{{.Close}}</li>{{end}}</ul>{{end}}
</body>
</html>`
