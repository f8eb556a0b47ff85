package affix

import (
	"strings"
	"testing"

	"github.com/dgallion1/docaffix/internal/page"
)

func parsePage(t *testing.T, src string) *page.Page {
	t.Helper()
	p, err := page.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

func pageHTML(t *testing.T, p *page.Page) string {
	t.Helper()
	var buf strings.Builder
	if err := p.Write(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.String()
}

func TestApply_ReferencePageDropsTitle(t *testing.T) {
	p := parsePage(t, `<body><div id="affix"></div><article>
<h1 id="title">Title</h1><h2 id="a">A</h2><h2 id="b">B</h2>
</article></body>`)

	res := Apply(p, page.DefaultOptions(), Options{Classes: []string{"nav"}})
	if !res.Placeholder || res.Empty || res.Conceptual {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Headings != 3 || res.Items != 2 {
		t.Errorf("expected 3 headings and 2 items, got %+v", res)
	}

	out := pageHTML(t, p)
	want := `<div id="affix"><ul class="level1 nav"><li><a href="#a">A</a></li><li><a href="#b">B</a></li></ul></div>`
	if !strings.Contains(out, want) {
		t.Errorf("expected affix %s in\n%s", want, out)
	}
}

func TestApply_ConceptualPageKeepsTitle(t *testing.T) {
	p := parsePage(t, `<body><div id="affix"></div><article><div class="conceptual">
<h1 id="title">Title</h1><h2 id="a">A</h2><h2 id="b">B</h2>
</div></article></body>`)

	res := Apply(p, page.DefaultOptions(), Options{})
	if !res.Conceptual || res.Items != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
	out := pageHTML(t, p)
	want := `<ul class="level1"><li><a href="#title">Title</a><ul class="level2"><li><a href="#a">A</a></li><li><a href="#b">B</a></li></ul></li></ul>`
	if !strings.Contains(out, want) {
		t.Errorf("expected affix %s in\n%s", want, out)
	}
}

func TestApply_OnlyTitleHidesPlaceholder(t *testing.T) {
	p := parsePage(t, `<body><div id="affix"><ul><li>old</li></ul></div><article><h1 id="t">Only</h1></article></body>`)
	res := Apply(p, page.DefaultOptions(), Options{})
	if !res.Empty || !res.Placeholder {
		t.Errorf("expected empty result with placeholder, got %+v", res)
	}
	out := pageHTML(t, p)
	if !strings.Contains(out, `<div id="affix" hidden=""></div>`) {
		t.Errorf("expected hidden placeholder, got %s", out)
	}
}

func TestApply_BlankHeadingsHidePlaceholder(t *testing.T) {
	p := parsePage(t, `<body><div id="affix"><ul><li>old</li></ul></div><article><div class="conceptual">`+
		`<h2 id="a"> </h2><h2 id="b"><em></em></h2></div></article></body>`)
	res := Apply(p, page.DefaultOptions(), Options{})
	if !res.Empty || res.Items != 0 || res.Headings != 2 {
		t.Errorf("expected empty result for blank headings, got %+v", res)
	}
	out := pageHTML(t, p)
	if !strings.Contains(out, `<div id="affix" hidden=""></div>`) {
		t.Errorf("expected hidden empty placeholder, got %s", out)
	}
}

func TestApply_XrefOnlyHeadingsAreListed(t *testing.T) {
	p := parsePage(t, `<body><div id="affix"></div><article><h1 id="foo">Foo</h1>`+
		`<h2 id="m1"><a class="xref" href="Foo.html#Bar">Bar()</a></h2>`+
		`<h2 id="m2">Baz <a class="xref" href="Foo.html#Baz">Baz()</a></h2></article></body>`)
	res := Apply(p, page.DefaultOptions(), Options{})
	if res.Items != 2 {
		t.Errorf("expected 2 items, got %+v", res)
	}
	want := `<ul class="level1"><li><a href="Foo.html#Bar">Bar()</a></li><li><a href="Foo.html#Baz">Baz Baz()</a></li></ul>`
	if out := pageHTML(t, p); !strings.Contains(out, want) {
		t.Errorf("expected affix %s in\n%s", want, out)
	}
}

func TestApply_NoPlaceholder(t *testing.T) {
	p := parsePage(t, `<article><h1 id="t">T</h1><h2 id="a">A</h2></article>`)
	res := Apply(p, page.DefaultOptions(), Options{})
	if res.Placeholder {
		t.Error("expected Placeholder=false")
	}
	if res.Items != 1 || res.Empty {
		t.Errorf("expected one item rendered, got %+v", res)
	}
}

func TestApply_RerunIsStable(t *testing.T) {
	src := `<body><div id="affix"></div><article><h1 id="t">T</h1><h2 id="a">A</h2><h3 id="a1">A1</h3></article></body>`
	p := parsePage(t, src)
	Apply(p, page.DefaultOptions(), Options{})
	first := pageHTML(t, p)

	again := parsePage(t, first)
	Apply(again, page.DefaultOptions(), Options{})
	if second := pageHTML(t, again); second != first {
		t.Errorf("second pass changed the page\nfirst:  %s\nsecond: %s", first, second)
	}
}

func TestApply_MarkdownPreview(t *testing.T) {
	src := []byte("# Guide\n\nIntro.\n\n## Install\n\nSteps.\n\n## Use `affix`\n\nMore.\n")
	p, err := page.FromMarkdown(src, "Guide", page.DefaultOptions())
	if err != nil {
		t.Fatalf("from markdown: %v", err)
	}
	res := Apply(p, page.DefaultOptions(), Options{})
	if !res.Conceptual || res.Headings != 3 || res.Items != 3 {
		t.Errorf("unexpected result: %+v", res)
	}
	out := pageHTML(t, p)
	if !strings.Contains(out, `<a href="#guide">Guide</a>`) {
		t.Errorf("expected title link, got %s", out)
	}
	if !strings.Contains(out, `<a href="#install">Install</a>`) {
		t.Errorf("expected install link, got %s", out)
	}
}
