package engine

// selectorChain is an ordered list of candidate CSS selectors per semantic
// field of a result block. Chains are data so markup drift is fixed here,
// not in the parsing code: the first selector that matches wins, and a
// single renamed class on the target site costs one fallback hop instead
// of an empty result set.
type selectorChain struct {
	container []string // one result block
	link      []string // anchor carrying title text and href
	snippet   []string // engine-provided description
}

var bingSelectors = selectorChain{
	container: []string{"li.b_algo", "div.b_algo", "li.b_ans"},
	link:      []string{"h2 a", "div.b_title a", "a.tilk"},
	snippet:   []string{"div.b_caption p", "p.b_lineclamp2", ".b_caption", "p"},
}

var ddgSelectors = selectorChain{
	container: []string{".result", ".web-result", ".results_links"},
	link:      []string{"a.result__a", ".result__title a", "a.result-link"},
	snippet:   []string{".result__snippet", ".result__body"},
}

var startpageSelectors = selectorChain{
	container: []string{".w-gl__result", ".result"},
	link:      []string{"a.w-gl__result-title", "h3 a", "a.result-link"},
	snippet:   []string{"p.w-gl__description", ".w-gl__description", "p.result-description"},
}

// contentSelectors are tried in priority order when picking the main
// content block of an arbitrary page.
var contentSelectors = []string{
	"article",
	"main",
	"[role=main]",
	".post-content",
	".article-content",
	".entry-content",
	".article-body",
	".post-body",
	"#content",
	".content",
	".story-body",
	".markdown-body",
}

// strippedSelectors are removed from a page before content selection:
// scripts, media, forms and structural non-content roles.
var strippedSelectors = []string{
	"script", "style", "noscript", "iframe", "svg", "canvas",
	"img", "picture", "video", "audio", "source", "figure",
	"form", "input", "button", "select", "textarea",
	"nav", "header", "footer", "aside",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]", "[role=complementary]",
}

// junkClassFragments flag ad, tracking, popup and social-widget containers
// by class/id substring.
var junkClassFragments = []string{
	"advert", "banner", "sponsor", "promo", "tracking", "analytics",
	"popup", "modal", "overlay", "cookie", "consent", "newsletter",
	"subscribe", "signup", "social", "share", "comment", "related",
	"recommended", "sidebar", "breadcrumb", "pagination", "menu",
}
