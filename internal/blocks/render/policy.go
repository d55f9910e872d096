package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// StripTagsPolicy удаляет всю разметку, оставляя текст.
var StripTagsPolicy *bluemonday.Policy = bluemonday.StrictPolicy()

// UgcPolicy разметка, которую может содержать документ редактора.
var UgcPolicy *bluemonday.Policy = bluemonday.UGCPolicy()

func init() {
	listStyleRegexp := regexp.MustCompile(`^(decimal|lower-alpha|upper-roman|disc|circle|square)$`)
	languageRegexp := regexp.MustCompile(`^[a-zA-Z0-9_+#.-]{1,32}$`)
	indentRegexp := regexp.MustCompile(`^\d{1,2}$`)

	UgcPolicy.AllowStyles("list-style-type").Matching(listStyleRegexp).OnElements("ol", "ul")
	UgcPolicy.AllowAttrs("data-indent-level").Matching(indentRegexp).OnElements("ol", "ul")
	UgcPolicy.AllowAttrs("data-language").Matching(languageRegexp).OnElements("pre", "code")
	UgcPolicy.AllowAttrs("target").Matching(regexp.MustCompile(`^_(blank|self)$`)).OnElements("a")
	UgcPolicy.AllowAttrs("download").OnElements("a")
	UgcPolicy.AllowAttrs("width", "height").Matching(bluemonday.Integer).OnElements("img")
	UgcPolicy.RequireNoReferrerOnLinks(false)
}
